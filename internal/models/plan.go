package models

import (
	"fmt"
	"time"
)

// Длительности тарифных планов.
const (
	DurationMonthly   = "monthly"
	DurationQuarterly = "quarterly"
	DurationYearly    = "yearly"
)

// Plan представляет тарифный план оператора.
type Plan struct {
	ID            string        // Уникальный идентификатор плана
	Name          string        // Название плана (уникальное)
	Description   string        // Описание плана
	Price         float64       // Цена, >= 0
	Currency      string        // Валюта: INR, USD или EUR
	Duration      string        // monthly, quarterly или yearly
	Features      []PlanFeature // Упорядоченный список опций плана
	DataLimit     DataLimit     // Лимиты трафика
	CallFeatures  CallFeatures  // Опции звонков и SMS
	Entertainment Entertainment // Развлекательный пакет
	IsPopular     bool          // Маркер "популярный план"
	IsActive      bool          // Мягкое удаление: неактивные планы скрыты из каталога
	MaxUsers      int           // Максимум пользователей на плане, >= 1
	Category      string        // basic, premium, unlimited или family
	Color         string        // Цвет для отображения
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PlanFeature одна опция тарифного плана.
type PlanFeature struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Value       string `json:"value,omitempty"`
	Included    bool   `json:"included"`
}

// DataLimit лимиты трафика в гигабайтах.
type DataLimit struct {
	Daily     float64 `json:"daily,omitempty"`
	Monthly   float64 `json:"monthly,omitempty"`
	Unlimited bool    `json:"unlimited"`
}

// CallFeatures опции звонков и SMS.
type CallFeatures struct {
	Unlimited bool `json:"unlimited"`
	Minutes   int  `json:"minutes,omitempty"`
	SMSCount  int  `json:"sms_count,omitempty"`
}

// Entertainment развлекательный пакет плана.
type Entertainment struct {
	Netflix       bool     `json:"netflix"`
	AmazonPrime   bool     `json:"amazon_prime"`
	DisneyHotstar bool     `json:"disney_hotstar"`
	OtherServices []string `json:"other_services,omitempty"`
}

// PlanSummary проекция плана, используемая везде, где план отдается наружу.
// Содержит только опции с Included == true.
type PlanSummary struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Price          float64       `json:"price"`
	FormattedPrice string        `json:"formatted_price"`
	Duration       string        `json:"duration"`
	DurationText   string        `json:"duration_text"`
	IsPopular      bool          `json:"is_popular"`
	Category       string        `json:"category"`
	Color          string        `json:"color"`
	Features       []PlanFeature `json:"features"`
	MaxUsers       int           `json:"max_users"`
}

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
}

var durationTexts = map[string]string{
	DurationMonthly:   "per month",
	DurationQuarterly: "per quarter",
	DurationYearly:    "per year",
}

// FormattedPrice возвращает цену с символом валюты.
func (p *Plan) FormattedPrice() string {
	symbol, ok := currencySymbols[p.Currency]
	if !ok {
		symbol = currencySymbols["INR"]
	}
	return fmt.Sprintf("%s%g", symbol, p.Price)
}

// DurationText возвращает человеко-читаемый период оплаты.
func (p *Plan) DurationText() string {
	if text, ok := durationTexts[p.Duration]; ok {
		return text
	}
	return durationTexts[DurationMonthly]
}

// GetSummary возвращает проекцию плана для выдачи наружу.
func (p *Plan) GetSummary() PlanSummary {
	included := make([]PlanFeature, 0, len(p.Features))
	for _, f := range p.Features {
		if f.Included {
			included = append(included, f)
		}
	}
	return PlanSummary{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		FormattedPrice: p.FormattedPrice(),
		Duration:       p.Duration,
		DurationText:   p.DurationText(),
		IsPopular:      p.IsPopular,
		Category:       p.Category,
		Color:          p.Color,
		Features:       included,
		MaxUsers:       p.MaxUsers,
	}
}

// DummyPlan используется для приёма данных из JSON-запроса на создание плана,
// прежде чем конвертировать их в Plan.
type DummyPlan struct {
	Name          string        `json:"name" validate:"required"`
	Description   string        `json:"description" validate:"required"`
	Price         *float64      `json:"price" validate:"required,gte=0"`
	Currency      string        `json:"currency" validate:"omitempty,oneof=INR USD EUR"`
	Duration      string        `json:"duration" validate:"required,oneof=monthly quarterly yearly"`
	Features      []PlanFeature `json:"features"`
	DataLimit     DataLimit     `json:"data_limit"`
	CallFeatures  CallFeatures  `json:"call_features"`
	Entertainment Entertainment `json:"entertainment"`
	IsPopular     *bool         `json:"is_popular"`
	IsActive      *bool         `json:"is_active"`
	MaxUsers      *int          `json:"max_users" validate:"omitempty,gte=1"`
	Category      string        `json:"category" validate:"required,oneof=basic premium unlimited family"`
	Color         string        `json:"color"`
}

// DummyPlanUpdate частичное обновление плана: nil-поля не трогаются,
// заданные поля проходят повторную валидацию.
type DummyPlanUpdate struct {
	Name          *string        `json:"name" validate:"omitempty,min=1"`
	Description   *string        `json:"description" validate:"omitempty,min=1"`
	Price         *float64       `json:"price" validate:"omitempty,gte=0"`
	Currency      *string        `json:"currency" validate:"omitempty,oneof=INR USD EUR"`
	Duration      *string        `json:"duration" validate:"omitempty,oneof=monthly quarterly yearly"`
	Features      []PlanFeature  `json:"features"`
	DataLimit     *DataLimit     `json:"data_limit"`
	CallFeatures  *CallFeatures  `json:"call_features"`
	Entertainment *Entertainment `json:"entertainment"`
	IsPopular     *bool          `json:"is_popular"`
	IsActive      *bool          `json:"is_active"`
	MaxUsers      *int           `json:"max_users" validate:"omitempty,gte=1"`
	Category      *string        `json:"category" validate:"omitempty,oneof=basic premium unlimited family"`
	Color         *string        `json:"color"`
}
