// Package models содержит доменные структуры пользователя, тарифного плана
// и подписки. Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Статусы подписки пользователя. Статус "expired" допустим схемой,
// но ни один сценарий его не выставляет.
const (
	SubscriptionNone     = "none"
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
	SubscriptionExpired  = "expired"
)

// User представляет зарегистрированного пользователя системы.
// Подписка встроена в запись пользователя: не более одной на пользователя,
// история прошлых подписок не хранится.
type User struct {
	UID                    string       // Уникальный идентификатор пользователя
	Name                   string       // Отображаемое имя
	Email                  string       // Электронная почта (уникальная, в нижнем регистре)
	PasswordHash           string       // Хэш пароля пользователя
	Phone                  *string      // Телефон, 10 цифр (опционально)
	Address                *string      // Адрес (опционально)
	Role                   string       // Роль пользователя, admin или user
	IsActive               bool         // Признак активности аккаунта
	Subscription           Subscription // Встроенная запись подписки
	PasswordResetTokenHash *string      // SHA-256 хэш токена восстановления пароля
	PasswordResetExpires   *time.Time   // Срок действия токена восстановления
	LastLogin              *time.Time   // Время последнего входа
	CreatedAt              time.Time    // Время создания записи
}

// Subscription встроенная запись подписки пользователя.
// PlanID равен nil, если пользователь ни разу не подписывался
// или план был удален после отмены подписки.
type Subscription struct {
	PlanID    *string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

// Profile проекция пользователя без секретных полей,
// отдается наружу HTTP-обработчиками.
type Profile struct {
	UID          string            `json:"uid"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Phone        *string           `json:"phone,omitempty"`
	Address      *string           `json:"address,omitempty"`
	Role         string            `json:"role"`
	Subscription SubscriptionState `json:"subscription"`
	LastLogin    *time.Time        `json:"last_login,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// SubscriptionState статусная часть подписки в проекции профиля.
type SubscriptionState struct {
	PlanID    *string    `json:"plan_id,omitempty"`
	Status    string     `json:"status"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// GetProfile возвращает проекцию пользователя без хэша пароля
// и полей восстановления пароля.
func (u *User) GetProfile() Profile {
	return Profile{
		UID:     u.UID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Address: u.Address,
		Role:    u.Role,
		Subscription: SubscriptionState{
			PlanID:    u.Subscription.PlanID,
			Status:    u.Subscription.Status,
			StartDate: u.Subscription.StartDate,
			EndDate:   u.Subscription.EndDate,
		},
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

// ProfileUpdate частичное обновление профиля: nil-поля не трогаются.
type ProfileUpdate struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=50"`
	Phone   *string `json:"phone" validate:"omitempty,len=10,numeric"`
	Address *string `json:"address"`
}
