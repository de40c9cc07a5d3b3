// Package services содержит бизнес-логику управления подпиской пользователя.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mobilka/subscription-portal/internal/lib/planperiod"
	"github.com/mobilka/subscription-portal/internal/models"
	"github.com/mobilka/subscription-portal/internal/storage/repository"
)

// Ошибки бизнес-логики подписок.
var (
	// ErrPlanNotFound тариф не найден или недоступен для подключения.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrAlreadySubscribed у пользователя уже есть активная подписка.
	ErrAlreadySubscribed = errors.New("user already has an active subscription")
	// ErrNoActiveSubscription отменять нечего: активной подписки нет.
	ErrNoActiveSubscription = errors.New("no active subscription to cancel")
)

// SubscriptionRepository описывает операции подписки над записью пользователя.
type SubscriptionRepository interface {
	// ActivateSubscription переводит пользователя на тариф, если активной подписки нет.
	ActivateSubscription(ctx context.Context, userUID, planID string, start, end time.Time) error
	// CancelSubscription переводит активную подписку в inactive, сохраняя дату окончания.
	CancelSubscription(ctx context.Context, userUID string) error
}

// PlanRepository описывает чтение тарифов из базы данных.
type PlanRepository interface {
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)
}

// SubscriptionService управляет жизненным циклом подписки пользователя.
type SubscriptionService struct {
	repo  SubscriptionRepository
	plans PlanRepository
	log   *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, plans PlanRepository, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{repo: repo, plans: plans, log: log}
}

// Subscribe подключает пользователю тариф. Дата окончания считается от даты
// начала по длительности тарифа. Повторное подключение при активной подписке
// отклоняется на уровне условного UPDATE, поэтому гонка двух одновременных
// запросов дает ровно одну активацию.
func (s *SubscriptionService) Subscribe(ctx context.Context, user *models.User, planID string, startDate *time.Time) (*models.SubscriptionView, error) {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	// Неактивный тариф недоступен для подключения и не раскрывается.
	if !plan.IsActive {
		return nil, ErrPlanNotFound
	}

	start := time.Now().UTC()
	if startDate != nil {
		start = startDate.UTC()
	}
	end := planperiod.EndDate(start, plan.Duration)

	if err := s.repo.ActivateSubscription(ctx, user.UID, plan.ID, start, end); err != nil {
		switch {
		case errors.Is(err, repository.ErrSubscriptionActive):
			return nil, ErrAlreadySubscribed
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, err
		}
		return nil, err
	}
	s.log.Info("subscription activated",
		slog.String("uid", user.UID),
		slog.String("plan_id", plan.ID),
		slog.Time("end_date", end))

	return &models.SubscriptionView{
		Plan:      plan.GetSummary(),
		Status:    models.SubscriptionActive,
		StartDate: start,
		EndDate:   end,
	}, nil
}

// Current возвращает подписку пользователя вместе с тарифом.
// Если подписки нет, возвращает nil без ошибки.
func (s *SubscriptionService) Current(ctx context.Context, user *models.User) (*models.SubscriptionView, error) {
	if user.Subscription.PlanID == nil {
		return nil, nil
	}

	plan, err := s.plans.GetPlan(ctx, *user.Subscription.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, nil
		}
		return nil, err
	}

	view := &models.SubscriptionView{
		Plan:   plan.GetSummary(),
		Status: user.Subscription.Status,
	}
	if user.Subscription.StartDate != nil {
		view.StartDate = *user.Subscription.StartDate
	}
	if user.Subscription.EndDate != nil {
		view.EndDate = *user.Subscription.EndDate
	}
	return view, nil
}

// Cancel отменяет активную подписку. Статус становится inactive,
// дата окончания не меняется: доступ сохраняется до конца оплаченного периода.
// Возвращает дату окончания отмененной подписки.
func (s *SubscriptionService) Cancel(ctx context.Context, user *models.User) (*time.Time, error) {
	if err := s.repo.CancelSubscription(ctx, user.UID); err != nil {
		if errors.Is(err, repository.ErrNoActiveSubscription) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}
	s.log.Info("subscription cancelled", slog.String("uid", user.UID))
	return user.Subscription.EndDate, nil
}
