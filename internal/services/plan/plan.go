// Package services содержит бизнес-логику каталога тарифов
// с кэшированием публичных выборок в Redis.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mobilka/subscription-portal/internal/lib/sl"
	"github.com/mobilka/subscription-portal/internal/models"
	"github.com/mobilka/subscription-portal/internal/storage/repository"
)

// Ошибки бизнес-логики каталога тарифов.
var (
	// ErrPlanNotFound тариф не найден или скрыт из каталога.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrPlanNameTaken тариф с таким именем уже существует.
	ErrPlanNameTaken = errors.New("plan name already exists")
	// ErrPlanHasSubscribers на тарифе есть активные подписчики, удаление запрещено.
	ErrPlanHasSubscribers = errors.New("plan has active subscribers")
)

const (
	activePlansCacheKey = "plans:active"
	planCacheKeyPrefix  = "plan:summary:"
	planCacheTTL        = 5 * time.Minute
)

// PlanRepository описывает контракт для работы с тарифами в базе данных.
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error)
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)
	ListActivePlans(ctx context.Context) ([]models.Plan, error)
	UpdatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error)
	DeletePlan(ctx context.Context, planID string) error
}

// Cache описывает кэш выборок каталога.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// PlanService управляет каталогом тарифов.
type PlanService struct {
	repo  PlanRepository
	cache Cache
	log   *slog.Logger
}

// NewPlanService создает новый экземпляр PlanService.
func NewPlanService(repo PlanRepository, cache Cache, log *slog.Logger) *PlanService {
	return &PlanService{repo: repo, cache: cache, log: log}
}

// ListActive возвращает активные тарифы каталога по возрастанию цены.
// Выборка кэшируется, ошибки кэша не прерывают запрос.
func (s *PlanService) ListActive(ctx context.Context) ([]models.PlanSummary, error) {
	var cached []models.PlanSummary
	found, err := s.cache.Get(ctx, activePlansCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plans from cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	plans, err := s.repo.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.PlanSummary, 0, len(plans))
	for _, plan := range plans {
		summaries = append(summaries, plan.GetSummary())
	}

	if err := s.cache.Set(ctx, activePlansCacheKey, summaries, planCacheTTL); err != nil {
		s.log.Warn("failed to cache plans", sl.Err(err))
	}
	return summaries, nil
}

// Get возвращает активный тариф каталога. Скрытые тарифы для публичной
// выдачи неотличимы от несуществующих.
func (s *PlanService) Get(ctx context.Context, planID string) (*models.PlanSummary, error) {
	cacheKey := planCacheKeyPrefix + planID

	var cached models.PlanSummary
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plan from cache", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanNotFound
	}

	summary := plan.GetSummary()
	if err := s.cache.Set(ctx, cacheKey, summary, planCacheTTL); err != nil {
		s.log.Warn("failed to cache plan", sl.Err(err))
	}
	return &summary, nil
}

// Create добавляет новый тариф в каталог с дефолтами для необязательных полей.
func (s *PlanService) Create(ctx context.Context, dummy models.DummyPlan) (*models.Plan, error) {
	plan := models.Plan{
		Name:          dummy.Name,
		Description:   dummy.Description,
		Price:         *dummy.Price,
		Currency:      "INR",
		Duration:      dummy.Duration,
		Features:      dummy.Features,
		DataLimit:     dummy.DataLimit,
		CallFeatures:  dummy.CallFeatures,
		Entertainment: dummy.Entertainment,
		IsPopular:     false,
		IsActive:      true,
		MaxUsers:      1,
		Category:      dummy.Category,
		Color:         "#667eea",
	}
	if dummy.Currency != "" {
		plan.Currency = dummy.Currency
	}
	if dummy.IsPopular != nil {
		plan.IsPopular = *dummy.IsPopular
	}
	if dummy.IsActive != nil {
		plan.IsActive = *dummy.IsActive
	}
	if dummy.MaxUsers != nil {
		plan.MaxUsers = *dummy.MaxUsers
	}
	if dummy.Color != "" {
		plan.Color = dummy.Color
	}
	if plan.Features == nil {
		plan.Features = []models.PlanFeature{}
	}

	created, err := s.repo.CreatePlan(ctx, plan)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNameExists) {
			return nil, ErrPlanNameTaken
		}
		return nil, err
	}
	s.log.Info("plan created", slog.String("plan_id", created.ID), slog.String("name", created.Name))

	s.invalidate(ctx, created.ID)
	return created, nil
}

// Update частично обновляет тариф. Обновление доступно и для скрытых тарифов.
func (s *PlanService) Update(ctx context.Context, planID string, upd models.DummyPlanUpdate) (*models.Plan, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	applyPlanUpdate(plan, upd)

	updated, err := s.repo.UpdatePlan(ctx, *plan)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPlanNotFound):
			return nil, ErrPlanNotFound
		case errors.Is(err, repository.ErrPlanNameExists):
			return nil, ErrPlanNameTaken
		}
		return nil, err
	}
	s.log.Info("plan updated", slog.String("plan_id", planID))

	s.invalidate(ctx, planID)
	return updated, nil
}

// Delete удаляет тариф. Тариф с активными подписчиками удалить нельзя.
func (s *PlanService) Delete(ctx context.Context, planID string) error {
	if err := s.repo.DeletePlan(ctx, planID); err != nil {
		switch {
		case errors.Is(err, repository.ErrPlanNotFound):
			return ErrPlanNotFound
		case errors.Is(err, repository.ErrPlanHasSubscribers):
			return ErrPlanHasSubscribers
		}
		return err
	}
	s.log.Info("plan deleted", slog.String("plan_id", planID))

	s.invalidate(ctx, planID)
	return nil
}

// invalidate сбрасывает кэш списка и конкретного тарифа после изменения каталога.
func (s *PlanService) invalidate(ctx context.Context, planID string) {
	for _, key := range []string{activePlansCacheKey, fmt.Sprintf("%s%s", planCacheKeyPrefix, planID)} {
		if err := s.cache.Invalidate(ctx, key); err != nil {
			s.log.Warn("failed to invalidate plan cache", slog.String("key", key), sl.Err(err))
		}
	}
}

// applyPlanUpdate накладывает непустые поля частичного обновления на тариф.
func applyPlanUpdate(plan *models.Plan, upd models.DummyPlanUpdate) {
	if upd.Name != nil {
		plan.Name = *upd.Name
	}
	if upd.Description != nil {
		plan.Description = *upd.Description
	}
	if upd.Price != nil {
		plan.Price = *upd.Price
	}
	if upd.Currency != nil {
		plan.Currency = *upd.Currency
	}
	if upd.Duration != nil {
		plan.Duration = *upd.Duration
	}
	if upd.Features != nil {
		plan.Features = upd.Features
	}
	if upd.DataLimit != nil {
		plan.DataLimit = *upd.DataLimit
	}
	if upd.CallFeatures != nil {
		plan.CallFeatures = *upd.CallFeatures
	}
	if upd.Entertainment != nil {
		plan.Entertainment = *upd.Entertainment
	}
	if upd.IsPopular != nil {
		plan.IsPopular = *upd.IsPopular
	}
	if upd.IsActive != nil {
		plan.IsActive = *upd.IsActive
	}
	if upd.MaxUsers != nil {
		plan.MaxUsers = *upd.MaxUsers
	}
	if upd.Category != nil {
		plan.Category = *upd.Category
	}
	if upd.Color != nil {
		plan.Color = *upd.Color
	}
}
