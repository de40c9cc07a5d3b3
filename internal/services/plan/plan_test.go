package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mobilka/subscription-portal/internal/models"
	"github.com/mobilka/subscription-portal/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *RepoMock) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *RepoMock) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Plan), args.Error(1)
}
func (m *RepoMock) UpdatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *RepoMock) DeletePlan(ctx context.Context, planID string) error {
	return m.Called(ctx, planID).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func testPlan(id string, price float64, active bool) models.Plan {
	return models.Plan{
		ID:       id,
		Name:     "Plan " + id,
		Price:    price,
		Currency: "INR",
		Duration: models.DurationMonthly,
		IsActive: active,
		MaxUsers: 1,
		Category: "basic",
	}
}

func TestPlanService_ListActive(t *testing.T) {
	t.Run("cache miss loads from repo and caches", func(t *testing.T) {
		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		svc := NewPlanService(repo, cacheMock, newNoopLogger())

		cacheMock.On("Get", mock.Anything, activePlansCacheKey, mock.Anything).Return(false, nil).Once()
		repo.On("ListActivePlans", mock.Anything).
			Return([]models.Plan{testPlan("a", 199, true), testPlan("b", 399, true)}, nil).Once()
		cacheMock.On("Set", mock.Anything, activePlansCacheKey, mock.Anything, planCacheTTL).Return(nil).Once()

		plans, err := svc.ListActive(context.Background())
		require.NoError(t, err)
		assert.Len(t, plans, 2)
		assert.Equal(t, "₹199", plans[0].FormattedPrice)
		repo.AssertExpectations(t)
		cacheMock.AssertExpectations(t)
	})

	t.Run("cache hit skips repo", func(t *testing.T) {
		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		svc := NewPlanService(repo, cacheMock, newNoopLogger())

		cacheMock.On("Get", mock.Anything, activePlansCacheKey, mock.Anything).
			Run(func(args mock.Arguments) {
				out := args.Get(2).(*[]models.PlanSummary)
				*out = []models.PlanSummary{{ID: "cached"}}
			}).
			Return(true, nil).Once()

		plans, err := svc.ListActive(context.Background())
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, "cached", plans[0].ID)
		repo.AssertNotCalled(t, "ListActivePlans", mock.Anything)
	})
}

func TestPlanService_Get(t *testing.T) {
	t.Run("hidden plan is not found", func(t *testing.T) {
		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		svc := NewPlanService(repo, cacheMock, newNoopLogger())

		hidden := testPlan("a", 199, false)
		cacheMock.On("Get", mock.Anything, planCacheKeyPrefix+"a", mock.Anything).Return(false, nil).Once()
		repo.On("GetPlan", mock.Anything, "a").Return(&hidden, nil).Once()

		_, err := svc.Get(context.Background(), "a")
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("missing plan", func(t *testing.T) {
		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		svc := NewPlanService(repo, cacheMock, newNoopLogger())

		cacheMock.On("Get", mock.Anything, planCacheKeyPrefix+"missing", mock.Anything).Return(false, nil).Once()
		repo.On("GetPlan", mock.Anything, "missing").Return(nil, repository.ErrPlanNotFound).Once()

		_, err := svc.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
}

func TestPlanService_Create(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		svc := NewPlanService(repo, cacheMock, newNoopLogger())

		price := 199.0
		dummy := models.DummyPlan{
			Name:        "Basic Plan",
			Description: "Entry level",
			Price:       &price,
			Duration:    models.DurationMonthly,
			Category:    "basic",
		}
		created := testPlan("new", 199, true)

		repo.On("CreatePlan", mock.Anything, mock.MatchedBy(func(p models.Plan) bool {
			return p.Currency == "INR" && p.MaxUsers == 1 && p.IsActive && p.Color == "#667eea"
		})).Return(&created, nil).Once()
		cacheMock.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Twice()

		plan, err := svc.Create(context.Background(), dummy)
		require.NoError(t, err)
		assert.Equal(t, "new", plan.ID)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate name", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewPlanService(repo, new(CacheMock), newNoopLogger())

		price := 199.0
		repo.On("CreatePlan", mock.Anything, mock.Anything).
			Return(nil, repository.ErrPlanNameExists).Once()

		_, err := svc.Create(context.Background(), models.DummyPlan{
			Name: "Basic Plan", Description: "x", Price: &price,
			Duration: models.DurationMonthly, Category: "basic",
		})
		assert.ErrorIs(t, err, ErrPlanNameTaken)
	})
}

func TestPlanService_Update(t *testing.T) {
	repo := new(RepoMock)
	cacheMock := new(CacheMock)
	svc := NewPlanService(repo, cacheMock, newNoopLogger())

	existing := testPlan("a", 199, true)
	newPrice := 249.0
	updated := existing
	updated.Price = newPrice

	repo.On("GetPlan", mock.Anything, "a").Return(&existing, nil).Once()
	repo.On("UpdatePlan", mock.Anything, mock.MatchedBy(func(p models.Plan) bool {
		// нетронутые поля сохраняются, цена меняется
		return p.Price == newPrice && p.Name == existing.Name
	})).Return(&updated, nil).Once()
	cacheMock.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Twice()

	plan, err := svc.Update(context.Background(), "a", models.DummyPlanUpdate{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, newPrice, plan.Price)
	repo.AssertExpectations(t)
}

func TestPlanService_Delete(t *testing.T) {
	t.Run("success invalidates cache", func(t *testing.T) {
		repo := new(RepoMock)
		cacheMock := new(CacheMock)
		svc := NewPlanService(repo, cacheMock, newNoopLogger())

		repo.On("DeletePlan", mock.Anything, "a").Return(nil).Once()
		cacheMock.On("Invalidate", mock.Anything, activePlansCacheKey).Return(nil).Once()
		cacheMock.On("Invalidate", mock.Anything, planCacheKeyPrefix+"a").Return(nil).Once()

		require.NoError(t, svc.Delete(context.Background(), "a"))
		cacheMock.AssertExpectations(t)
	})

	t.Run("plan has subscribers", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewPlanService(repo, new(CacheMock), newNoopLogger())

		repo.On("DeletePlan", mock.Anything, "a").
			Return(repository.ErrPlanHasSubscribers).Once()

		err := svc.Delete(context.Background(), "a")
		assert.ErrorIs(t, err, ErrPlanHasSubscribers)
	})
}
