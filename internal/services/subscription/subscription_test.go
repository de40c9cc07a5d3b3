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

func (m *RepoMock) ActivateSubscription(ctx context.Context, userUID, planID string, start, end time.Time) error {
	return m.Called(ctx, userUID, planID, start, end).Error(0)
}
func (m *RepoMock) CancelSubscription(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}

type PlansMock struct{ mock.Mock }

func (m *PlansMock) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func testPlan(duration string) *models.Plan {
	return &models.Plan{
		ID:       "plan-1",
		Name:     "Premium Plan",
		Price:    399,
		Currency: "INR",
		Duration: duration,
		IsActive: true,
		MaxUsers: 1,
		Category: "premium",
	}
}

func testUser() *models.User {
	return &models.User{
		UID:          "uid-1",
		Email:        "user@example.com",
		IsActive:     true,
		Subscription: models.Subscription{Status: models.SubscriptionNone},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	start := date(2024, time.January, 15)

	tests := []struct {
		name       string
		duration   string
		wantEnd    time.Time
	}{
		{name: "monthly", duration: models.DurationMonthly, wantEnd: date(2024, time.February, 15)},
		{name: "quarterly", duration: models.DurationQuarterly, wantEnd: date(2024, time.April, 15)},
		{name: "yearly", duration: models.DurationYearly, wantEnd: date(2025, time.January, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			plans := new(PlansMock)
			svc := NewSubscriptionService(repo, plans, newNoopLogger())

			plans.On("GetPlan", mock.Anything, "plan-1").Return(testPlan(tt.duration), nil).Once()
			repo.On("ActivateSubscription", mock.Anything, "uid-1", "plan-1", start, tt.wantEnd).
				Return(nil).Once()

			view, err := svc.Subscribe(context.Background(), testUser(), "plan-1", &start)
			require.NoError(t, err)
			assert.Equal(t, models.SubscriptionActive, view.Status)
			assert.Equal(t, start, view.StartDate)
			assert.Equal(t, tt.wantEnd, view.EndDate)
			assert.Equal(t, "plan-1", view.Plan.ID)
			repo.AssertExpectations(t)
		})
	}

	t.Run("plan not found", func(t *testing.T) {
		repo := new(RepoMock)
		plans := new(PlansMock)
		svc := NewSubscriptionService(repo, plans, newNoopLogger())

		plans.On("GetPlan", mock.Anything, "missing").
			Return(nil, repository.ErrPlanNotFound).Once()

		_, err := svc.Subscribe(context.Background(), testUser(), "missing", &start)
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("hidden plan looks missing", func(t *testing.T) {
		repo := new(RepoMock)
		plans := new(PlansMock)
		svc := NewSubscriptionService(repo, plans, newNoopLogger())

		plan := testPlan(models.DurationMonthly)
		plan.IsActive = false
		plans.On("GetPlan", mock.Anything, "plan-1").Return(plan, nil).Once()

		_, err := svc.Subscribe(context.Background(), testUser(), "plan-1", &start)
		assert.ErrorIs(t, err, ErrPlanNotFound)
		repo.AssertNotCalled(t, "ActivateSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already subscribed", func(t *testing.T) {
		repo := new(RepoMock)
		plans := new(PlansMock)
		svc := NewSubscriptionService(repo, plans, newNoopLogger())

		plans.On("GetPlan", mock.Anything, "plan-1").Return(testPlan(models.DurationMonthly), nil).Once()
		repo.On("ActivateSubscription", mock.Anything, "uid-1", "plan-1", mock.Anything, mock.Anything).
			Return(repository.ErrSubscriptionActive).Once()

		_, err := svc.Subscribe(context.Background(), testUser(), "plan-1", &start)
		assert.ErrorIs(t, err, ErrAlreadySubscribed)
	})
}

func TestSubscriptionService_Current(t *testing.T) {
	t.Run("no subscription", func(t *testing.T) {
		svc := NewSubscriptionService(new(RepoMock), new(PlansMock), newNoopLogger())

		view, err := svc.Current(context.Background(), testUser())
		require.NoError(t, err)
		assert.Nil(t, view)
	})

	t.Run("active subscription", func(t *testing.T) {
		plans := new(PlansMock)
		svc := NewSubscriptionService(new(RepoMock), plans, newNoopLogger())

		planID := "plan-1"
		start := date(2024, time.January, 15)
		end := date(2024, time.February, 15)
		user := testUser()
		user.Subscription = models.Subscription{
			PlanID:    &planID,
			Status:    models.SubscriptionActive,
			StartDate: &start,
			EndDate:   &end,
		}
		plans.On("GetPlan", mock.Anything, "plan-1").Return(testPlan(models.DurationMonthly), nil).Once()

		view, err := svc.Current(context.Background(), user)
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, models.SubscriptionActive, view.Status)
		assert.Equal(t, end, view.EndDate)
		assert.Equal(t, "Premium Plan", view.Plan.Name)
	})
}

func TestSubscriptionService_Cancel(t *testing.T) {
	t.Run("success keeps end date", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewSubscriptionService(repo, new(PlansMock), newNoopLogger())

		planID := "plan-1"
		end := date(2024, time.February, 15)
		user := testUser()
		user.Subscription = models.Subscription{
			PlanID: &planID,
			Status: models.SubscriptionActive,
			EndDate: &end,
		}
		repo.On("CancelSubscription", mock.Anything, "uid-1").Return(nil).Once()

		gotEnd, err := svc.Cancel(context.Background(), user)
		require.NoError(t, err)
		require.NotNil(t, gotEnd)
		assert.Equal(t, end, *gotEnd)
	})

	t.Run("nothing to cancel", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewSubscriptionService(repo, new(PlansMock), newNoopLogger())

		repo.On("CancelSubscription", mock.Anything, "uid-1").
			Return(repository.ErrNoActiveSubscription).Once()

		_, err := svc.Cancel(context.Background(), testUser())
		assert.ErrorIs(t, err, ErrNoActiveSubscription)
	})
}
