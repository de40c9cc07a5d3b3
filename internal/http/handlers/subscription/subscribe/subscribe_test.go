package subscribe

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mobilka/subscription-portal/internal/http/middlewarectx"
	"github.com/mobilka/subscription-portal/internal/models"
	subservice "github.com/mobilka/subscription-portal/internal/services/subscription"
)

// MockService реализует интерфейс subscribe.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Subscribe(ctx context.Context, user *models.User, planID string, startDate *time.Time) (*models.SubscriptionView, error) {
	args := m.Called(ctx, user, planID, startDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionView), args.Error(1)
}

const planID = "2b1f9f3c-8a36-4f6e-9f13-54a1b34a1a2b"

func testUser() *models.User {
	return &models.User{
		UID:          "uid-1",
		Email:        "user@example.com",
		IsActive:     true,
		Subscription: models.Subscription{Status: models.SubscriptionNone},
	}
}

func TestSubscribeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	view := &models.SubscriptionView{
		Plan:      models.PlanSummary{ID: planID, Name: "Premium Plan"},
		Status:    models.SubscriptionActive,
		StartDate: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name           string
		body           string
		withUser       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "successful subscribe with start date",
			body:     `{"plan_id":"` + planID + `","start_date":"2024-01-15"}`,
			withUser: true,
			setupMock: func(m *MockService) {
				start := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
				m.On("Subscribe", mock.Anything, mock.Anything, planID, &start).
					Return(view, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"active"`,
		},
		{
			name:     "plan not found",
			body:     `{"plan_id":"` + planID + `"}`,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, mock.Anything, planID, (*time.Time)(nil)).
					Return(nil, subservice.ErrPlanNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"plan not found"`,
		},
		{
			name:     "subscription already active",
			body:     `{"plan_id":"` + planID + `"}`,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, mock.Anything, planID, (*time.Time)(nil)).
					Return(nil, subservice.ErrAlreadySubscribed)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"user already has an active subscription"`,
		},
		{
			name:           "invalid plan id",
			body:           `{"plan_id":"not-a-uuid"}`,
			withUser:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field PlanID can contain only uuid`,
		},
		{
			name:           "no user in context",
			body:           `{"plan_id":"` + planID + `"}`,
			withUser:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"missing or invalid authorization header"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/subscriptions/subscribe", strings.NewReader(tt.body))
			if tt.withUser {
				ctx := context.WithValue(req.Context(), middlewarectx.CurrentUser, testUser())
				req = req.WithContext(ctx)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
