package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mobilka/subscription-portal/internal/models"
	authservice "github.com/mobilka/subscription-portal/internal/services/auth"
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, name, email, password string, phone *string) (string, *models.User, error) {
	args := m.Called(ctx, name, email, password, phone)
	var user *models.User
	if args.Get(1) != nil {
		user = args.Get(1).(*models.User)
	}
	return args.String(0), user, args.Error(2)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	newUser := &models.User{
		UID:          "uid-1",
		Name:         "Test User",
		Email:        "new@example.com",
		Role:         models.RoleUser,
		IsActive:     true,
		Subscription: models.Subscription{Status: models.SubscriptionNone},
	}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "successful registration",
			body: `{"name":"Test User","email":"new@example.com","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "Test User", "new@example.com", "secret123", (*string)(nil)).
					Return("jwt-token", newUser, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"token":"jwt-token"`,
		},
		{
			name:           "invalid JSON",
			body:           `{"name":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "short password",
			body:           `{"name":"Test User","email":"new@example.com","password":"123"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Password is too short`,
		},
		{
			name:           "invalid email",
			body:           `{"name":"Test User","email":"not-an-email","password":"secret123"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Email must be a valid email address`,
		},
		{
			name: "email already taken",
			body: `{"name":"Test User","email":"new@example.com","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "Test User", "new@example.com", "secret123", (*string)(nil)).
					Return("", nil, authservice.ErrEmailTaken)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"email already registered"`,
		},
		{
			name: "service error",
			body: `{"name":"Test User","email":"new@example.com","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "Test User", "new@example.com", "secret123", (*string)(nil)).
					Return("", nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to register user"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
