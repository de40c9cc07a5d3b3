package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	planservice "github.com/mobilka/subscription-portal/internal/services/plan"
)

// MockService реализует интерфейс remove.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Delete(ctx context.Context, planID string) error {
	return m.Called(ctx, planID).Error(0)
}

const planID = "2b1f9f3c-8a36-4f6e-9f13-54a1b34a1a2b"

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "successful delete",
			id:   planID,
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, planID).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"message":"plan deleted successfully"`,
		},
		{
			name:           "invalid plan id",
			id:             "abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid plan id"`,
		},
		{
			name: "plan not found",
			id:   planID,
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, planID).Return(planservice.ErrPlanNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"plan not found"`,
		},
		{
			name: "plan has active subscribers",
			id:   planID,
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, planID).Return(planservice.ErrPlanHasSubscribers)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"plan has active subscribers"`,
		},
		{
			name: "service error",
			id:   planID,
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, planID).Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to delete plan"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodDelete, "/admin/plans/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
