// Package subscribe реализует HTTP-обработчик подключения тарифа пользователю.
//
// Handler принимает JSON-запрос с идентификатором тарифа и необязательной
// датой начала, валидирует их и активирует подписку через сервис.
package subscribe

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/mobilka/subscription-portal/internal/http/middlewarectx"
	"github.com/mobilka/subscription-portal/internal/http/response"
	"github.com/mobilka/subscription-portal/internal/lib/sl"
	"github.com/mobilka/subscription-portal/internal/models"
	subservice "github.com/mobilka/subscription-portal/internal/services/subscription"
)

// Request — входные данные для подключения тарифа.
// StartDate в формате 2006-01-02, по умолчанию текущий момент.
type Request struct {
	PlanID    string `json:"plan_id" validate:"required,uuid"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

// Service описывает интерфейс бизнес-логики подключения тарифа.
type Service interface {
	Subscribe(ctx context.Context, user *models.User, planID string, startDate *time.Time) (*models.SubscriptionView, error)
}

// Handler управляет HTTP-запросами подключения тарифа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подключить тариф
// @Description Активирует подписку на тариф. Дата окончания считается по длительности тарифа.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Идентификатор тарифа и необязательная дата начала"
// @Success 200 {object} response.Response "Активированная подписка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 409 {object} response.ErrorResponse "Подписка уже активна"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при подключении тарифа"
// @Router /subscriptions/subscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.subscribe"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user record missing from context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing or invalid authorization header"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	var startDate *time.Time
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			log.Error("failed to parse start date", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid start date"))
			return
		}
		startDate = &parsed
	}

	view, err := h.service.Subscribe(r.Context(), user, req.PlanID, startDate)
	if err != nil {
		switch {
		case errors.Is(err, subservice.ErrPlanNotFound):
			log.Error("plan not found", slog.String("plan_id", req.PlanID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(subservice.ErrPlanNotFound.Error()))
			return
		case errors.Is(err, subservice.ErrAlreadySubscribed):
			log.Error("subscription already active", slog.String("uid", user.UID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(subservice.ErrAlreadySubscribed.Error()))
			return
		}
		log.Error("failed to subscribe", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to subscribe"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": view,
	}))
}
