// Package update реализует HTTP-обработчик частичного обновления тарифа администратором.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/mobilka/subscription-portal/internal/http/response"
	"github.com/mobilka/subscription-portal/internal/lib/sl"
	"github.com/mobilka/subscription-portal/internal/models"
	planservice "github.com/mobilka/subscription-portal/internal/services/plan"
)

// Service описывает интерфейс бизнес-логики обновления тарифа.
type Service interface {
	Update(ctx context.Context, planID string, upd models.DummyPlanUpdate) (*models.Plan, error)
}

// Handler управляет HTTP-запросами обновления тарифа.
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
// @Summary Обновить тариф
// @Description Частично обновляет поля тарифа, включая скрытые тарифы. Доступно только администратору.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "Идентификатор тарифа"
// @Param request body models.DummyPlanUpdate true "Изменяемые поля тарифа"
// @Success 200 {object} response.Response "Обновленный тариф"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 409 {object} response.ErrorResponse "Тариф с таким именем уже существует"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при обновлении тарифа"
// @Router /admin/plans/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	planID := chi.URLParam(r, "id")
	if err := h.validate.Var(planID, "required,uuid"); err != nil {
		log.Error("invalid plan id", slog.String("plan_id", planID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid plan id"))
		return
	}

	var req models.DummyPlanUpdate
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

	plan, err := h.service.Update(r.Context(), planID, req)
	if err != nil {
		switch {
		case errors.Is(err, planservice.ErrPlanNotFound):
			log.Error("plan not found", slog.String("plan_id", planID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(planservice.ErrPlanNotFound.Error()))
			return
		case errors.Is(err, planservice.ErrPlanNameTaken):
			log.Error("plan name already exists", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(planservice.ErrPlanNameTaken.Error()))
			return
		}
		log.Error("failed to update plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update plan"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plan":      plan.GetSummary(),
		"is_active": plan.IsActive,
	}))
}
