// Package remove реализует HTTP-обработчик удаления тарифа администратором.
//
// Тариф с активными подписчиками удалить нельзя: сначала подписчики должны
// отменить подписку либо тариф скрывается через is_active.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/mobilka/subscription-portal/internal/http/response"
	"github.com/mobilka/subscription-portal/internal/lib/sl"
	planservice "github.com/mobilka/subscription-portal/internal/services/plan"
)

// Service описывает интерфейс бизнес-логики удаления тарифа.
type Service interface {
	Delete(ctx context.Context, planID string) error
}

// Handler управляет HTTP-запросами удаления тарифа.
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
// @Summary Удалить тариф
// @Description Удаляет тариф без активных подписчиков. Доступно только администратору.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path string true "Идентификатор тарифа"
// @Success 200 {object} response.Response "Тариф удален"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 409 {object} response.ErrorResponse "На тарифе есть активные подписчики"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при удалении тарифа"
// @Router /admin/plans/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.remove"

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

	if err := h.service.Delete(r.Context(), planID); err != nil {
		switch {
		case errors.Is(err, planservice.ErrPlanNotFound):
			log.Error("plan not found", slog.String("plan_id", planID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(planservice.ErrPlanNotFound.Error()))
			return
		case errors.Is(err, planservice.ErrPlanHasSubscribers):
			log.Error("plan has active subscribers", slog.String("plan_id", planID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(planservice.ErrPlanHasSubscribers.Error()))
			return
		}
		log.Error("failed to delete plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete plan"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "plan deleted successfully",
	}))
}
