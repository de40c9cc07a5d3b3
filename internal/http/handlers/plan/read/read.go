// Package read реализует HTTP-обработчик чтения одного тарифа по идентификатору.
package read

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
	"github.com/mobilka/subscription-portal/internal/models"
	planservice "github.com/mobilka/subscription-portal/internal/services/plan"
)

// Service описывает интерфейс бизнес-логики чтения тарифа.
type Service interface {
	Get(ctx context.Context, planID string) (*models.PlanSummary, error)
}

// Handler управляет HTTP-запросами чтения тарифа.
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
// @Summary Получить тариф по идентификатору
// @Description Возвращает активный тариф каталога. Скрытые тарифы не находятся.
// @Tags Plans
// @Produce  json
// @Param id path string true "Идентификатор тарифа"
// @Success 200 {object} response.Response "Тариф"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении тарифа"
// @Router /plans/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.read"

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

	plan, err := h.service.Get(r.Context(), planID)
	if err != nil {
		if errors.Is(err, planservice.ErrPlanNotFound) {
			log.Error("plan not found", slog.String("plan_id", planID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(planservice.ErrPlanNotFound.Error()))
			return
		}
		log.Error("failed to read plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read plan"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plan": plan,
	}))
}
