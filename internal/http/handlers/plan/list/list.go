// Package list реализует HTTP-обработчик публичного списка тарифов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mobilka/subscription-portal/internal/http/response"
	"github.com/mobilka/subscription-portal/internal/lib/sl"
	"github.com/mobilka/subscription-portal/internal/models"
)

// Service описывает интерфейс бизнес-логики каталога тарифов.
type Service interface {
	ListActive(ctx context.Context) ([]models.PlanSummary, error)
}

// Handler управляет HTTP-запросами списка тарифов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить список активных тарифов
// @Description Возвращает активные тарифы каталога по возрастанию цены.
// @Tags Plans
// @Produce  json
// @Success 200 {object} response.Response "Список тарифов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении каталога"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.service.ListActive(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list plans"))
		return
	}
	log.Info("plans listed", slog.Int("count", len(plans)))

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plans": plans,
		"count": len(plans),
	}))
}
