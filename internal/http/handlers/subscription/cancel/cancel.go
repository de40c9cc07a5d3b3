// Package cancel реализует HTTP-обработчик отмены активной подписки.
//
// Отмена не обрывает доступ сразу: дата окончания сохраняется,
// подписка лишь переводится в статус inactive.
package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mobilka/subscription-portal/internal/http/middlewarectx"
	"github.com/mobilka/subscription-portal/internal/http/response"
	"github.com/mobilka/subscription-portal/internal/lib/sl"
	"github.com/mobilka/subscription-portal/internal/models"
	subservice "github.com/mobilka/subscription-portal/internal/services/subscription"
)

// Service описывает интерфейс бизнес-логики отмены подписки.
type Service interface {
	Cancel(ctx context.Context, user *models.User) (*time.Time, error)
}

// Handler управляет HTTP-запросами отмены подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить активную подписку
// @Description Переводит подписку в inactive, доступ сохраняется до даты окончания.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Подписка отменена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Активной подписки нет"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при отмене подписки"
// @Router /subscriptions/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"

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

	endDate, err := h.service.Cancel(r.Context(), user)
	if err != nil {
		if errors.Is(err, subservice.ErrNoActiveSubscription) {
			log.Error("no active subscription", slog.String("uid", user.UID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(subservice.ErrNoActiveSubscription.Error()))
			return
		}
		log.Error("failed to cancel subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to cancel subscription"))
		return
	}

	data := map[string]any{
		"message": "subscription cancelled, access remains until the end date",
	}
	if endDate != nil {
		data["end_date"] = endDate
	}
	render.JSON(w, r, response.StatusOKWithData(data))
}
