// Package logout реализует HTTP-обработчик выхода из аккаунта.
//
// Сессии хранятся только на клиенте: токен не отзывается на сервере,
// клиент просто перестает его использовать.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mobilka/subscription-portal/internal/http/response"
)

// Handler управляет HTTP-запросами выхода.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Выйти из аккаунта
// @Description Подтверждает выход. Токен стирается на стороне клиента.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Выход подтвержден"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	log.Info("user logged out")

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "logged out successfully",
	}))
}
