// Package getprofile реализует HTTP-обработчик выдачи профиля текущего пользователя.
package getprofile

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mobilka/subscription-portal/internal/http/middlewarectx"
	"github.com/mobilka/subscription-portal/internal/http/response"
)

// Handler управляет HTTP-запросами чтения профиля.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Получить профиль текущего пользователя
// @Description Возвращает профиль без учетных данных и полей восстановления.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Профиль пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.getprofile"

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

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user.GetProfile(),
	}))
}
