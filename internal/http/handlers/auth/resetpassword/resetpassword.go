// Package resetpassword реализует HTTP-обработчик установки нового пароля
// по одноразовому токену восстановления.
package resetpassword

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/mobilka/subscription-portal/internal/http/response"
	"github.com/mobilka/subscription-portal/internal/lib/sl"
	authservice "github.com/mobilka/subscription-portal/internal/services/auth"
)

// Request — входные данные для сброса пароля.
type Request struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// Service описывает интерфейс бизнес-логики сброса пароля.
type Service interface {
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
}

// Handler управляет HTTP-запросами сброса пароля.
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
// @Summary Установить новый пароль по токену восстановления
// @Description Проверяет одноразовый токен, меняет пароль и выдает свежий токен сессии.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Токен восстановления и новый пароль"
// @Success 200 {object} response.Response "Новый токен сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или невалидный токен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при сбросе пароля"
// @Router /auth/reset-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	token, err := h.service.ResetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrResetTokenInvalid) {
			log.Error("reset token rejected", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(authservice.ErrResetTokenInvalid.Error()))
			return
		}
		log.Error("failed to reset password", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to reset password"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token":   token,
		"message": "password has been reset successfully",
	}))
}
