// Package forgotpassword реализует HTTP-обработчик запроса восстановления пароля.
//
// Ответ не раскрывает, зарегистрирован ли email: для существующего и
// несуществующего адреса наружу уходит одно и то же сообщение.
package forgotpassword

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/mobilka/subscription-portal/internal/http/response"
	"github.com/mobilka/subscription-portal/internal/lib/sl"
)

// Request — входные данные запроса восстановления пароля.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Service описывает интерфейс бизнес-логики восстановления пароля.
type Service interface {
	RequestPasswordReset(ctx context.Context, email string) error
}

// Handler управляет HTTP-запросами восстановления пароля.
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
// @Summary Запросить восстановление пароля
// @Description Отправляет письмо со ссылкой восстановления, если email зарегистрирован.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email аккаунта"
// @Success 200 {object} response.Response "Запрос принят"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Не удалось отправить письмо"
// @Router /auth/forgot-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword"

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

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		log.Error("failed to process password reset request", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to send password reset email"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "if that email address is registered, a password reset link has been sent",
	}))
}
