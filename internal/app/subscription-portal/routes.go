// Package subscriptionportal предоставляет маршруты для основного приложения.
package subscriptionportal

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/mobilka/subscription-portal/internal/http/handlers/auth/forgotpassword"
	"github.com/mobilka/subscription-portal/internal/http/handlers/auth/getprofile"
	"github.com/mobilka/subscription-portal/internal/http/handlers/auth/login"
	"github.com/mobilka/subscription-portal/internal/http/handlers/auth/logout"
	"github.com/mobilka/subscription-portal/internal/http/handlers/auth/register"
	"github.com/mobilka/subscription-portal/internal/http/handlers/auth/resetpassword"
	"github.com/mobilka/subscription-portal/internal/http/handlers/auth/updateprofile"
	"github.com/mobilka/subscription-portal/internal/http/handlers/health"
	plancreate "github.com/mobilka/subscription-portal/internal/http/handlers/plan/create"
	planlist "github.com/mobilka/subscription-portal/internal/http/handlers/plan/list"
	planread "github.com/mobilka/subscription-portal/internal/http/handlers/plan/read"
	planremove "github.com/mobilka/subscription-portal/internal/http/handlers/plan/remove"
	planupdate "github.com/mobilka/subscription-portal/internal/http/handlers/plan/update"
	"github.com/mobilka/subscription-portal/internal/http/handlers/subscription/cancel"
	"github.com/mobilka/subscription-portal/internal/http/handlers/subscription/current"
	"github.com/mobilka/subscription-portal/internal/http/handlers/subscription/subscribe"
	"github.com/mobilka/subscription-portal/internal/http/middlewarectx"
	"github.com/mobilka/subscription-portal/internal/lib/jwt"
	authservice "github.com/mobilka/subscription-portal/internal/services/auth"
	planservice "github.com/mobilka/subscription-portal/internal/services/plan"
	subservice "github.com/mobilka/subscription-portal/internal/services/subscription"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	jwtMaker jwt.Maker,
	users middlewarectx.UserProvider,
	authService *authservice.AuthService,
	planService *planservice.PlanService,
	subscriptionService *subservice.SubscriptionService,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	authLimiter := rate.NewLimiter(5, 20)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки аутентификации с ограничением частоты
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, authLimiter))
			r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
			r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
			r.Post("/auth/forgot-password", forgotpassword.New(logger, authService).ServeHTTP)
			r.Post("/auth/reset-password", resetpassword.New(logger, authService).ServeHTTP)
		})

		// Публичный каталог тарифов
		r.Get("/plans", planlist.New(logger, planService).ServeHTTP)
		r.Get("/plans/{id}", planread.New(logger, planService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, users, logger))
			r.Get("/auth/me", getprofile.New(logger).ServeHTTP)
			r.Put("/auth/profile", updateprofile.New(logger, authService).ServeHTTP)
			r.Post("/auth/logout", logout.New(logger).ServeHTTP)
			r.Post("/subscriptions/subscribe", subscribe.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/my-subscription", current.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/cancel", cancel.New(logger, subscriptionService).ServeHTTP)

			// Администрирование каталога
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/admin/plans", plancreate.New(logger, planService).ServeHTTP)
				r.Put("/admin/plans/{id}", planupdate.New(logger, planService).ServeHTTP)
				r.Delete("/admin/plans/{id}", planremove.New(logger, planService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
