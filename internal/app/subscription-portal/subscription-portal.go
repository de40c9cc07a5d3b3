// Package subscriptionportal собирает зависимости основного приложения:
// хранилище, кэш, очередь сообщений, сервисы и HTTP-сервер.
package subscriptionportal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/mobilka/subscription-portal/internal/cache"
	"github.com/mobilka/subscription-portal/internal/config"
	"github.com/mobilka/subscription-portal/internal/lib/jwt"
	"github.com/mobilka/subscription-portal/internal/migrations"
	"github.com/mobilka/subscription-portal/internal/rabbitmq"
	authservice "github.com/mobilka/subscription-portal/internal/services/auth"
	planservice "github.com/mobilka/subscription-portal/internal/services/plan"
	subservice "github.com/mobilka/subscription-portal/internal/services/subscription"
	"github.com/mobilka/subscription-portal/internal/storage/repository"
)

// App основное приложение портала подписок.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New инициализирует зависимости приложения: подключается к базе данных,
// прогоняет миграции, поднимает кэш и очередь, собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}
	mailQueue := rabbitmq.NewResetMailQueue(rabbitmq.NewPublisher(ch))

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, mailQueue, jwtMaker, cfg.ResetTokenTTL, logger)
	planService := planservice.NewPlanService(db, cacheRedis, logger)
	subscriptionService := subservice.NewSubscriptionService(db, db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, db, authService, planService, subscriptionService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   conn,
	}, nil
}

// Run запускает HTTP-сервер и корректно останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		if closeErr := a.amqp.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbitmq connection", slog.Any("err", closeErr))
		}
		return err
	}
}
