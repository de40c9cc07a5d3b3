// Команда seed создает администратора, если его еще нет.
// Тарифы каталога заливаются миграциями, здесь остается только аккаунт:
// пароль администратора не должен попадать в файлы миграций.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/mobilka/subscription-portal/internal/config"
	"github.com/mobilka/subscription-portal/internal/lib/password"
	"github.com/mobilka/subscription-portal/internal/lib/sl"
	"github.com/mobilka/subscription-portal/internal/migrations"
	"github.com/mobilka/subscription-portal/internal/models"
	authservice "github.com/mobilka/subscription-portal/internal/services/auth"
	"github.com/mobilka/subscription-portal/internal/storage/repository"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		logger.Error("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
		os.Exit(1)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()

	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		logger.Error("failed to run migrations", sl.Err(err))
		os.Exit(1)
	}

	hash, err := password.GetHash(adminPassword)
	if err != nil {
		logger.Error("failed to hash admin password", sl.Err(err))
		os.Exit(1)
	}

	admin := models.User{
		Name:         "Administrator",
		Email:        authservice.NormalizeEmail(adminEmail),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}

	uid, err := db.CreateUser(context.Background(), admin)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			logger.Info("admin account already exists", slog.String("email", admin.Email))
			return
		}
		logger.Error("failed to create admin account", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("admin account created", slog.String("uid", uid), slog.String("email", admin.Email))
}
