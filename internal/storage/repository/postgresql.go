// Package repository реализует хранилище данных на основе PostgreSQL
// для управления пользователями и тарифными планами. Предоставляет методы
// создания, чтения, обновления и удаления записей, а также условные
// переходы статуса подписки.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки хранилища, на которые завязывается бизнес-логика.
var (
	// ErrUserNotFound пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrPlanNotFound тарифный план не найден.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrEmailExists пользователь с таким email уже зарегистрирован.
	ErrEmailExists = errors.New("email already registered")
	// ErrPlanNameExists план с таким именем уже существует.
	ErrPlanNameExists = errors.New("plan name already exists")
	// ErrSubscriptionActive условное обновление не прошло: подписка уже активна.
	ErrSubscriptionActive = errors.New("subscription already active")
	// ErrNoActiveSubscription условное обновление не прошло: нет активной подписки.
	ErrNoActiveSubscription = errors.New("no active subscription")
	// ErrPlanHasSubscribers план нельзя удалить, пока на нем есть активные подписчики.
	ErrPlanHasSubscribers = errors.New("plan has active subscribers")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями и планами.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}
