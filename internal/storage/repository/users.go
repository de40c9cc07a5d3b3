package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mobilka/subscription-portal/internal/models"
)

const uniqueViolationCode = "23505"

const userColumns = `uid, name, email, password_hash, phone, address, role, is_active,
	subscription_plan_id, subscription_status, subscription_start, subscription_end,
	password_reset_token_hash, password_reset_expires, last_login, created_at`

// scanUser разбирает строку users с учетом nullable-колонок.
func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	var phone, address, planID, resetHash sql.NullString
	var subStart, subEnd, resetExpires, lastLogin sql.NullTime

	if err := row.Scan(&u.UID, &u.Name, &u.Email, &u.PasswordHash, &phone, &address,
		&u.Role, &u.IsActive, &planID, &u.Subscription.Status, &subStart, &subEnd,
		&resetHash, &resetExpires, &lastLogin, &u.CreatedAt); err != nil {
		return nil, err
	}

	if phone.Valid {
		u.Phone = &phone.String
	}
	if address.Valid {
		u.Address = &address.String
	}
	if planID.Valid {
		u.Subscription.PlanID = &planID.String
	}
	if subStart.Valid {
		u.Subscription.StartDate = &subStart.Time
	}
	if subEnd.Valid {
		u.Subscription.EndDate = &subEnd.Time
	}
	if resetHash.Valid {
		u.PasswordResetTokenHash = &resetHash.String
	}
	if resetExpires.Valid {
		u.PasswordResetExpires = &resetExpires.Time
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его UID.
// Возвращает ErrEmailExists при нарушении уникальности email.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (name, email, password_hash, phone, address, role, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Phone, user.Address,
		user.Role, user.IsActive).Scan(&newUID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return "", fmt.Errorf("%s: %w", op, ErrEmailExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByUID возвращает пользователя по его UID.
func (s *Storage) GetUserByUID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateLastLogin фиксирует время последнего входа.
func (s *Storage) UpdateLastLogin(ctx context.Context, userUID string, at time.Time) error {
	const op = "storage.UpdateLastLogin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET last_login = $1 WHERE uid = $2`
	_, err := s.DB.ExecContext(ctx, query, at, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateProfile частично обновляет профиль: nil-поля остаются без изменений.
// Возвращает обновленного пользователя.
func (s *Storage) UpdateProfile(ctx context.Context, userUID string, upd models.ProfileUpdate) (*models.User, error) {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET name = COALESCE($1, name),
			      phone = COALESCE($2, phone),
			      address = COALESCE($3, address)
			  WHERE uid = $4
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, upd.Name, upd.Phone, upd.Address, userUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// SetResetToken сохраняет хэш токена восстановления и срок его действия.
func (s *Storage) SetResetToken(ctx context.Context, userUID, tokenHash string, expires time.Time) error {
	const op = "storage.SetResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_reset_token_hash = $1, password_reset_expires = $2
			  WHERE uid = $3`
	_, err := s.DB.ExecContext(ctx, query, tokenHash, expires, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearResetToken сбрасывает поля восстановления пароля.
func (s *Storage) ClearResetToken(ctx context.Context, userUID string) error {
	const op = "storage.ClearResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_reset_token_hash = NULL, password_reset_expires = NULL
			  WHERE uid = $1`
	_, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserByResetTokenHash возвращает пользователя с совпадающим хэшем токена
// восстановления, срок действия которого еще не истек.
func (s *Storage) GetUserByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	const op = "storage.GetUserByResetTokenHash"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE password_reset_token_hash = $1
			    AND password_reset_expires > $2`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, tokenHash, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdatePassword устанавливает новый хэш пароля и сбрасывает поля восстановления.
func (s *Storage) UpdatePassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_hash = $1,
			      password_reset_token_hash = NULL,
			      password_reset_expires = NULL
			  WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// ActivateSubscription записывает активную подписку одним условным UPDATE:
// переход проходит только если текущий статус не active. Два конкурентных
// вызова не могут активировать подписку дважды.
func (s *Storage) ActivateSubscription(ctx context.Context, userUID, planID string, start, end time.Time) error {
	const op = "storage.ActivateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_plan_id = $1,
			      subscription_status = 'active',
			      subscription_start = $2,
			      subscription_end = $3
			  WHERE uid = $4
			    AND subscription_status <> 'active'`
	res, err := s.DB.ExecContext(ctx, query, planID, start, end, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		var exists bool
		if err := s.DB.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE uid = $1)`, userUID).Scan(&exists); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, ErrSubscriptionActive)
	}
	return nil
}

// CancelSubscription помечает активную подписку как inactive, не трогая даты.
// Условие в WHERE исключает отмену отсутствующей или уже отмененной подписки.
func (s *Storage) CancelSubscription(ctx context.Context, userUID string) error {
	const op = "storage.CancelSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_status = 'inactive'
			  WHERE uid = $1
			    AND subscription_plan_id IS NOT NULL
			    AND subscription_status = 'active'`
	res, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoActiveSubscription)
	}
	return nil
}
