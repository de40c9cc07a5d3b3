package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mobilka/subscription-portal/internal/models"
)

const planColumns = `id, name, description, price, currency, duration, features,
	data_limit, call_features, entertainment, is_popular, is_active, max_users,
	category, color, created_at, updated_at`

// scanPlan разбирает строку plans, десериализуя JSONB-колонки.
func scanPlan(row interface{ Scan(dest ...any) error }) (*models.Plan, error) {
	p := &models.Plan{}
	var features, dataLimit, callFeatures, entertainment []byte

	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency, &p.Duration,
		&features, &dataLimit, &callFeatures, &entertainment, &p.IsPopular, &p.IsActive,
		&p.MaxUsers, &p.Category, &p.Color, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(features, &p.Features); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(dataLimit, &p.DataLimit); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(callFeatures, &p.CallFeatures); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(entertainment, &p.Entertainment); err != nil {
		return nil, err
	}
	return p, nil
}

// marshalPlanJSON сериализует JSONB-поля плана.
func marshalPlanJSON(p *models.Plan) (features, dataLimit, callFeatures, entertainment []byte, err error) {
	if p.Features == nil {
		p.Features = []models.PlanFeature{}
	}
	if features, err = json.Marshal(p.Features); err != nil {
		return nil, nil, nil, nil, err
	}
	if dataLimit, err = json.Marshal(p.DataLimit); err != nil {
		return nil, nil, nil, nil, err
	}
	if callFeatures, err = json.Marshal(p.CallFeatures); err != nil {
		return nil, nil, nil, nil, err
	}
	if entertainment, err = json.Marshal(p.Entertainment); err != nil {
		return nil, nil, nil, nil, err
	}
	return features, dataLimit, callFeatures, entertainment, nil
}

// CreatePlan сохраняет новый тарифный план и возвращает его со сгенерированным ID.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error) {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	features, dataLimit, callFeatures, entertainment, err := marshalPlanJSON(&plan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO plans (name, description, price, currency, duration, features,
			      data_limit, call_features, entertainment, is_popular, is_active,
			      max_users, category, color)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  RETURNING ` + planColumns
	created, err := scanPlan(s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Description, plan.Price, plan.Currency, plan.Duration,
		features, dataLimit, callFeatures, entertainment,
		plan.IsPopular, plan.IsActive, plan.MaxUsers, plan.Category, plan.Color))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, fmt.Errorf("%s: %w", op, ErrPlanNameExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetPlan возвращает план по ID независимо от его активности.
// Видимость неактивных планов решает вызывающая сторона.
func (s *Storage) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	p, err := scanPlan(s.DB.QueryRowContext(ctx, query, planID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrPlanNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListActivePlans возвращает активные планы по возрастанию цены.
func (s *Storage) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.ListActivePlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + `
			  FROM plans
			  WHERE is_active = true
			  ORDER BY price ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Plan
	for rows.Next() {
		item, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePlan перезаписывает план целиком и возвращает обновленную запись.
// Слияние частичных полей выполняет сервисный слой.
func (s *Storage) UpdatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error) {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	features, dataLimit, callFeatures, entertainment, err := marshalPlanJSON(&plan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE plans
			  SET name = $1, description = $2, price = $3, currency = $4, duration = $5,
			      features = $6, data_limit = $7, call_features = $8, entertainment = $9,
			      is_popular = $10, is_active = $11, max_users = $12, category = $13,
			      color = $14, updated_at = now()
			  WHERE id = $15
			  RETURNING ` + planColumns
	updated, err := scanPlan(s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Description, plan.Price, plan.Currency, plan.Duration,
		features, dataLimit, callFeatures, entertainment,
		plan.IsPopular, plan.IsActive, plan.MaxUsers, plan.Category, plan.Color, plan.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrPlanNotFound)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, fmt.Errorf("%s: %w", op, ErrPlanNameExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// DeletePlan физически удаляет план. Удаление запрещено, пока на плане
// есть активные подписчики; проверка и удаление идут в одной транзакции.
// Ссылки из неактивных подписок обнуляются за счет FK ON DELETE SET NULL.
func (s *Storage) DeletePlan(ctx context.Context, planID string) error {
	const op = "storage.DeletePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var subscribers int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users
		 WHERE subscription_plan_id = $1
		   AND subscription_status = 'active'`, planID).Scan(&subscribers); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if subscribers > 0 {
		return fmt.Errorf("%s: %w", op, ErrPlanHasSubscribers)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, planID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrPlanNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
