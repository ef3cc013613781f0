package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/domain/repository"
	apperrors "github.com/maps-gateway/internal/pkg/errors"
	"go.uber.org/zap"
)

type clientRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewClientRepository создает новый экземпляр client repository
func NewClientRepository(db *DB, logger *zap.Logger) repository.ClientRepository {
	return &clientRepository{
		db:     db,
		logger: logger,
	}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (
			id, name, email, api_key, plan,
			quota_daily, quota_monthly,
			usage_daily, usage_monthly, usage_last_reset,
			allowed_providers, is_active, created_at, updated_at
		) VALUES (
			:id, :name, :email, :api_key, :plan,
			:quota_daily, :quota_monthly,
			:usage_daily, :usage_monthly, :usage_last_reset,
			:allowed_providers, :is_active, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, client)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrClientExists
		}
		r.logger.Error("Failed to create client", zap.Error(err))
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.GetContext(ctx, &client, `SELECT * FROM clients WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrClientNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get client by id", zap.Error(err))
		return nil, fmt.Errorf("get client by id: %w", err)
	}
	return &client, nil
}

func (r *clientRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Client, error) {
	var client domain.Client
	err := r.db.GetContext(ctx, &client,
		`SELECT * FROM clients WHERE api_key = $1 AND is_active = true`, apiKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		r.logger.Error("Failed to get client by api key", zap.Error(err))
		return nil, fmt.Errorf("get client by api key: %w", err)
	}
	return &client, nil
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE clients SET
			name = :name,
			plan = :plan,
			quota_daily = :quota_daily,
			quota_monthly = :quota_monthly,
			allowed_providers = :allowed_providers,
			is_active = :is_active,
			updated_at = now()
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, client)
	if err != nil {
		r.logger.Error("Failed to update client", zap.Error(err))
		return fmt.Errorf("update client: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.ErrClientNotFound
	}
	return nil
}

func (r *clientRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE clients SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to deactivate client", zap.Error(err))
		return fmt.Errorf("deactivate client: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.ErrClientNotFound
	}
	return nil
}

// IncrementUsage увеличивает оба счетчика одним выражением на стороне
// базы. Конкурентные инкременты сериализуются блокировкой строки,
// поэтому потерянных обновлений не бывает.
func (r *clientRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE clients SET
			usage_daily = usage_daily + 1,
			usage_monthly = usage_monthly + 1,
			updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to increment usage", zap.String("client_id", id.String()), zap.Error(err))
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}

// RolloverUsage выполняет ленивый сброс счетчиков при пересечении границы
// дня/месяца. Сравнение идет с usage_last_reset внутри одного условного
// UPDATE, так что конкурентные вызовы (в том числе из разных процессов)
// не могут обнулить счетчик дважды.
func (r *clientRepository) RolloverUsage(ctx context.Context, id uuid.UUID, now time.Time) (*domain.UsageCounters, error) {
	var counters domain.UsageCounters
	err := r.db.GetContext(ctx, &counters, `
		UPDATE clients SET
			usage_daily = CASE
				WHEN date_trunc('day', usage_last_reset) < date_trunc('day', $2::timestamptz)
				THEN 0 ELSE usage_daily END,
			usage_monthly = CASE
				WHEN date_trunc('month', usage_last_reset) < date_trunc('month', $2::timestamptz)
				THEN 0 ELSE usage_monthly END,
			usage_last_reset = CASE
				WHEN date_trunc('day', usage_last_reset) < date_trunc('day', $2::timestamptz)
				THEN $2::timestamptz ELSE usage_last_reset END
		WHERE id = $1
		RETURNING usage_daily, usage_monthly, usage_last_reset`, id, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrClientNotFound
	}
	if err != nil {
		r.logger.Error("Failed to rollover usage", zap.String("client_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("rollover usage: %w", err)
	}
	return &counters, nil
}

// isUniqueViolation распознает нарушение уникального индекса (код 23505)
func isUniqueViolation(err error) bool {
	type pgError interface {
		SQLState() string
	}
	var pgErr pgError
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
