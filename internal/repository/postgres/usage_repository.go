package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/domain/repository"
	"go.uber.org/zap"
)

type usageRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUsageRepository создает новый экземпляр usage repository
func NewUsageRepository(db *DB, logger *zap.Logger) repository.UsageRepository {
	return &usageRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert создает или обновляет строку статистики. Счетчики и среднее
// считаются в одном выражении над заблокированной строкой, поэтому
// инвариант average == total / count не дрейфует при конкурентных
// обновлениях одного ключа.
func (r *usageRepository) Upsert(ctx context.Context, event *domain.UsageEvent) error {
	successInc := 0
	errorInc := 0
	if event.Success {
		successInc = 1
	} else {
		errorInc = 1
	}

	query := `
		INSERT INTO usage_records (
			client_id, date, endpoint, provider,
			count, success_count, error_count,
			total_response_time_ms, average_response_time_ms,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, 1, $5, $6, $7, $7, now(), now())
		ON CONFLICT (client_id, date, endpoint, provider) DO UPDATE SET
			count = usage_records.count + 1,
			success_count = usage_records.success_count + EXCLUDED.success_count,
			error_count = usage_records.error_count + EXCLUDED.error_count,
			total_response_time_ms = usage_records.total_response_time_ms + EXCLUDED.total_response_time_ms,
			average_response_time_ms =
				(usage_records.total_response_time_ms + EXCLUDED.total_response_time_ms)::float8
				/ (usage_records.count + 1),
			updated_at = now()`

	_, err := r.db.ExecContext(ctx, query,
		event.ClientID, event.Day(), event.Endpoint, event.Provider,
		successInc, errorInc, event.ResponseTimeMs)
	if err != nil {
		r.logger.Error("Failed to upsert usage record",
			zap.String("client_id", event.ClientID.String()),
			zap.String("endpoint", event.Endpoint),
			zap.Error(err))
		return fmt.Errorf("upsert usage record: %w", err)
	}
	return nil
}

func (r *usageRepository) ListByClient(ctx context.Context, clientID uuid.UUID, from, to time.Time) ([]domain.UsageRecord, error) {
	var records []domain.UsageRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM usage_records
		WHERE client_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC, endpoint, provider`, clientID, from, to)
	if err != nil {
		r.logger.Error("Failed to list usage records",
			zap.String("client_id", clientID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	return records, nil
}
