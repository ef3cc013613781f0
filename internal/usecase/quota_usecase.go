package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/domain/repository"
	"github.com/maps-gateway/internal/pkg/errors"
)

// QuotaUseCase - учет квот и публикация событий использования
type QuotaUseCase struct {
	clientRepo repository.ClientRepository
	streamRepo repository.StreamRepository
	logger     *zap.Logger
}

// NewQuotaUseCase - создание нового QuotaUseCase
func NewQuotaUseCase(
	clientRepo repository.ClientRepository,
	streamRepo repository.StreamRepository,
	logger *zap.Logger,
) *QuotaUseCase {
	return &QuotaUseCase{
		clientRepo: clientRepo,
		streamRepo: streamRepo,
		logger:     logger,
	}
}

// Check выполняет ленивый сброс счетчиков и сверяет их с лимитами
// клиента. Возвращает ErrQuotaExceeded при исчерпании любого из двух.
func (uc *QuotaUseCase) Check(ctx context.Context, client *domain.Client) error {
	counters, err := uc.clientRepo.RolloverUsage(ctx, client.ID, time.Now().UTC())
	if err != nil {
		uc.logger.Error("Failed to rollover usage counters",
			zap.String("client_id", client.ID.String()),
			zap.Error(err))
		return err
	}

	if counters.Daily >= client.QuotaDaily {
		return errors.ErrQuotaExceeded.WithDetails(map[string]interface{}{
			"scope": "daily",
			"limit": client.QuotaDaily,
		})
	}
	if counters.Monthly >= client.QuotaMonthly {
		return errors.ErrQuotaExceeded.WithDetails(map[string]interface{}{
			"scope": "monthly",
			"limit": client.QuotaMonthly,
		})
	}

	return nil
}

// Charge списывает одну единицу квоты. Списание выполняется до вызова
// провайдера и не откатывается при его сбое.
func (uc *QuotaUseCase) Charge(ctx context.Context, clientID uuid.UUID) error {
	if err := uc.clientRepo.IncrementUsage(ctx, clientID); err != nil {
		uc.logger.Error("Failed to increment usage counters",
			zap.String("client_id", clientID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

// RecordUsage публикует событие использования в стрим для асинхронной
// агрегации. Ошибка публикации логируется и не влияет на ответ клиенту.
func (uc *QuotaUseCase) RecordUsage(ctx context.Context, event *domain.UsageEvent) {
	if err := uc.streamRepo.PublishToStream(ctx, domain.StreamUsageEvents, event); err != nil {
		uc.logger.Warn("Failed to publish usage event",
			zap.String("client_id", event.ClientID.String()),
			zap.String("endpoint", event.Endpoint),
			zap.Error(err))
	}
}
