package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/domain/repository"
	"github.com/maps-gateway/internal/worker"
)

const (
	maxBatchSize    = 50                     // максимум сообщений за раз
	emptyQueueSleep = 100 * time.Millisecond // пауза если очередь пуста
)

// UsageWorker агрегирует события использования из Redis Stream в
// строки статистики (клиент, день, эндпоинт, провайдер)
type UsageWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	usageRepo    repository.UsageRepository
	consumerName string
	maxRetries   int
}

// NewUsageWorker создает новый UsageWorker
func NewUsageWorker(
	streamRepo repository.StreamRepository,
	usageRepo repository.UsageRepository,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *UsageWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &UsageWorker{
		BaseWorker:   worker.NewBaseWorker("usage-aggregation", consumerGroup, logger),
		streamRepo:   streamRepo,
		usageRepo:    usageRepo,
		consumerName: consumerName,
		maxRetries:   maxRetries,
	}
}

// Start запускает воркер
func (w *UsageWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting UsageWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_batch_size", maxBatchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamUsageEvents, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.processBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				time.Sleep(time.Second) // пауза при ошибке
				continue
			}

			if processed == 0 {
				time.Sleep(emptyQueueSleep)
			}
		}
	}
}

// processBatch читает пачку событий и записывает их в хранилище.
// Возвращает количество обработанных сообщений.
func (w *UsageWorker) processBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(ctx, domain.StreamUsageEvents, w.ConsumerGroup(), w.consumerName, maxBatchSize)
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}

	processed := 0
	for _, msg := range messages {
		var event domain.UsageEvent
		if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
			// Битое сообщение подтверждаем, чтобы не крутить его вечно
			logger.Warn("Failed to unmarshal usage event, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			w.ack(ctx, msg.ID)
			continue
		}

		if err := w.upsertWithRetry(ctx, &event); err != nil {
			// Без ack: сообщение останется в pending и будет
			// перечитано после перезапуска
			logger.Error("Failed to store usage event",
				zap.String("message_id", msg.ID),
				zap.String("client_id", event.ClientID.String()),
				zap.Error(err))
			continue
		}

		w.ack(ctx, msg.ID)
		processed++
	}

	logger.Debug("Usage batch processed",
		zap.Int("received", len(messages)),
		zap.Int("processed", processed))
	return processed, nil
}

func (w *UsageWorker) upsertWithRetry(ctx context.Context, event *domain.UsageEvent) error {
	var err error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = w.usageRepo.Upsert(ctx, event); err == nil {
			return nil
		}
	}
	return err
}

func (w *UsageWorker) ack(ctx context.Context, messageID string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamUsageEvents, w.ConsumerGroup(), messageID); err != nil {
		w.Logger().Warn("Failed to ack message",
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}
