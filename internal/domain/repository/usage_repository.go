package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/maps-gateway/internal/domain"
)

// UsageRepository определяет методы для журнала использования
type UsageRepository interface {
	// Upsert создает или обновляет строку для ключа
	// (клиент, день, эндпоинт, провайдер). Среднее время ответа
	// пересчитывается в том же выражении, что и счетчики, поэтому
	// конкурентные обновления одного ключа сериализуются хранилищем.
	Upsert(ctx context.Context, event *domain.UsageEvent) error

	// ListByClient возвращает записи клиента за период [from, to]
	ListByClient(ctx context.Context, clientID uuid.UUID, from, to time.Time) ([]domain.UsageRecord, error)
}
