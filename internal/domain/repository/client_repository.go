package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/maps-gateway/internal/domain"
)

// ClientRepository определяет методы для работы с клиентами шлюза
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)

	// GetByAPIKey ищет активного клиента по API-ключу
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Client, error)

	// Update сохраняет изменяемые поля профиля (имя, тариф, лимиты,
	// разрешенные провайдеры, флаг активности)
	Update(ctx context.Context, client *domain.Client) error

	// Deactivate - мягкое удаление клиента
	Deactivate(ctx context.Context, id uuid.UUID) error

	// IncrementUsage атомарно увеличивает оба счетчика использования
	// на стороне хранилища; конкурентные вызовы не теряют инкременты
	IncrementUsage(ctx context.Context, id uuid.UUID) error

	// RolloverUsage лениво обнуляет счетчики при пересечении границы
	// дня/месяца и возвращает актуальные значения. Сброс выполняется
	// условным UPDATE, поэтому конкурентные вызовы не обнуляют дважды.
	RolloverUsage(ctx context.Context, id uuid.UUID, now time.Time) (*domain.UsageCounters, error)
}
