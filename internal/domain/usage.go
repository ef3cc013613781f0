package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stream names
const (
	StreamUsageEvents = "stream:usage:events"
)

// UsageRecord - строка статистики на ключ (клиент, день, эндпоинт, провайдер).
// Инвариант: AverageResponseTimeMs == TotalResponseTimeMs / Count после
// каждого обновления; арифметика выполняется на стороне хранилища.
type UsageRecord struct {
	ID                    int64     `db:"id" json:"id"`
	ClientID              uuid.UUID `db:"client_id" json:"client_id"`
	Date                  time.Time `db:"date" json:"date"`
	Endpoint              string    `db:"endpoint" json:"endpoint"`
	Provider              string    `db:"provider" json:"provider"`
	Count                 int64     `db:"count" json:"count"`
	SuccessCount          int64     `db:"success_count" json:"success_count"`
	ErrorCount            int64     `db:"error_count" json:"error_count"`
	TotalResponseTimeMs   int64     `db:"total_response_time_ms" json:"total_response_time_ms"`
	AverageResponseTimeMs float64   `db:"average_response_time_ms" json:"average_response_time_ms"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// UsageEvent - событие использования, публикуемое в стрим после ответа
type UsageEvent struct {
	ClientID       uuid.UUID `json:"client_id"`
	Endpoint       string    `json:"endpoint"`
	Provider       string    `json:"provider"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Success        bool      `json:"success"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Day возвращает календарный день события (UTC, усеченный до суток)
func (e *UsageEvent) Day() time.Time {
	return e.OccurredAt.UTC().Truncate(24 * time.Hour)
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
