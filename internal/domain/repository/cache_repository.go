package repository

import (
	"context"
)

// ResultCacheRepository определяет кеш канонических результатов.
// Ключ строится из типа операции и детерминированно сериализованных
// параметров, поэтому эквивалентные запросы с любым порядком аргументов
// попадают в одну запись.
type ResultCacheRepository interface {
	// Get возвращает (nil, nil) при промахе или выключенном кеше
	Get(ctx context.Context, opType string, params map[string]string) ([]byte, error)

	// Set сохраняет значение с TTL типа операции; no-op при выключенном кеше
	Set(ctx context.Context, opType string, params map[string]string, value []byte) error

	// Enabled сообщает, включен ли кеш
	Enabled() bool
}
