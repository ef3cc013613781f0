package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/maps-gateway/internal/config"
	"github.com/maps-gateway/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Типы операций кеша результатов
const (
	OpGeocode        = "geocode"
	OpReverseGeocode = "reverseGeocode"
	OpDirections     = "directions"
	OpModes          = "modes"
)

type resultCache struct {
	client     *redis.Client
	logger     *zap.Logger
	enabled    bool
	ttls       map[string]time.Duration
	defaultTTL time.Duration
}

// NewResultCache создает кеш канонических результатов поверх Redis.
// При выключенном кеше Get и Set остаются дешевыми no-op.
func NewResultCache(redis *Redis, cfg *config.CacheConfig) repository.ResultCacheRepository {
	return &resultCache{
		client:  redis.Client(),
		logger:  redis.logger,
		enabled: cfg.Enabled,
		ttls: map[string]time.Duration{
			OpGeocode:        cfg.GeocodeTTL,
			OpReverseGeocode: cfg.GeocodeTTL,
			OpDirections:     cfg.DirectionsTTL,
			OpModes:          cfg.ModesTTL,
		},
		defaultTTL: cfg.DefaultTTL,
	}
}

// BuildKey строит детерминированный ключ: тип операции плюс JSON
// параметров. encoding/json сериализует map с сортировкой ключей,
// поэтому эквивалентные запросы с любым порядком аргументов дают
// один и тот же ключ.
func BuildKey(opType string, params map[string]string) string {
	encoded, err := json.Marshal(params)
	if err != nil {
		// map[string]string не может не сериализоваться
		encoded = []byte("{}")
	}
	return fmt.Sprintf("%s:%s", opType, encoded)
}

func (c *resultCache) Enabled() bool {
	return c.enabled
}

func (c *resultCache) Get(ctx context.Context, opType string, params map[string]string) ([]byte, error) {
	if !c.enabled {
		return nil, nil
	}

	key := BuildKey(opType, params)
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	c.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (c *resultCache) Set(ctx context.Context, opType string, params map[string]string, value []byte) error {
	if !c.enabled {
		return nil
	}

	key := BuildKey(opType, params)
	ttl, ok := c.ttls[opType]
	if !ok {
		ttl = c.defaultTTL
	}

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	c.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}
