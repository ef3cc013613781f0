// Package ratelimit реализует лимитер коротких окон по ключу
// (клиент или адрес сети) и категории операции. Счетчики живут
// в памяти процесса; межпроцессный лимит обеспечивает квота.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/maps-gateway/internal/config"
	"github.com/maps-gateway/internal/pkg/errors"
	"golang.org/x/time/rate"
)

// Category - категория операции с независимым лимитом
type Category string

const (
	CategoryDefault    Category = "default"
	CategoryGeocode    Category = "geocode"
	CategoryDirections Category = "directions"
	CategoryStrict     Category = "strict"
)

type limitDef struct {
	window time.Duration
	max    int
}

type keyedLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Governor выдает разрешения на запросы. Для каждой пары
// (ключ, категория) поддерживается token bucket с burst = max
// и скоростью пополнения max/window.
type Governor struct {
	limits map[Category]limitDef

	mu       sync.Mutex
	limiters map[string]*keyedLimiter

	cleanupInterval time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
}

// NewGovernor создает Governor с лимитами из конфигурации и запускает
// фоновую чистку неактивных лимитеров
func NewGovernor(cfg *config.RateLimitConfig) *Governor {
	g := &Governor{
		limits: map[Category]limitDef{
			CategoryDefault:    {window: cfg.DefaultWindow, max: cfg.DefaultMax},
			CategoryGeocode:    {window: cfg.GeocodeWindow, max: cfg.GeocodeMax},
			CategoryDirections: {window: cfg.DirectionsWindow, max: cfg.DirectionsMax},
			CategoryStrict:     {window: cfg.StrictWindow, max: cfg.StrictMax},
		},
		limiters:        make(map[string]*keyedLimiter),
		cleanupInterval: cfg.CleanupInterval,
		stopCh:          make(chan struct{}),
	}

	go g.cleanupLoop()

	return g
}

// Allow проверяет лимит категории для ключа. При превышении возвращает
// RateLimited с подсказкой retry_after; запрос отклоняется сразу,
// без ожидания в очереди.
func (g *Governor) Allow(key string, category Category) error {
	def, ok := g.limits[category]
	if !ok {
		def = g.limits[CategoryDefault]
	}

	limiter := g.getOrCreate(string(category)+":"+key, def)

	if !limiter.Allow() {
		return errors.RateLimited(retryAfterSec(def))
	}
	return nil
}

// Limit возвращает параметры лимита категории
func (g *Governor) Limit(category Category) (window time.Duration, max int) {
	def, ok := g.limits[category]
	if !ok {
		def = g.limits[CategoryDefault]
	}
	return def.window, def.max
}

// Stop останавливает фоновую чистку
func (g *Governor) Stop() {
	g.stopOnce.Do(func() {
		close(g.stopCh)
	})
}

func (g *Governor) getOrCreate(mapKey string, def limitDef) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	if kl, ok := g.limiters[mapKey]; ok {
		kl.lastAccess = time.Now()
		return kl.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(float64(def.max)/def.window.Seconds()), def.max)
	g.limiters[mapKey] = &keyedLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}
	return limiter
}

func (g *Governor) cleanupLoop() {
	ticker := time.NewTicker(g.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.cleanup()
		case <-g.stopCh:
			return
		}
	}
}

// cleanup удаляет лимитеры, к которым не обращались дольше самого
// длинного окна: их bucket уже полон и состояние можно пересоздать
func (g *Governor) cleanup() {
	var maxWindow time.Duration
	for _, def := range g.limits {
		if def.window > maxWindow {
			maxWindow = def.window
		}
	}

	now := time.Now()

	g.mu.Lock()
	for key, kl := range g.limiters {
		if now.Sub(kl.lastAccess) > maxWindow {
			delete(g.limiters, key)
		}
	}
	g.mu.Unlock()
}

// retryAfterSec - секунды до пополнения одного токена
func retryAfterSec(def limitDef) int {
	perToken := def.window.Seconds() / float64(def.max)
	sec := int(math.Ceil(perToken))
	if sec < 1 {
		sec = 1
	}
	return sec
}
