package infrastructure

import (
	"github.com/maps-gateway/internal/config"
	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/domain/repository"
	"github.com/maps-gateway/internal/infrastructure/google"
	"github.com/maps-gateway/internal/infrastructure/mapbox"
	"github.com/maps-gateway/internal/infrastructure/osm"
	"github.com/maps-gateway/internal/pkg/errors"
	"go.uber.org/zap"
)

// Registry хранит сконфигурированные адаптеры по тегу провайдера.
// Собирается один раз при старте и дальше не изменяется.
type Registry struct {
	adapters map[domain.Provider]repository.ProviderAdapter
}

// NewRegistry собирает реестр из конфигурации. Google и Mapbox
// подключаются только при наличии учетных данных; OSM ключа не требует
// и регистрируется всегда.
func NewRegistry(cfg *config.ProvidersConfig, logger *zap.Logger) *Registry {
	adapters := make(map[domain.Provider]repository.ProviderAdapter)

	if cfg.Google.APIKey != "" {
		adapters[domain.ProviderGoogle] = google.NewClient(&cfg.Google, logger)
	} else {
		logger.Warn("Google Maps API key is not set, provider disabled")
	}

	if cfg.Mapbox.AccessToken != "" {
		adapters[domain.ProviderMapbox] = mapbox.NewClient(&cfg.Mapbox, logger)
	} else {
		logger.Warn("Mapbox access token is not set, provider disabled")
	}

	adapters[domain.ProviderOSM] = osm.NewClient(&cfg.OSM, logger)

	providers := make([]string, 0, len(adapters))
	for p := range adapters {
		providers = append(providers, p.String())
	}
	logger.Info("Provider registry initialized", zap.Strings("providers", providers))

	return &Registry{adapters: adapters}
}

// NewRegistryWithAdapters собирает реестр из готовых адаптеров (для тестов)
func NewRegistryWithAdapters(adapters ...repository.ProviderAdapter) *Registry {
	m := make(map[domain.Provider]repository.ProviderAdapter, len(adapters))
	for _, a := range adapters {
		m[a.Provider()] = a
	}
	return &Registry{adapters: m}
}

// Resolve возвращает адаптер провайдера или ProviderUnavailable,
// если провайдер не сконфигурирован или вне закрытого перечисления
func (r *Registry) Resolve(p domain.Provider) (repository.ProviderAdapter, error) {
	adapter, ok := r.adapters[p]
	if !ok {
		return nil, errors.ErrProviderUnavailable.WithDetails(map[string]interface{}{
			"provider": p.String(),
		})
	}
	return adapter, nil
}

// Default возвращает провайдер по умолчанию
func (r *Registry) Default() domain.Provider {
	return domain.DefaultProvider
}

// Available возвращает сконфигурированные провайдеры в фиксированном порядке
func (r *Registry) Available() []domain.Provider {
	available := make([]domain.Provider, 0, len(r.adapters))
	for _, p := range domain.AllProviders() {
		if _, ok := r.adapters[p]; ok {
			available = append(available, p)
		}
	}
	return available
}
