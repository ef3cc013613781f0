package repository

import (
	"context"

	"github.com/maps-gateway/internal/domain"
)

// ProviderAdapter определяет набор операций, который реализует каждый
// адаптер внешнего провайдера
type ProviderAdapter interface {
	// Provider возвращает тег провайдера этого адаптера
	Provider() domain.Provider

	// Geocode переводит текстовый адрес в координаты
	Geocode(ctx context.Context, address string) (*domain.GeocodeIntermediate, error)

	// ReverseGeocode переводит координаты в адрес
	ReverseGeocode(ctx context.Context, lat, lng float64) (*domain.GeocodeIntermediate, error)

	// GetDirections строит маршрут между двумя текстовыми адресами
	GetDirections(ctx context.Context, origin, destination string, mode domain.TravelMode) (*domain.DirectionsIntermediate, error)
}

// ProviderRegistry разрешает имя провайдера в его адаптер.
// Реестр неизменяем после конструирования.
type ProviderRegistry interface {
	// Resolve возвращает адаптер или ProviderUnavailable, если провайдер
	// не сконфигурирован или вне закрытого перечисления
	Resolve(p domain.Provider) (ProviderAdapter, error)

	// Default возвращает провайдер по умолчанию
	Default() domain.Provider

	// Available возвращает список сконфигурированных провайдеров
	Available() []domain.Provider
}
