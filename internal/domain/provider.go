package domain

import "fmt"

// Provider - закрытый набор поддерживаемых картографических провайдеров
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderMapbox Provider = "mapbox"
	ProviderOSM    Provider = "osm"
)

// DefaultProvider - провайдер по умолчанию, когда клиент не указал его явно.
// OSM не требует учетных данных и поэтому всегда доступен.
const DefaultProvider = ProviderOSM

// AllProviders возвращает все провайдеры закрытого перечисления
func AllProviders() []Provider {
	return []Provider{ProviderGoogle, ProviderMapbox, ProviderOSM}
}

// ParseProvider проверяет строку против закрытого перечисления
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderGoogle, ProviderMapbox, ProviderOSM:
		return Provider(s), nil
	}
	return "", fmt.Errorf("unknown provider: %q", s)
}

func (p Provider) String() string {
	return string(p)
}

// TravelMode - канонический словарь режимов передвижения
type TravelMode string

const (
	ModeDriving   TravelMode = "driving"
	ModeWalking   TravelMode = "walking"
	ModeBicycling TravelMode = "bicycling"
	ModeCycling   TravelMode = "cycling"
	ModeTransit   TravelMode = "transit"
)

// ParseTravelMode проверяет строку против канонического словаря
func ParseTravelMode(s string) (TravelMode, error) {
	switch TravelMode(s) {
	case ModeDriving, ModeWalking, ModeBicycling, ModeCycling, ModeTransit:
		return TravelMode(s), nil
	}
	return "", fmt.Errorf("unknown travel mode: %q", s)
}

// SupportedModes возвращает режимы, которые умеет данный провайдер.
// bicycling и cycling - синонимы: Google называет режим bicycling,
// Mapbox и OSRM - cycling.
func SupportedModes(p Provider) []TravelMode {
	switch p {
	case ProviderGoogle:
		return []TravelMode{ModeDriving, ModeWalking, ModeBicycling, ModeTransit}
	case ProviderMapbox, ProviderOSM:
		return []TravelMode{ModeDriving, ModeWalking, ModeCycling}
	}
	return nil
}
