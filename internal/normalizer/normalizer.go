// Package normalizer приводит помеченные тегом провайдера промежуточные
// результаты к каноническим схемам шлюза. Функции чистые и не мутируют
// вход: промежуточный результат нужен другим слоям для кеширования
// и диагностики.
package normalizer

import (
	"fmt"
	"math"
	"strconv"

	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/pkg/errors"
)

// NormalizeGeocode приводит промежуточный результат геокодирования
// к канонической схеме. Диспетчеризация - по тегу провайдера.
func NormalizeGeocode(in *domain.GeocodeIntermediate) (*domain.GeocodeResult, error) {
	switch in.Provider {
	case domain.ProviderGoogle:
		return normalizeGoogleGeocode(in)
	case domain.ProviderMapbox:
		return normalizeMapboxGeocode(in)
	case domain.ProviderOSM:
		return normalizeOSMGeocode(in)
	}

	// Расхождение перечислений реестра и нормализатора - дефект
	// программы, а не ошибка пользователя
	return nil, errors.ErrUnsupportedProvider.WithDetails(map[string]interface{}{
		"provider": in.Provider.String(),
	})
}

// NormalizeDirections приводит промежуточный результат маршрутизации
// к канонической схеме
func NormalizeDirections(in *domain.DirectionsIntermediate) (*domain.DirectionsResult, error) {
	switch in.Provider {
	case domain.ProviderGoogle:
		return normalizeGoogleDirections(in)
	case domain.ProviderMapbox:
		return normalizeOSRMDirections(in.Provider, in.Mapbox, in.Raw)
	case domain.ProviderOSM:
		return normalizeOSRMDirections(in.Provider, in.OSM, in.Raw)
	}

	return nil, errors.ErrUnsupportedProvider.WithDetails(map[string]interface{}{
		"provider": in.Provider.String(),
	})
}

func normalizeGoogleGeocode(in *domain.GeocodeIntermediate) (*domain.GeocodeResult, error) {
	r := in.Google
	if r == nil {
		return nil, errors.ErrUpstreamProtocol
	}

	types := make([]string, len(r.Types))
	copy(types, r.Types)

	return &domain.GeocodeResult{
		Address:  r.FormattedAddress,
		Location: r.Geometry.Location,
		PlaceID:  r.PlaceID,
		Types:    types,
		Source:   domain.ProviderGoogle,
		Raw:      in.Raw,
	}, nil
}

func normalizeMapboxGeocode(in *domain.GeocodeIntermediate) (*domain.GeocodeResult, error) {
	f := in.Mapbox
	if f == nil || len(f.Center) < 2 {
		return nil, errors.ErrUpstreamProtocol
	}

	types := make([]string, len(f.PlaceType))
	copy(types, f.PlaceType)

	return &domain.GeocodeResult{
		Address: f.PlaceName,
		// Mapbox отдает [lng, lat]
		Location: domain.Location{Lat: f.Center[1], Lng: f.Center[0]},
		PlaceID:  f.ID,
		Types:    types,
		Source:   domain.ProviderMapbox,
		Raw:      in.Raw,
	}, nil
}

func normalizeOSMGeocode(in *domain.GeocodeIntermediate) (*domain.GeocodeResult, error) {
	p := in.OSM
	if p == nil {
		return nil, errors.ErrUpstreamProtocol
	}

	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return nil, errors.ErrUpstreamProtocol
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return nil, errors.ErrUpstreamProtocol
	}

	return &domain.GeocodeResult{
		Address:  p.DisplayName,
		Location: domain.Location{Lat: lat, Lng: lng},
		PlaceID:  strconv.FormatInt(p.PlaceID, 10),
		Types:    []string{p.Type},
		Source:   domain.ProviderOSM,
		Raw:      in.Raw,
	}, nil
}

func normalizeGoogleDirections(in *domain.DirectionsIntermediate) (*domain.DirectionsResult, error) {
	route := in.Google
	if route == nil || len(route.Legs) == 0 {
		return nil, errors.ErrUpstreamProtocol
	}

	leg := route.Legs[0]
	steps := make([]domain.DirectionsStep, 0, len(leg.Steps))
	for _, s := range leg.Steps {
		steps = append(steps, domain.DirectionsStep{
			Instruction: s.HTMLInstructions,
			Distance:    domain.TextValue{Text: s.Distance.Text, Value: s.Distance.Value},
			Duration:    domain.TextValue{Text: s.Duration.Text, Value: s.Duration.Value},
			Polyline:    s.Polyline.Points,
		})
	}

	return &domain.DirectionsResult{
		Distance: domain.TextValue{Text: leg.Distance.Text, Value: leg.Distance.Value},
		Duration: domain.TextValue{Text: leg.Duration.Text, Value: leg.Duration.Value},
		Steps:    steps,
		Polyline: route.OverviewPolyline.Points,
		Source:   domain.ProviderGoogle,
		Raw:      in.Raw,
	}, nil
}

// normalizeOSRMDirections обслуживает ветки Mapbox и OSM: оба отдают
// OSRM-совместимый маршрут с расстояниями в метрах и длительностями
// в секундах без человекочитаемого текста
func normalizeOSRMDirections(provider domain.Provider, route *domain.OSRMRoute, raw []byte) (*domain.DirectionsResult, error) {
	if route == nil || len(route.Legs) == 0 {
		return nil, errors.ErrUpstreamProtocol
	}

	legSteps := route.Legs[0].Steps
	steps := make([]domain.DirectionsStep, 0, len(legSteps))
	for _, s := range legSteps {
		steps = append(steps, domain.DirectionsStep{
			Instruction: s.Maneuver.Instruction,
			Distance:    domain.TextValue{Text: formatDistance(s.Distance), Value: s.Distance},
			Duration:    domain.TextValue{Text: formatDuration(s.Duration), Value: s.Duration},
			Polyline:    s.Geometry,
		})
	}

	return &domain.DirectionsResult{
		Distance: domain.TextValue{Text: formatDistance(route.Distance), Value: route.Distance},
		Duration: domain.TextValue{Text: formatDuration(route.Duration), Value: route.Duration},
		Steps:    steps,
		Polyline: route.Geometry,
		Source:   provider,
		Raw:      raw,
	}, nil
}

func formatDistance(meters float64) string {
	return fmt.Sprintf("%.1f km", meters/1000)
}

func formatDuration(seconds float64) string {
	return fmt.Sprintf("%d min", int(math.Round(seconds/60)))
}
