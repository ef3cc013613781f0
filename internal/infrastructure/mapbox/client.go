package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/maps-gateway/internal/config"
	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/domain/repository"
	"github.com/maps-gateway/internal/pkg/errors"
	"go.uber.org/zap"
)

type client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	logger      *zap.Logger
}

// NewClient создает новый адаптер для Mapbox API
func NewClient(cfg *config.MapboxConfig, logger *zap.Logger) repository.ProviderAdapter {
	return &client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		logger:      logger,
	}
}

func (c *client) Provider() domain.Provider {
	return domain.ProviderMapbox
}

// Geocode переводит адрес в координаты через Mapbox Geocoding API v5
func (c *client) Geocode(ctx context.Context, address string) (*domain.GeocodeIntermediate, error) {
	params := url.Values{}
	params.Set("access_token", c.accessToken)
	params.Set("types", "address,place,locality,neighborhood,postcode")

	requestURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s",
		c.baseURL, url.PathEscape(address), params.Encode())

	return c.fetchFeature(ctx, requestURL)
}

// ReverseGeocode переводит координаты в адрес.
// Mapbox принимает координаты в порядке {lng},{lat}.
func (c *client) ReverseGeocode(ctx context.Context, lat, lng float64) (*domain.GeocodeIntermediate, error) {
	params := url.Values{}
	params.Set("access_token", c.accessToken)
	params.Set("types", "address,place,locality,neighborhood,postcode")

	requestURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%f,%f.json?%s",
		c.baseURL, lng, lat, params.Encode())

	return c.fetchFeature(ctx, requestURL)
}

// GetDirections строит маршрут через Mapbox Directions API.
// Mapbox маршрутизирует по парам координат, поэтому оба адреса сначала
// геокодируются (параллельно), затем выполняется запрос маршрута.
func (c *client) GetDirections(ctx context.Context, origin, destination string, mode domain.TravelMode) (*domain.DirectionsIntermediate, error) {
	profile, err := mapMode(mode)
	if err != nil {
		return nil, err
	}

	originLoc, destLoc, err := c.geocodePair(ctx, origin, destination)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("access_token", c.accessToken)
	params.Set("geometries", "polyline")
	params.Set("steps", "true")

	requestURL := fmt.Sprintf("%s/directions/v5/mapbox/%s/%f,%f;%f,%f?%s",
		c.baseURL, profile,
		originLoc.Lng, originLoc.Lat,
		destLoc.Lng, destLoc.Lat,
		params.Encode())

	body, err := c.doGet(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var resp domain.OSRMResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("Failed to decode Mapbox directions response", zap.Error(err))
		return nil, errors.ErrUpstreamProtocol
	}

	if len(resp.Routes) == 0 {
		c.logger.Warn("Mapbox directions returned no route",
			zap.String("code", resp.Code),
			zap.String("message", resp.Message))
		return nil, errors.UpstreamError(domain.ProviderMapbox.String(), http.StatusOK, "No route found")
	}

	return &domain.DirectionsIntermediate{
		Provider: domain.ProviderMapbox,
		Mapbox:   &resp.Routes[0],
		Raw:      json.RawMessage(body),
	}, nil
}

// geocodePair геокодирует origin и destination двумя параллельными
// запросами; оба обязаны завершиться успешно
func (c *client) geocodePair(ctx context.Context, origin, destination string) (domain.Location, domain.Location, error) {
	type geocodeResult struct {
		loc domain.Location
		err error
	}

	originChan := make(chan geocodeResult, 1)
	destChan := make(chan geocodeResult, 1)

	go func() {
		inter, err := c.Geocode(ctx, origin)
		if err != nil {
			originChan <- geocodeResult{err: err}
			return
		}
		originChan <- geocodeResult{loc: featureLocation(inter.Mapbox)}
	}()

	go func() {
		inter, err := c.Geocode(ctx, destination)
		if err != nil {
			destChan <- geocodeResult{err: err}
			return
		}
		destChan <- geocodeResult{loc: featureLocation(inter.Mapbox)}
	}()

	originRes := <-originChan
	destRes := <-destChan

	if originRes.err != nil {
		return domain.Location{}, domain.Location{}, fmt.Errorf("failed to geocode origin: %w", originRes.err)
	}
	if destRes.err != nil {
		return domain.Location{}, domain.Location{}, fmt.Errorf("failed to geocode destination: %w", destRes.err)
	}

	return originRes.loc, destRes.loc, nil
}

func (c *client) fetchFeature(ctx context.Context, requestURL string) (*domain.GeocodeIntermediate, error) {
	body, err := c.doGet(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var resp domain.MapboxGeocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("Failed to decode Mapbox geocode response", zap.Error(err))
		return nil, errors.ErrUpstreamProtocol
	}

	if len(resp.Features) == 0 {
		return nil, errors.UpstreamError(domain.ProviderMapbox.String(), http.StatusOK, "No results found")
	}

	if len(resp.Features[0].Center) < 2 {
		return nil, errors.ErrUpstreamProtocol
	}

	return &domain.GeocodeIntermediate{
		Provider: domain.ProviderMapbox,
		Mapbox:   &resp.Features[0],
		Raw:      json.RawMessage(body),
	}, nil
}

func (c *client) doGet(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Mapbox API request failed", zap.Error(err))
		return nil, errors.ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Failed to read Mapbox API response", zap.Error(err))
		return nil, errors.ErrUpstreamUnavailable
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Mapbox API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, errors.UpstreamError(domain.ProviderMapbox.String(), resp.StatusCode, string(body))
	}

	return body, nil
}

// featureLocation извлекает {lat,lng} из [lng,lat] пары Mapbox
func featureLocation(f *domain.MapboxFeature) domain.Location {
	return domain.Location{Lat: f.Center[1], Lng: f.Center[0]}
}

// mapMode переводит канонический режим в профиль Mapbox Directions.
// Транзитных маршрутов у Mapbox нет.
func mapMode(mode domain.TravelMode) (string, error) {
	switch mode {
	case domain.ModeDriving, domain.ModeWalking:
		return string(mode), nil
	case domain.ModeBicycling, domain.ModeCycling:
		return string(domain.ModeCycling), nil
	}
	return "", errors.ErrUnsupportedMode.WithDetails(map[string]interface{}{
		"provider": domain.ProviderMapbox.String(),
		"mode":     string(mode),
	})
}
