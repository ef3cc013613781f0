package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/maps-gateway/internal/config"
	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/domain/repository"
	"github.com/maps-gateway/internal/pkg/errors"
	"go.uber.org/zap"
)

type client struct {
	httpClient   *http.Client
	nominatimURL string
	osrmURL      string
	userAgent    string
	logger       *zap.Logger

	// Политика Nominatim: не чаще одного запроса в секунду.
	// Интервал локален для экземпляра адаптера.
	minInterval time.Duration
	mu          sync.Mutex
	lastCall    time.Time
}

// NewClient создает новый адаптер для OSM (Nominatim + OSRM)
func NewClient(cfg *config.OSMConfig, logger *zap.Logger) repository.ProviderAdapter {
	return &client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		nominatimURL: cfg.NominatimURL,
		osrmURL:      cfg.OSRMURL,
		userAgent:    cfg.UserAgent,
		minInterval:  cfg.MinInterval,
		logger:       logger,
	}
}

func (c *client) Provider() domain.Provider {
	return domain.ProviderOSM
}

// Geocode переводит адрес в координаты через Nominatim
func (c *client) Geocode(ctx context.Context, address string) (*domain.GeocodeIntermediate, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")

	body, err := c.doGet(ctx, fmt.Sprintf("%s/search?%s", c.nominatimURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	var places []domain.NominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		c.logger.Error("Failed to decode Nominatim response", zap.Error(err))
		return nil, errors.ErrUpstreamProtocol
	}

	if len(places) == 0 {
		return nil, errors.UpstreamError(domain.ProviderOSM.String(), http.StatusOK, "No results found")
	}

	return &domain.GeocodeIntermediate{
		Provider: domain.ProviderOSM,
		OSM:      &places[0],
		Raw:      json.RawMessage(body),
	}, nil
}

// ReverseGeocode переводит координаты в адрес
func (c *client) ReverseGeocode(ctx context.Context, lat, lng float64) (*domain.GeocodeIntermediate, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	body, err := c.doGet(ctx, fmt.Sprintf("%s/reverse?%s", c.nominatimURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	var place domain.NominatimPlace
	if err := json.Unmarshal(body, &place); err != nil {
		c.logger.Error("Failed to decode Nominatim reverse response", zap.Error(err))
		return nil, errors.ErrUpstreamProtocol
	}

	if place.DisplayName == "" {
		return nil, errors.UpstreamError(domain.ProviderOSM.String(), http.StatusOK, "No results found")
	}

	return &domain.GeocodeIntermediate{
		Provider: domain.ProviderOSM,
		OSM:      &place,
		Raw:      json.RawMessage(body),
	}, nil
}

// GetDirections строит маршрут через OSRM. Nominatim не умеет маршруты,
// поэтому оба адреса сначала геокодируются (параллельно), затем
// запрашивается маршрут по координатам.
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
	params.Set("overview", "full")
	params.Set("steps", "true")

	requestURL := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?%s",
		c.osrmURL, profile,
		originLoc.Lng, originLoc.Lat,
		destLoc.Lng, destLoc.Lat,
		params.Encode())

	body, err := c.doGet(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var resp domain.OSRMResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("Failed to decode OSRM response", zap.Error(err))
		return nil, errors.ErrUpstreamProtocol
	}

	if len(resp.Routes) == 0 {
		c.logger.Warn("OSRM returned no route",
			zap.String("code", resp.Code),
			zap.String("message", resp.Message))
		return nil, errors.UpstreamError(domain.ProviderOSM.String(), http.StatusOK, "No route found")
	}

	return &domain.DirectionsIntermediate{
		Provider: domain.ProviderOSM,
		OSM:      &resp.Routes[0],
		Raw:      json.RawMessage(body),
	}, nil
}

// geocodePair геокодирует origin и destination параллельно;
// оба обязаны завершиться успешно
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
		loc, err := placeLocation(inter.OSM)
		originChan <- geocodeResult{loc: loc, err: err}
	}()

	go func() {
		inter, err := c.Geocode(ctx, destination)
		if err != nil {
			destChan <- geocodeResult{err: err}
			return
		}
		loc, err := placeLocation(inter.OSM)
		destChan <- geocodeResult{loc: loc, err: err}
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

// waitInterval выдерживает минимальный интервал между исходящими
// запросами. Вызовы сериализуются, чтобы два конкурентных запроса
// не ушли одновременно после общей паузы.
func (c *client) waitInterval(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	deficit := c.minInterval - time.Since(c.lastCall)
	if deficit > 0 {
		select {
		case <-time.After(deficit):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.lastCall = time.Now()
	return nil
}

func (c *client) doGet(ctx context.Context, requestURL string) ([]byte, error) {
	if err := c.waitInterval(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Required by Nominatim usage policy
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("OSM API request failed", zap.Error(err))
		return nil, errors.ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Failed to read OSM API response", zap.Error(err))
		return nil, errors.ErrUpstreamUnavailable
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("OSM API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, errors.UpstreamError(domain.ProviderOSM.String(), resp.StatusCode, string(body))
	}

	return body, nil
}

// placeLocation парсит строковые координаты Nominatim
func placeLocation(p *domain.NominatimPlace) (domain.Location, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return domain.Location{}, errors.ErrUpstreamProtocol
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return domain.Location{}, errors.ErrUpstreamProtocol
	}
	return domain.Location{Lat: lat, Lng: lng}, nil
}

// mapMode переводит канонический режим в профиль OSRM
func mapMode(mode domain.TravelMode) (string, error) {
	switch mode {
	case domain.ModeDriving, domain.ModeWalking:
		return string(mode), nil
	case domain.ModeBicycling, domain.ModeCycling:
		return string(domain.ModeCycling), nil
	}
	return "", errors.ErrUnsupportedMode.WithDetails(map[string]interface{}{
		"provider": domain.ProviderOSM.String(),
		"mode":     string(mode),
	})
}
