package google

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
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewClient создает новый адаптер для Google Maps API
func NewClient(cfg *config.GoogleConfig, logger *zap.Logger) repository.ProviderAdapter {
	return &client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

func (c *client) Provider() domain.Provider {
	return domain.ProviderGoogle
}

// Geocode переводит адрес в координаты через Google Geocoding API
func (c *client) Geocode(ctx context.Context, address string) (*domain.GeocodeIntermediate, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)

	body, err := c.doGet(ctx, fmt.Sprintf("%s/geocode/json?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	return c.decodeGeocode(body)
}

// ReverseGeocode переводит координаты в адрес
func (c *client) ReverseGeocode(ctx context.Context, lat, lng float64) (*domain.GeocodeIntermediate, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("key", c.apiKey)

	body, err := c.doGet(ctx, fmt.Sprintf("%s/geocode/json?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	return c.decodeGeocode(body)
}

// GetDirections строит маршрут через Google Directions API.
// Google принимает текстовые адреса, поэтому достаточно одного запроса.
func (c *client) GetDirections(ctx context.Context, origin, destination string, mode domain.TravelMode) (*domain.DirectionsIntermediate, error) {
	upstreamMode, err := mapMode(mode)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("mode", upstreamMode)
	params.Set("key", c.apiKey)

	body, err := c.doGet(ctx, fmt.Sprintf("%s/directions/json?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	var resp domain.GoogleDirectionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("Failed to decode Google directions response", zap.Error(err))
		return nil, errors.ErrUpstreamProtocol
	}

	if resp.Status != "OK" || len(resp.Routes) == 0 {
		c.logger.Warn("Google directions returned no route",
			zap.String("status", resp.Status),
			zap.String("error_message", resp.ErrorMessage))
		return nil, errors.UpstreamError(domain.ProviderGoogle.String(), http.StatusOK,
			fmt.Sprintf("Directions failed: %s", resp.Status))
	}

	if len(resp.Routes[0].Legs) == 0 {
		return nil, errors.ErrUpstreamProtocol
	}

	return &domain.DirectionsIntermediate{
		Provider: domain.ProviderGoogle,
		Google:   &resp.Routes[0],
		Raw:      json.RawMessage(body),
	}, nil
}

func (c *client) decodeGeocode(body []byte) (*domain.GeocodeIntermediate, error) {
	var resp domain.GoogleGeocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("Failed to decode Google geocode response", zap.Error(err))
		return nil, errors.ErrUpstreamProtocol
	}

	if resp.Status != "OK" || len(resp.Results) == 0 {
		c.logger.Warn("Google geocode returned no results",
			zap.String("status", resp.Status),
			zap.String("error_message", resp.ErrorMessage))
		return nil, errors.UpstreamError(domain.ProviderGoogle.String(), http.StatusOK,
			fmt.Sprintf("Geocoding failed: %s", resp.Status))
	}

	return &domain.GeocodeIntermediate{
		Provider: domain.ProviderGoogle,
		Google:   &resp.Results[0],
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
		c.logger.Error("Google API request failed", zap.Error(err))
		return nil, errors.ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Failed to read Google API response", zap.Error(err))
		return nil, errors.ErrUpstreamUnavailable
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Google API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, errors.UpstreamError(domain.ProviderGoogle.String(), resp.StatusCode, string(body))
	}

	return body, nil
}

// mapMode переводит канонический режим в словарь Google Directions API.
// Google принимает все четыре канонических режима; cycling - синоним bicycling.
func mapMode(mode domain.TravelMode) (string, error) {
	switch mode {
	case domain.ModeDriving, domain.ModeWalking, domain.ModeBicycling, domain.ModeTransit:
		return string(mode), nil
	case domain.ModeCycling:
		return string(domain.ModeBicycling), nil
	}
	return "", errors.ErrUnsupportedMode.WithDetails(map[string]interface{}{
		"provider": domain.ProviderGoogle.String(),
		"mode":     string(mode),
	})
}
