package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/maps-gateway/internal/config"
	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/infrastructure"
	"github.com/maps-gateway/internal/pkg/errors"
	"github.com/maps-gateway/internal/ratelimit"
	"github.com/maps-gateway/internal/usecase"
	"github.com/maps-gateway/internal/usecase/dto"
)

// MockClientRepository is a mock of ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *domain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Client, error) {
	args := m.Called(ctx, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, client *domain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClientRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClientRepository) RolloverUsage(ctx context.Context, id uuid.UUID, now time.Time) (*domain.UsageCounters, error) {
	args := m.Called(ctx, id, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageCounters), args.Error(1)
}

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

// MockResultCache is a mock of ResultCacheRepository
type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) Get(ctx context.Context, opType string, params map[string]string) ([]byte, error) {
	args := m.Called(ctx, opType, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockResultCache) Set(ctx context.Context, opType string, params map[string]string, value []byte) error {
	args := m.Called(ctx, opType, params, value)
	return args.Error(0)
}

func (m *MockResultCache) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockProviderAdapter is a mock of ProviderAdapter
type MockProviderAdapter struct {
	mock.Mock
	provider domain.Provider
}

func (m *MockProviderAdapter) Provider() domain.Provider {
	return m.provider
}

func (m *MockProviderAdapter) Geocode(ctx context.Context, address string) (*domain.GeocodeIntermediate, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeocodeIntermediate), args.Error(1)
}

func (m *MockProviderAdapter) ReverseGeocode(ctx context.Context, lat, lng float64) (*domain.GeocodeIntermediate, error) {
	args := m.Called(ctx, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeocodeIntermediate), args.Error(1)
}

func (m *MockProviderAdapter) GetDirections(ctx context.Context, origin, destination string, mode domain.TravelMode) (*domain.DirectionsIntermediate, error) {
	args := m.Called(ctx, origin, destination, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DirectionsIntermediate), args.Error(1)
}

type gatewayFixture struct {
	uc         *usecase.GatewayUseCase
	clientRepo *MockClientRepository
	streamRepo *MockStreamRepository
	cache      *MockResultCache
	osm        *MockProviderAdapter
	google     *MockProviderAdapter
	governor   *ratelimit.Governor
	client     *domain.Client
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	clientRepo := new(MockClientRepository)
	streamRepo := new(MockStreamRepository)
	resultCache := new(MockResultCache)
	osmAdapter := &MockProviderAdapter{provider: domain.ProviderOSM}
	googleAdapter := &MockProviderAdapter{provider: domain.ProviderGoogle}

	governor := ratelimit.NewGovernor(&config.RateLimitConfig{
		DefaultWindow:    15 * time.Minute,
		DefaultMax:       100,
		GeocodeWindow:    time.Hour,
		GeocodeMax:       1000,
		DirectionsWindow: time.Hour,
		DirectionsMax:    500,
		StrictWindow:     time.Hour,
		StrictMax:        50,
		CleanupInterval:  time.Minute,
	})
	t.Cleanup(governor.Stop)

	logger := zap.NewNop()
	quotaUC := usecase.NewQuotaUseCase(clientRepo, streamRepo, logger)
	registry := infrastructure.NewRegistryWithAdapters(osmAdapter, googleAdapter)
	uc := usecase.NewGatewayUseCase(registry, resultCache, governor, quotaUC, logger)

	return &gatewayFixture{
		uc:         uc,
		clientRepo: clientRepo,
		streamRepo: streamRepo,
		cache:      resultCache,
		osm:        osmAdapter,
		google:     googleAdapter,
		governor:   governor,
		client: &domain.Client{
			ID:               uuid.New(),
			Name:             "acme",
			Plan:             domain.PlanFree,
			QuotaDaily:       1000,
			QuotaMonthly:     30000,
			AllowedProviders: pq.StringArray{"osm", "google", "mapbox"},
			IsActive:         true,
		},
	}
}

func (f *gatewayFixture) allowQuota() {
	f.clientRepo.On("RolloverUsage", mock.Anything, f.client.ID, mock.Anything).
		Return(&domain.UsageCounters{Daily: 10, Monthly: 100}, nil)
	f.clientRepo.On("IncrementUsage", mock.Anything, f.client.ID).Return(nil)
	f.streamRepo.On("PublishToStream", mock.Anything, domain.StreamUsageEvents, mock.Anything).Return(nil)
}

func osmIntermediate() *domain.GeocodeIntermediate {
	return &domain.GeocodeIntermediate{
		Provider: domain.ProviderOSM,
		OSM: &domain.NominatimPlace{
			PlaceID:     1,
			DisplayName: "Berlin, Germany",
			Lat:         "52.52",
			Lon:         "13.405",
			Type:        "city",
		},
	}
}

func TestGeocode_FullPipeline(t *testing.T) {
	f := newGatewayFixture(t)
	f.allowQuota()

	params := map[string]string{"provider": "osm", "address": "Berlin"}
	f.cache.On("Get", mock.Anything, "geocode", params).Return(nil, nil)
	f.cache.On("Set", mock.Anything, "geocode", params, mock.Anything).Return(nil)
	f.osm.On("Geocode", mock.Anything, "Berlin").Return(osmIntermediate(), nil)

	resp, err := f.uc.Geocode(context.Background(), f.client, f.client.ID.String(), dto.GeocodeRequest{Address: "Berlin"})
	require.NoError(t, err)

	assert.Equal(t, "osm", resp.Provider)
	assert.False(t, resp.Cached)
	assert.Equal(t, "Berlin, Germany", resp.Result.Address)
	assert.Equal(t, 52.52, resp.Result.Location.Lat)

	f.clientRepo.AssertCalled(t, "IncrementUsage", mock.Anything, f.client.ID)
	f.cache.AssertCalled(t, "Set", mock.Anything, "geocode", params, mock.Anything)
	f.streamRepo.AssertCalled(t, "PublishToStream", mock.Anything, domain.StreamUsageEvents, mock.Anything)
}

func TestGeocode_CacheHitCostsNothing(t *testing.T) {
	f := newGatewayFixture(t)

	cached, _ := json.Marshal(&domain.GeocodeResult{
		Address:  "Berlin, Germany",
		Location: domain.Location{Lat: 52.52, Lng: 13.405},
		Source:   domain.ProviderOSM,
	})
	f.cache.On("Get", mock.Anything, "geocode", mock.Anything).Return(cached, nil)

	resp, err := f.uc.Geocode(context.Background(), f.client, f.client.ID.String(), dto.GeocodeRequest{Address: "Berlin"})
	require.NoError(t, err)

	assert.True(t, resp.Cached)
	assert.Equal(t, "Berlin, Germany", resp.Result.Address)

	// Попадание в кеш не трогает ни квоту, ни адаптер, ни журнал
	f.clientRepo.AssertNotCalled(t, "RolloverUsage", mock.Anything, mock.Anything, mock.Anything)
	f.clientRepo.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything)
	f.osm.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	f.streamRepo.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
}

func TestGeocode_QuotaExceeded(t *testing.T) {
	f := newGatewayFixture(t)

	f.cache.On("Get", mock.Anything, "geocode", mock.Anything).Return(nil, nil)
	f.clientRepo.On("RolloverUsage", mock.Anything, f.client.ID, mock.Anything).
		Return(&domain.UsageCounters{Daily: 1000, Monthly: 5000}, nil)

	_, err := f.uc.Geocode(context.Background(), f.client, f.client.ID.String(), dto.GeocodeRequest{Address: "Berlin"})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrQuotaExceeded.Code, appErr.Code)
	assert.Equal(t, "daily", appErr.Details["scope"])

	// Исчерпанная квота не списывается и адаптер не вызывается
	f.clientRepo.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything)
	f.osm.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestGeocode_QuotaChargedDespiteUpstreamFailure(t *testing.T) {
	f := newGatewayFixture(t)
	f.allowQuota()

	f.cache.On("Get", mock.Anything, "geocode", mock.Anything).Return(nil, nil)
	f.osm.On("Geocode", mock.Anything, "Berlin").Return(nil, errors.ErrUpstreamUnavailable)

	_, err := f.uc.Geocode(context.Background(), f.client, f.client.ID.String(), dto.GeocodeRequest{Address: "Berlin"})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrUpstreamUnavailable.Code, appErr.Code)

	// Квота списана до вызова и не возвращается при сбое
	f.clientRepo.AssertCalled(t, "IncrementUsage", mock.Anything, f.client.ID)
	// Событие с признаком неуспеха все равно публикуется
	f.streamRepo.AssertCalled(t, "PublishToStream", mock.Anything, domain.StreamUsageEvents,
		mock.MatchedBy(func(e *domain.UsageEvent) bool { return !e.Success }))
	// Результата нет, кеш не пишется
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGeocode_ProviderForbidden(t *testing.T) {
	f := newGatewayFixture(t)
	f.client.AllowedProviders = pq.StringArray{"osm"}

	_, err := f.uc.Geocode(context.Background(), f.client, f.client.ID.String(),
		dto.GeocodeRequest{Address: "Berlin", Provider: "google"})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrProviderForbidden.Code, appErr.Code)
	f.cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestGeocode_DefaultsToOSM(t *testing.T) {
	f := newGatewayFixture(t)
	f.allowQuota()

	f.cache.On("Get", mock.Anything, "geocode", mock.MatchedBy(func(p map[string]string) bool {
		return p["provider"] == "osm"
	})).Return(nil, nil)
	f.cache.On("Set", mock.Anything, "geocode", mock.Anything, mock.Anything).Return(nil)
	f.osm.On("Geocode", mock.Anything, "Berlin").Return(osmIntermediate(), nil)

	resp, err := f.uc.Geocode(context.Background(), f.client, f.client.ID.String(), dto.GeocodeRequest{Address: "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, "osm", resp.Provider)
	f.google.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestReverseGeocode_InvalidCoordinates(t *testing.T) {
	f := newGatewayFixture(t)

	_, err := f.uc.ReverseGeocode(context.Background(), f.client, f.client.ID.String(),
		dto.ReverseGeocodeRequest{Lat: 95, Lng: 13.4})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrInvalidCoordinates.Code, appErr.Code)
}

func TestGetDirections_UnsupportedModeBeforeCacheAndQuota(t *testing.T) {
	f := newGatewayFixture(t)

	_, err := f.uc.GetDirections(context.Background(), f.client, f.client.ID.String(),
		dto.DirectionsRequest{Origin: "Berlin", Destination: "Hamburg", Mode: "transit"})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrUnsupportedMode.Code, appErr.Code)

	f.cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	f.clientRepo.AssertNotCalled(t, "RolloverUsage", mock.Anything, mock.Anything, mock.Anything)
	f.osm.AssertNotCalled(t, "GetDirections", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetDirections_BicyclingAliasSharesCacheEntry(t *testing.T) {
	f := newGatewayFixture(t)

	cached, _ := json.Marshal(&domain.DirectionsResult{
		Distance: domain.TextValue{Text: "12.5 km", Value: 12500},
		Duration: domain.TextValue{Text: "25 min", Value: 1500},
		Source:   domain.ProviderOSM,
	})

	// Канонический режим OSM - cycling; bicycling попадает в ту же запись
	params := map[string]string{
		"provider":    "osm",
		"origin":      "Berlin",
		"destination": "Hamburg",
		"mode":        "cycling",
	}
	f.cache.On("Get", mock.Anything, "directions", params).Return(cached, nil)

	resp, err := f.uc.GetDirections(context.Background(), f.client, f.client.ID.String(),
		dto.DirectionsRequest{Origin: "Berlin", Destination: "Hamburg", Mode: "bicycling"})
	require.NoError(t, err)
	assert.True(t, resp.Cached)
}

func TestGetDirections_FullPipeline(t *testing.T) {
	f := newGatewayFixture(t)
	f.allowQuota()

	route := &domain.DirectionsIntermediate{
		Provider: domain.ProviderOSM,
		OSM: &domain.OSRMRoute{
			Distance: 280000,
			Duration: 10800,
			Geometry: "poly",
			Legs:     []domain.OSRMLeg{{}},
		},
	}

	f.cache.On("Get", mock.Anything, "directions", mock.Anything).Return(nil, nil)
	f.cache.On("Set", mock.Anything, "directions", mock.Anything, mock.Anything).Return(nil)
	f.osm.On("GetDirections", mock.Anything, "Berlin", "Hamburg", domain.ModeDriving).Return(route, nil)

	resp, err := f.uc.GetDirections(context.Background(), f.client, f.client.ID.String(),
		dto.DirectionsRequest{Origin: "Berlin", Destination: "Hamburg"})
	require.NoError(t, err)

	assert.Equal(t, "280.0 km", resp.Result.Distance.Text)
	assert.Equal(t, "180 min", resp.Result.Duration.Text)
	f.clientRepo.AssertCalled(t, "IncrementUsage", mock.Anything, f.client.ID)
}

func TestGeocode_RateLimited(t *testing.T) {
	f := newGatewayFixture(t)
	f.allowQuota()

	f.cache.On("Get", mock.Anything, "geocode", mock.Anything).Return(nil, nil)
	f.cache.On("Set", mock.Anything, "geocode", mock.Anything, mock.Anything).Return(nil)
	f.osm.On("Geocode", mock.Anything, mock.Anything).Return(osmIntermediate(), nil)

	// Исчерпываем часовой лимит геокодирования
	window, max := f.governor.Limit(ratelimit.CategoryGeocode)
	assert.Equal(t, time.Hour, window)
	for i := 0; i < max; i++ {
		require.NoError(t, f.governor.Allow(f.client.ID.String(), ratelimit.CategoryGeocode))
	}

	_, err := f.uc.Geocode(context.Background(), f.client, f.client.ID.String(), dto.GeocodeRequest{Address: "Berlin"})

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrRateLimited.Code, appErr.Code)

	// Лимит частоты проверяется до квоты
	f.clientRepo.AssertNotCalled(t, "RolloverUsage", mock.Anything, mock.Anything, mock.Anything)
	f.clientRepo.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything)
}

func TestAvailableModes_CachedWithoutQuota(t *testing.T) {
	f := newGatewayFixture(t)

	f.cache.On("Get", mock.Anything, "modes", map[string]string{"provider": "google"}).Return(nil, nil)
	f.cache.On("Set", mock.Anything, "modes", map[string]string{"provider": "google"}, mock.Anything).Return(nil)

	resp, err := f.uc.AvailableModes(context.Background(), f.client, dto.ModesRequest{Provider: "google"})
	require.NoError(t, err)

	assert.Equal(t, "google", resp.Provider)
	assert.Equal(t, []string{"driving", "walking", "bicycling", "transit"}, resp.Modes)

	f.clientRepo.AssertNotCalled(t, "RolloverUsage", mock.Anything, mock.Anything, mock.Anything)
	f.clientRepo.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything)
}

func TestProviders_ListsConfigured(t *testing.T) {
	f := newGatewayFixture(t)

	resp := f.uc.Providers()
	assert.Equal(t, "osm", resp.Default)
	require.Len(t, resp.Providers, 2)
	assert.Equal(t, "google", resp.Providers[0].Name)
	assert.False(t, resp.Providers[0].IsDefault)
	assert.Equal(t, "osm", resp.Providers[1].Name)
	assert.True(t, resp.Providers[1].IsDefault)
}
