package osm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/maps-gateway/internal/config"
	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/pkg/errors"
)

func newTestClient(nominatimURL, osrmURL string, minInterval time.Duration) *client {
	return NewClient(&config.OSMConfig{
		NominatimURL:   nominatimURL,
		OSRMURL:        osrmURL,
		UserAgent:      "maps-gateway-test/1.0",
		RequestTimeout: 5,
		MinInterval:    minInterval,
	}, zap.NewNop()).(*client)
}

const searchResponse = `[{
	"place_id": 98765,
	"display_name": "Brandenburger Tor, Berlin, Germany",
	"lat": "52.5162746",
	"lon": "13.3777041",
	"type": "attraction",
	"class": "tourism"
}]`

func TestGeocode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Brandenburger Tor", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		// Политика Nominatim требует идентифицирующий User-Agent
		assert.Equal(t, "maps-gateway-test/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.URL, 0)
	result, err := c.Geocode(context.Background(), "Brandenburger Tor")
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderOSM, result.Provider)
	require.NotNil(t, result.OSM)
	assert.Equal(t, "52.5162746", result.OSM.Lat)
	assert.Equal(t, int64(98765), result.OSM.PlaceID)
}

func TestGeocode_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.URL, 0)
	_, err := c.Geocode(context.Background(), "nowhere")

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "UPSTREAM_ERROR", appErr.Code)
}

func TestReverseGeocode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "52.5162746", r.URL.Query().Get("lat"))
		assert.Equal(t, "13.3777041", r.URL.Query().Get("lon"))
		w.Write([]byte(`{
			"place_id": 98765,
			"display_name": "Brandenburger Tor, Berlin, Germany",
			"lat": "52.5162746",
			"lon": "13.3777041",
			"type": "attraction"
		}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.URL, 0)
	result, err := c.ReverseGeocode(context.Background(), 52.5162746, 13.3777041)
	require.NoError(t, err)
	assert.Equal(t, "Brandenburger Tor, Berlin, Germany", result.OSM.DisplayName)
}

func TestGetDirections_UnsupportedTransitBeforeAnyRequest(t *testing.T) {
	var calls int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.URL, 0)
	_, err := c.GetDirections(context.Background(), "A", "B", domain.ModeTransit)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrUnsupportedMode.Code, appErr.Code)

	mu.Lock()
	assert.Equal(t, 0, calls)
	mu.Unlock()
}

func TestGetDirections_GeocodesThenRoutes(t *testing.T) {
	var mu sync.Mutex
	var geocodeCalls, routeCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search":
			mu.Lock()
			geocodeCalls++
			mu.Unlock()
			w.Write([]byte(searchResponse))
		case strings.HasPrefix(r.URL.Path, "/route/v1/driving/"):
			mu.Lock()
			routeCalls++
			mu.Unlock()
			assert.Equal(t, "full", r.URL.Query().Get("overview"))
			w.Write([]byte(`{
				"code": "Ok",
				"routes": [{
					"distance": 3500,
					"duration": 600,
					"geometry": "poly",
					"legs": [{"steps": []}]
				}]
			}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.URL, 0)
	result, err := c.GetDirections(context.Background(), "A", "B", domain.ModeDriving)
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, 2, geocodeCalls)
	assert.Equal(t, 1, routeCalls)
	mu.Unlock()

	require.NotNil(t, result.OSM)
	assert.Equal(t, float64(3500), result.OSM.Distance)
	assert.Nil(t, result.Mapbox)
}

func TestWaitInterval_PacesConsecutiveRequests(t *testing.T) {
	var mu sync.Mutex
	var timestamps []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		timestamps = append(timestamps, time.Now())
		mu.Unlock()
		w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.URL, 100*time.Millisecond)

	_, err := c.Geocode(context.Background(), "first")
	require.NoError(t, err)
	_, err = c.Geocode(context.Background(), "second")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, timestamps, 2)
	assert.GreaterOrEqual(t, timestamps[1].Sub(timestamps[0]), 90*time.Millisecond)
}

func TestWaitInterval_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.URL, time.Hour)

	// Первый запрос проходит сразу
	_, err := c.Geocode(context.Background(), "first")
	require.NoError(t, err)

	// Второй ждал бы час; отмена контекста прерывает ожидание
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Geocode(ctx, "second")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
