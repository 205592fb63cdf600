package directions

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu sync.Mutex
	m  map[string]ports.RouteGeometry
}

func newMemoryCache() *memoryCache {
	return &memoryCache{m: map[string]ports.RouteGeometry{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) (ports.RouteGeometry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.m[key]
	return g, ok, nil
}

func (c *memoryCache) Put(ctx context.Context, key string, geom ports.RouteGeometry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = geom
	return nil
}

const geojsonBody = `{
  "type": "FeatureCollection",
  "features": [{
    "type": "Feature",
    "geometry": {"type": "LineString", "coordinates": [[-48.53,-25.82],[-48.531,-25.821],[-48.54,-25.83]]},
    "properties": {"summary": {"distance": 1520.4, "duration": 210.2}}
  }]
}`

var waypoints = []domain.Coordinates{
	{Lat: -25.82, Lon: -48.53},
	{Lat: -25.83, Lon: -48.54},
}

func TestDirectionsFetchAndCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v2/directions/driving-car/geojson", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))

		var body directionsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, [][]float64{{-48.53, -25.82}, {-48.54, -25.83}}, body.Coordinates)

		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(geojsonBody))
	}))
	defer srv.Close()

	cache := newMemoryCache()
	p, err := NewORSDirections("test-key", cache, WithBaseURL(srv.URL))
	require.NoError(t, err)

	geom, err := p.Directions(context.Background(), waypoints)
	require.NoError(t, err)
	assert.Len(t, geom.Coordinates, 3)
	assert.InDelta(t, 1520.4, geom.DistanceMeters, 1e-9)
	assert.InDelta(t, 210.2, geom.DurationSeconds, 1e-9)

	again, err := p.Directions(context.Background(), waypoints)
	require.NoError(t, err)
	assert.Equal(t, geom, again)
	assert.Equal(t, int32(1), calls.Load(), "second lookup must be served from cache")
}

func TestDirectionsRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(geojsonBody))
	}))
	defer srv.Close()

	p, err := NewORSDirections("k", nil, WithBaseURL(srv.URL), WithRetry(4, time.Millisecond))
	require.NoError(t, err)

	_, err = p.Directions(context.Background(), waypoints)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDirectionsDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad coordinates", http.StatusBadRequest)
	}))
	defer srv.Close()

	p, err := NewORSDirections("k", nil, WithBaseURL(srv.URL), WithRetry(4, time.Millisecond))
	require.NoError(t, err)

	_, err = p.Directions(context.Background(), waypoints)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Code 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDirectionsValidatesWaypoints(t *testing.T) {
	p, err := NewORSDirections("k", nil)
	require.NoError(t, err)

	_, err = p.Directions(context.Background(), waypoints[:1])
	assert.Error(t, err)

	_, err = p.Directions(context.Background(), []domain.Coordinates{{Lat: 200}, {}})
	assert.Error(t, err)

	_, err = NewORSDirections("", nil)
	assert.Error(t, err)
}

func TestFingerprintStable(t *testing.T) {
	p, err := NewORSDirections("k", nil)
	require.NoError(t, err)

	a := p.fingerprint(waypoints)
	b := p.fingerprint([]domain.Coordinates{waypoints[0], waypoints[1]})
	c := p.fingerprint([]domain.Coordinates{waypoints[1], waypoints[0]})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
