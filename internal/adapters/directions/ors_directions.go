package directions

import (
	"bytes"
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/platform/obs"
	"courier-route-service/internal/ports"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// GeometryCache persists resolved geometries by waypoint fingerprint.
type GeometryCache interface {
	Get(ctx context.Context, key string) (ports.RouteGeometry, bool, error)
	Put(ctx context.Context, key string, geom ports.RouteGeometry) error
}

// ORSDirections implements DirectionsProvider using OpenRouteService.
//
// It coordinates:
//   - Waypoint fingerprinting for cache keys
//   - Persistent geometry caching
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSDirections struct {
	session        *http.Client
	apiKey         string
	baseURL        string
	profile        string
	cache          GeometryCache
	maxAttempts    int
	initialBackoff time.Duration
}

type Option func(*ORSDirections)

// WithBaseURL points the client at another ORS deployment.
func WithBaseURL(u string) Option {
	return func(o *ORSDirections) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithProfile selects the ORS routing profile, e.g. "cycling-regular".
func WithProfile(p string) Option {
	return func(o *ORSDirections) { o.profile = p }
}

func WithRetry(maxAttempts int, initialBackoff time.Duration) Option {
	return func(o *ORSDirections) {
		o.maxAttempts = maxAttempts
		o.initialBackoff = initialBackoff
	}
}

func NewORSDirections(apiKey string, cache GeometryCache, opts ...Option) (*ORSDirections, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSDirections{
		session:        &http.Client{Timeout: 10 * time.Second},
		apiKey:         apiKey,
		baseURL:        "https://api.openrouteservice.org",
		profile:        "driving-car",
		cache:          cache,
		maxAttempts:    4,
		initialBackoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(provider)
	}
	if provider.maxAttempts < 1 {
		provider.maxAttempts = 1
	}

	return provider, nil
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// Directions resolves an ordered waypoint list into road geometry.
func (o *ORSDirections) Directions(
	ctx context.Context,
	waypoints []domain.Coordinates,
) (_ ports.RouteGeometry, err error) {
	defer obs.Time(ctx, "ors.Directions")(&err)

	if len(waypoints) < 2 {
		return ports.RouteGeometry{}, errors.New("directions: at least two waypoints are required")
	}
	for i, w := range waypoints {
		if !w.Valid() {
			return ports.RouteGeometry{}, fmt.Errorf("directions: waypoint %d has invalid coordinates", i)
		}
	}

	key := o.fingerprint(waypoints)

	// Check persistent geometry cache before issuing external API calls.
	if o.cache != nil {
		geom, ok, err := o.cache.Get(ctx, key)
		if err != nil {
			return ports.RouteGeometry{}, fmt.Errorf("directions: get geometry cache: %w", err)
		}
		if ok {
			return geom, nil
		}
	}

	geom, err := o.fetch(ctx, waypoints)
	if err != nil {
		return ports.RouteGeometry{}, fmt.Errorf("directions: %w", err)
	}

	if o.cache != nil {
		if err := o.cache.Put(ctx, key, geom); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("geometry cache write failed")
		}
	}

	return geom, nil
}

func (o *ORSDirections) fetch(ctx context.Context, waypoints []domain.Coordinates) (ports.RouteGeometry, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)

	coords := make([][]float64, 0, len(waypoints))
	for _, w := range waypoints {
		coords = append(coords, w.CoordsToList())
	}

	payload, err := json.Marshal(directionsRequest{Coordinates: coords})
	if err != nil {
		return ports.RouteGeometry{}, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.RouteGeometry{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.RouteGeometry{}, fmt.Errorf("decode directions response: %w", err)
	}

	if len(dr.Features) == 0 {
		return ports.RouteGeometry{}, errors.New("directions response has no features")
	}

	f := dr.Features[0]
	if len(f.Geometry.Coordinates) < 2 {
		return ports.RouteGeometry{}, fmt.Errorf("directions geometry has %d points", len(f.Geometry.Coordinates))
	}

	return ports.RouteGeometry{
		Coordinates:     f.Geometry.Coordinates,
		DistanceMeters:  f.Properties.Summary.Distance,
		DurationSeconds: f.Properties.Summary.Duration,
	}, nil
}

// fingerprint builds a stable cache key from the profile and the waypoints
// rounded to ~0.1 m.
func (o *ORSDirections) fingerprint(waypoints []domain.Coordinates) string {
	var b strings.Builder
	b.WriteString(o.profile)
	for _, w := range waypoints {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(w.Lat, 'f', 6, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(w.Lon, 'f', 6, 64))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
