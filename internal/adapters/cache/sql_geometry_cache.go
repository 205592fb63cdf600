package cache

import (
	"context"
	"courier-route-service/internal/platform/obs"
	"courier-route-service/internal/ports"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SQLGeometryCache is a Postgres-backed cache of route geometries keyed by
// waypoint fingerprint.
type SQLGeometryCache struct {
	DB *sql.DB
}

func NewSQLGeometryCache(db *sql.DB) *SQLGeometryCache {
	return &SQLGeometryCache{DB: db}
}

// Fetch a cached geometry. The bool is false on a miss.
func (s *SQLGeometryCache) Get(
	ctx context.Context,
	key string,
) (_ ports.RouteGeometry, _ bool, err error) {
	defer obs.Time(ctx, "geometry.cache.Get")(&err)

	if s.DB == nil {
		return ports.RouteGeometry{}, false, errors.New("geometry cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return ports.RouteGeometry{}, false, errors.New("get geometry cache: key must not be empty")
	}

	q := `
	SELECT coordinates, distance_meters, duration_seconds
	FROM route_geometry_cache
	WHERE fingerprint = $1;
	`

	var (
		raw  []byte
		geom ports.RouteGeometry
	)
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&raw, &geom.DistanceMeters, &geom.DurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RouteGeometry{}, false, nil
	}
	if err != nil {
		return ports.RouteGeometry{}, false, fmt.Errorf("get geometry cache: query route_geometry_cache table: %w", err)
	}

	if err := json.Unmarshal(raw, &geom.Coordinates); err != nil {
		return ports.RouteGeometry{}, false, fmt.Errorf("get geometry cache: decode coordinates: %w", err)
	}

	return geom, true, nil
}

// Store a geometry, replacing any previous entry for the same key.
func (s *SQLGeometryCache) Put(
	ctx context.Context,
	key string,
	geom ports.RouteGeometry,
) (err error) {
	defer obs.Time(ctx, "geometry.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("geometry cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert geometry cache: key must not be empty")
	}

	raw, err := json.Marshal(geom.Coordinates)
	if err != nil {
		return fmt.Errorf("insert geometry cache: encode coordinates: %w", err)
	}

	q := `
	INSERT INTO route_geometry_cache (fingerprint, coordinates, distance_meters, duration_seconds)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (fingerprint) DO UPDATE
	SET coordinates = EXCLUDED.coordinates,
		distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		updated_at = now();
	`
	if _, err := s.DB.ExecContext(ctx, q, key, raw, geom.DistanceMeters, geom.DurationSeconds); err != nil {
		return fmt.Errorf("insert geometry cache fingerprint=%q: %w", key, err)
	}

	return nil
}
