package cache

import (
	"context"
	"courier-route-service/internal/adapters/repositories"
	"courier-route-service/internal/platform/db"
	"courier-route-service/internal/ports"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLGeometryCacheRejectsBadInput(t *testing.T) {
	ctx := context.Background()

	var nilDB SQLGeometryCache
	_, _, err := nilDB.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, nilDB.Put(ctx, "k", ports.RouteGeometry{}))
}

// Runs against a real database when TEST_DATABASE_URL is set.
func TestSQLGeometryCacheRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(url)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, repositories.InitSchema(conn))

	ctx := context.Background()
	c := NewSQLGeometryCache(conn)
	key := "test-" + uuid.NewString()

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = c.Get(ctx, "  ")
	assert.Error(t, err)
	assert.Error(t, c.Put(ctx, "", ports.RouteGeometry{}))

	first := ports.RouteGeometry{
		Coordinates:     [][]float64{{-48.53, -25.82}, {-48.54, -25.83}},
		DistanceMeters:  1520.4,
		DurationSeconds: 210.2,
	}
	require.NoError(t, c.Put(ctx, key, first))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, got)

	second := first
	second.DistanceMeters = 1600
	require.NoError(t, c.Put(ctx, key, second))

	got, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1600, got.DistanceMeters, 1e-9)

	_, err = conn.ExecContext(ctx, `DELETE FROM route_geometry_cache WHERE fingerprint = $1`, key)
	require.NoError(t, err)
}
