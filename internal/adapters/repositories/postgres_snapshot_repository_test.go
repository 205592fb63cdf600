package repositories

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/platform/db"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedJSON = `{
  "couriers": [
    {"id": "leo", "display_name": "Leo", "eligibility_name": "Leo", "position": {"lat": -25.82, "lon": -48.53}}
  ],
  "deliveries": [
    {"id": "d1", "destination": {"lat": -25.821, "lon": -48.531}, "assigned_to": "Leo", "status": "Available", "scheduled": {"hour": 8, "minute": 0}},
    {"id": "d2", "destination": {"lat": -25.83, "lon": -48.54}, "status": "Completed", "scheduled": {"hour": 9, "minute": 15}}
  ]
}`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReadSeed(t *testing.T) {
	seed, err := ReadSeed(writeSeed(t, seedJSON))
	require.NoError(t, err)

	require.Len(t, seed.Couriers, 1)
	require.Len(t, seed.Deliveries, 2)
	assert.Equal(t, domain.EligibilityKey("Leo"), seed.Couriers[0].Key)
	assert.Equal(t, domain.StatusAvailable, seed.Deliveries[0].Status)
	assert.False(t, seed.Deliveries[1].AssignedTo.Assigned())
}

func TestReadSeedRejectsBadRecords(t *testing.T) {
	for name, body := range map[string]string{
		"missing courier id": `{"couriers":[{"display_name":"x"}]}`,
		"unknown status":     `{"deliveries":[{"id":"d1","status":"Lost","scheduled":{"hour":1,"minute":0}}]}`,
		"bad schedule":       `{"deliveries":[{"id":"d1","status":"Available","scheduled":{"hour":24,"minute":0}}]}`,
		"not json":           `[`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSeed(writeSeed(t, body))
			assert.Error(t, err)
		})
	}
}

func TestCoordinatesFromNullColumns(t *testing.T) {
	c := coordinates(sql.NullFloat64{Float64: -25.8, Valid: true}, sql.NullFloat64{})
	assert.Equal(t, -25.8, c.Lat)
	assert.True(t, math.IsNaN(c.Lon))
	assert.False(t, c.Valid())
}

// Runs against a real database when TEST_DATABASE_URL is set.
func TestPostgresSnapshotRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(url)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, InitSchema(conn))
	require.NoError(t, SeedFromJSON(conn, writeSeed(t, seedJSON)))

	repo := NewPostgresSnapshotRepository(conn)

	couriers, err := repo.ListCouriers(context.Background())
	require.NoError(t, err)
	assert.Contains(t, couriers, domain.Courier{
		ID: "leo", DisplayName: "Leo", Key: "Leo",
		Position: domain.Coordinates{Lat: -25.82, Lon: -48.53},
	})

	deliveries, err := repo.ListDeliveries(context.Background())
	require.NoError(t, err)

	byID := map[string]domain.Delivery{}
	for _, d := range deliveries {
		byID[d.ID] = d
	}
	assert.Equal(t, domain.StatusAvailable, byID["d1"].Status)
	assert.Equal(t, domain.EligibilityKey("Leo"), byID["d1"].AssignedTo)
	assert.Equal(t, domain.EligibilityKey(""), byID["d2"].AssignedTo)
}
