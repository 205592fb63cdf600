package repositories

import (
	"courier-route-service/internal/domain"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Channel used by the change-notification triggers.
const SnapshotChannel = "snapshot_changed"

// Initialize the Postgres database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCouriersQuery := `
	CREATE TABLE IF NOT EXISTS couriers (
		courier_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		eligibility_name TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		seq BIGSERIAL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createDeliveriesQuery := `
	CREATE TABLE IF NOT EXISTS deliveries (
		delivery_id TEXT PRIMARY KEY,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		assigned_to TEXT,
		status TEXT NOT NULL,
		scheduled_hour SMALLINT NOT NULL,
		scheduled_minute SMALLINT NOT NULL,
		seq BIGSERIAL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createGeometryCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_geometry_cache (
		fingerprint TEXT PRIMARY KEY,
		coordinates JSONB NOT NULL,
		distance_meters DOUBLE PRECISION NOT NULL,
		duration_seconds DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_deliveries_assigned_to
	ON deliveries(assigned_to, seq);
	`

	createNotifyFunctionQuery := `
	CREATE OR REPLACE FUNCTION notify_snapshot_changed() RETURNS trigger AS $$
	BEGIN
		PERFORM pg_notify('` + SnapshotChannel + `', TG_TABLE_NAME);
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql;
	`

	statements := []string{
		createCouriersQuery,
		createDeliveriesQuery,
		createGeometryCacheQuery,
		createIndexQuery,
		createNotifyFunctionQuery,
	}
	for _, table := range []string{"couriers", "deliveries"} {
		statements = append(statements,
			fmt.Sprintf(`DROP TRIGGER IF EXISTS %[1]s_changed ON %[1]s;`, table),
			fmt.Sprintf(`
	CREATE TRIGGER %[1]s_changed
	AFTER INSERT OR UPDATE OR DELETE ON %[1]s
	FOR EACH STATEMENT EXECUTE FUNCTION notify_snapshot_changed();
	`, table),
		)
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type SnapshotSeed struct {
	Couriers   []domain.Courier  `json:"couriers"`
	Deliveries []domain.Delivery `json:"deliveries"`
}

// ReadSeed parses and validates a seed file.
func ReadSeed(jsonPath string) (*SnapshotSeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read seed: read %q: %w", jsonPath, err)
	}

	var data SnapshotSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("read seed: parse json: %w", err)
	}

	for i, c := range data.Couriers {
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("read seed: courier at index %d: id cannot be empty", i+1)
		}
	}
	for i, d := range data.Deliveries {
		if strings.TrimSpace(d.ID) == "" {
			return nil, fmt.Errorf("read seed: delivery at index %d: id cannot be empty", i+1)
		}
		if d.Status == domain.StatusUnknown {
			return nil, fmt.Errorf("read seed: delivery %q: unknown status", d.ID)
		}
		if !d.Scheduled.Valid() {
			return nil, fmt.Errorf("read seed: delivery %q: invalid schedule %s", d.ID, d.Scheduled)
		}
	}

	return &data, nil
}

// Populate the database with courier and delivery data from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	data, err := ReadSeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed snapshot: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed snapshot: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	courierStmt, err := tx.Prepare(`
	INSERT INTO couriers (courier_id, display_name, eligibility_name, lat, lon)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (courier_id) DO UPDATE
	SET display_name = EXCLUDED.display_name,
		eligibility_name = EXCLUDED.eligibility_name,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		updated_at = now();
	`)
	if err != nil {
		return fmt.Errorf("seed snapshot: prepare courier insert: %w", err)
	}
	defer courierStmt.Close()

	for _, c := range data.Couriers {
		if _, err := courierStmt.Exec(c.ID, c.DisplayName, string(c.Key), c.Position.Lat, c.Position.Lon); err != nil {
			return fmt.Errorf("seed snapshot: insert courier_id=%s: %w", c.ID, err)
		}
	}

	deliveryStmt, err := tx.Prepare(`
	INSERT INTO deliveries (delivery_id, lat, lon, assigned_to, status, scheduled_hour, scheduled_minute)
	VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
	ON CONFLICT (delivery_id) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		assigned_to = EXCLUDED.assigned_to,
		status = EXCLUDED.status,
		scheduled_hour = EXCLUDED.scheduled_hour,
		scheduled_minute = EXCLUDED.scheduled_minute,
		updated_at = now();
	`)
	if err != nil {
		return fmt.Errorf("seed snapshot: prepare delivery insert: %w", err)
	}
	defer deliveryStmt.Close()

	for _, d := range data.Deliveries {
		if _, err := deliveryStmt.Exec(
			d.ID, d.Destination.Lat, d.Destination.Lon, string(d.AssignedTo),
			d.Status.String(), d.Scheduled.Hour, d.Scheduled.Minute,
		); err != nil {
			return fmt.Errorf("seed snapshot: insert delivery_id=%s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed snapshot: commit tx: %w", err)
	}

	return nil
}
