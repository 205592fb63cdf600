package repositories

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/platform/obs"
	"database/sql"
	"errors"
	"fmt"
	"math"
)

// Postgres-backed, read-only implementation of the SnapshotSource port.
// The tables are written by the dispatch backend; this service only reads.
type PostgresSnapshotRepository struct{ DB *sql.DB }

func NewPostgresSnapshotRepository(db *sql.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{DB: db}
}

// Return every courier in insertion order.
func (s *PostgresSnapshotRepository) ListCouriers(ctx context.Context) (_ []domain.Courier, err error) {
	defer obs.Time(ctx, "snapshot.ListCouriers")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres snapshot repository: DB is nil")
	}

	query := `
	SELECT
		courier_id,
		display_name,
		eligibility_name,
		lat,
		lon
	FROM couriers
	ORDER BY seq;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list couriers: query couriers table: %w", err)
	}
	defer rows.Close()

	couriers := make([]domain.Courier, 0, 32)
	for rows.Next() {
		var (
			c        domain.Courier
			key      string
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&c.ID, &c.DisplayName, &key, &lat, &lon); err != nil {
			return nil, fmt.Errorf("list couriers: scan row: %w", err)
		}
		c.Key = domain.EligibilityKey(key)
		c.Position = coordinates(lat, lon)
		couriers = append(couriers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list couriers: row iteration: %w", err)
	}

	return couriers, nil
}

// Return every delivery in insertion order, which is the order used to
// break distance ties.
func (s *PostgresSnapshotRepository) ListDeliveries(ctx context.Context) (_ []domain.Delivery, err error) {
	defer obs.Time(ctx, "snapshot.ListDeliveries")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres snapshot repository: DB is nil")
	}

	query := `
	SELECT
		delivery_id,
		lat,
		lon,
		COALESCE(assigned_to, ''),
		status,
		scheduled_hour,
		scheduled_minute
	FROM deliveries
	ORDER BY seq;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: query deliveries table: %w", err)
	}
	defer rows.Close()

	deliveries := make([]domain.Delivery, 0, 64)
	for rows.Next() {
		var (
			d                domain.Delivery
			lat, lon         sql.NullFloat64
			assigned, status string
		)
		if err := rows.Scan(&d.ID, &lat, &lon, &assigned, &status, &d.Scheduled.Hour, &d.Scheduled.Minute); err != nil {
			return nil, fmt.Errorf("list deliveries: scan row: %w", err)
		}
		d.Destination = coordinates(lat, lon)
		d.AssignedTo = domain.EligibilityKey(assigned)
		d.Status, _ = domain.ParseDeliveryStatus(status)
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deliveries: row iteration: %w", err)
	}

	return deliveries, nil
}

// coordinates maps missing columns to NaN so the record fails validation
// downstream instead of landing on (0, 0).
func coordinates(lat, lon sql.NullFloat64) domain.Coordinates {
	c := domain.Coordinates{Lat: math.NaN(), Lon: math.NaN()}
	if lat.Valid {
		c.Lat = lat.Float64
	}
	if lon.Valid {
		c.Lon = lon.Float64
	}
	return c
}
