package ports

import (
	"context"
	"courier-route-service/internal/domain"
)

// Road geometry for an ordered waypoint list, as [lon, lat] pairs.
type RouteGeometry struct {
	Coordinates     [][]float64 `json:"coordinates"`
	DistanceMeters  float64     `json:"distance_meters"`
	DurationSeconds float64     `json:"duration_seconds"`
}

// Contract for a turn-by-turn routing engine that resolves waypoints into
// a drivable path.
type DirectionsProvider interface {
	Directions(ctx context.Context, waypoints []domain.Coordinates) (RouteGeometry, error)
}
