package ports

import (
	"context"
	"courier-route-service/internal/domain"
)

// A single "draw route" request for one courier.
// Geometry and RoadDistanceMeters are optional enrichment attached by a
// directions-aware renderer; plain sinks leave them empty.
type DrawRouteRequest struct {
	CourierID          string               `json:"courier_id"`
	StyleKey           string               `json:"style_key"`
	Positions          []domain.Coordinates `json:"positions"`
	Geometry           [][]float64          `json:"geometry,omitempty"`
	RoadDistanceMeters float64              `json:"road_distance_meters,omitempty"`
}

// Contract for the collaborator that renders routes on the dashboard map.
type RouteRenderer interface {
	// Retract every previously drawn route.
	ClearRoutes(ctx context.Context) error
	// Draw one courier route.
	DrawRoute(ctx context.Context, req DrawRouteRequest) error
}
