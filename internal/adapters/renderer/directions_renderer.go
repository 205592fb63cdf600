package renderer

import (
	"context"
	"courier-route-service/internal/ports"

	"github.com/rs/zerolog"
)

// DirectionsRenderer decorates a renderer by resolving each route's
// waypoints into road geometry before forwarding it. A failed lookup is
// logged and the route is forwarded with straight-line waypoints only.
type DirectionsRenderer struct {
	next       ports.RouteRenderer
	directions ports.DirectionsProvider
	logger     zerolog.Logger
}

func NewDirectionsRenderer(next ports.RouteRenderer, directions ports.DirectionsProvider, logger zerolog.Logger) *DirectionsRenderer {
	return &DirectionsRenderer{next: next, directions: directions, logger: logger}
}

func (d *DirectionsRenderer) ClearRoutes(ctx context.Context) error {
	return d.next.ClearRoutes(ctx)
}

func (d *DirectionsRenderer) DrawRoute(ctx context.Context, req ports.DrawRouteRequest) error {
	if len(req.Positions) >= 2 {
		geom, err := d.directions.Directions(ctx, req.Positions)
		if err != nil {
			d.logger.Warn().Err(err).Str("courier_id", req.CourierID).Msg("directions lookup failed, drawing waypoints only")
		} else {
			req.Geometry = geom.Coordinates
			req.RoadDistanceMeters = geom.DistanceMeters
		}
	}

	return d.next.DrawRoute(ctx, req)
}
