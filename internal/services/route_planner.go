package services

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"

	"github.com/rs/zerolog"
)

// Permitter decides which couriers may receive a route.
type Permitter interface {
	Permits(courierID string) bool
}

type PlanRoutesRequest struct {
	Couriers   []domain.Courier
	Deliveries []domain.Delivery
	Now        domain.TimeOfDay
}

// PlanCourierRoute runs the eligibility filter and the nearest-neighbor
// builder for a single courier.
func PlanCourierRoute(
	courier domain.Courier,
	deliveries []domain.Delivery,
	now domain.TimeOfDay,
	distance ports.DistanceFunc,
) domain.Route {
	eligible := FilterEligible(deliveries, courier.Key, now)

	route := BuildRoute(courier.Position, eligible, distance)
	route.CourierID = courier.ID
	route.StyleKey = StyleKeyFor(courier.ID)
	return route
}

// PlanRoutes computes one route per permitted courier, in roster order.
//
// Couriers outside the roster, couriers with invalid coordinates and repeated
// courier IDs are skipped. Empty routes are returned so callers can report
// them; renderers only receive non-empty ones.
func PlanRoutes(
	ctx context.Context,
	req PlanRoutesRequest,
	roster Permitter,
	distance ports.DistanceFunc,
) []domain.Route {
	logger := zerolog.Ctx(ctx)

	routes := make([]domain.Route, 0, len(req.Couriers))
	planned := make(map[string]struct{}, len(req.Couriers))

	for _, c := range req.Couriers {
		if roster != nil && !roster.Permits(c.ID) {
			continue
		}
		if _, dup := planned[c.ID]; dup {
			logger.Warn().Str("courier_id", c.ID).Msg("duplicate courier in roster snapshot, keeping first")
			continue
		}
		if !c.Position.Valid() {
			logger.Debug().Str("courier_id", c.ID).Msg("courier has no valid position, skipping")
			continue
		}
		planned[c.ID] = struct{}{}

		route := PlanCourierRoute(c, req.Deliveries, req.Now, distance)
		if len(route.Skipped) > 0 {
			logger.Warn().
				Str("courier_id", c.ID).
				Strs("delivery_ids", route.Skipped).
				Msg("deliveries unreachable from route, left out")
		}
		routes = append(routes, route)
	}

	return routes
}
