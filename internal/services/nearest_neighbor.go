package services

import (
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"math"
)

// BuildRoute orders deliveries into a path using a greedy nearest-neighbor
// heuristic starting at start.
//
// Each step picks the unvisited delivery closest to the current point.
// Exact ties go to the delivery that appears first in deliveries, so the
// result is fully determined by the input order. The heuristic does not
// attempt global optimization; n is expected to be small (O(n²)).
//
// Deliveries with invalid coordinates are ignored. A pair whose distance
// cannot be computed counts as infinitely far; deliveries that are
// infinitely far from every reachable point end up in Route.Skipped.
func BuildRoute(start domain.Coordinates, deliveries []domain.Delivery, distance ports.DistanceFunc) domain.Route {
	candidates := make([]domain.Delivery, 0, len(deliveries))
	seen := make(map[string]struct{}, len(deliveries))
	for _, d := range deliveries {
		if !d.Destination.Valid() {
			continue
		}
		// A repeated identifier would be visited twice; the first record wins.
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		candidates = append(candidates, d)
	}

	route := domain.Route{
		Positions:   []domain.Coordinates{start},
		DeliveryIDs: []string{},
	}
	if len(candidates) == 0 {
		return route
	}

	visited := make([]bool, len(candidates))
	remaining := len(candidates)
	current := start

	for remaining > 0 {
		best := -1
		bestDistance := math.Inf(1)

		// Strict comparison keeps the earliest candidate on ties.
		for i, c := range candidates {
			if visited[i] {
				continue
			}
			if d := safeDistance(distance, current, c.Destination); d < bestDistance {
				best = i
				bestDistance = d
			}
		}

		if best < 0 {
			break
		}

		next := candidates[best]
		visited[best] = true
		remaining--

		route.Positions = append(route.Positions, next.Destination)
		route.DeliveryIDs = append(route.DeliveryIDs, next.ID)
		route.TotalDistanceMeters += bestDistance
		current = next.Destination
	}

	for i, c := range candidates {
		if !visited[i] {
			route.Skipped = append(route.Skipped, c.ID)
		}
	}

	return route
}

// safeDistance evaluates distance and maps every failure mode (error, panic,
// NaN, negative) to +Inf.
func safeDistance(distance ports.DistanceFunc, a, b domain.Coordinates) (d float64) {
	defer func() {
		if recover() != nil {
			d = math.Inf(1)
		}
	}()

	d, err := distance(a, b)
	if err != nil || math.IsNaN(d) || d < 0 {
		return math.Inf(1)
	}
	return d
}
