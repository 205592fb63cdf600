package ports

import "courier-route-service/internal/domain"

// Distance in meters between two map coordinates.
// Implementations must be a true metric: symmetric, non-negative and zero
// only for identical points. An error marks the pair as unreachable.
type DistanceFunc func(a, b domain.Coordinates) (float64, error)
