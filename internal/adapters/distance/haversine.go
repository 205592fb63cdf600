package distance

import (
	"courier-route-service/internal/domain"
	"errors"
	"math"
)

// Mean Earth radius used by web map libraries for point distances.
const earthRadiusMeters = 6371008.8

var errInvalidCoordinates = errors.New("distance: invalid coordinates")

// Haversine returns the great-circle distance in meters between a and b.
// It satisfies ports.DistanceFunc.
func Haversine(a, b domain.Coordinates) (float64, error) {
	if !a.Valid() || !b.Valid() {
		return 0, errInvalidCoordinates
	}
	if a == b {
		return 0, nil
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c, nil
}
