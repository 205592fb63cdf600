package domain

// Represents the computed visiting sequence for a single courier.
// Positions[0] is always the courier position and is never a stop; the
// remaining positions correspond one-to-one to DeliveryIDs.
// A Route is ephemeral planning data and is rebuilt on every recomputation.
type Route struct {
	CourierID           string        `json:"courier_id"`
	StyleKey            string        `json:"style_key"`
	Positions           []Coordinates `json:"positions"`
	DeliveryIDs         []string      `json:"delivery_ids"`
	Skipped             []string      `json:"skipped,omitempty"`
	TotalDistanceMeters float64       `json:"total_distance_meters"`
}

// Empty reports whether the route has no stops.
func (r Route) Empty() bool { return len(r.DeliveryIDs) == 0 }

// Stops returns the number of deliveries visited.
func (r Route) Stops() int { return len(r.DeliveryIDs) }
