package dto

import (
	"courier-route-service/internal/domain"
	"time"
)

type RouteResponse struct {
	CourierID           string               `json:"courier_id"`
	StyleKey            string               `json:"style_key"`
	Positions           []domain.Coordinates `json:"positions"`
	DeliveryIDs         []string             `json:"delivery_ids"`
	Skipped             []string             `json:"skipped,omitempty"`
	Stops               int                  `json:"stops"`
	TotalDistanceMeters int                  `json:"total_distance_meters"`
}

type ListRoutesResponse struct {
	LastRun *time.Time      `json:"last_run"`
	Routes  []RouteResponse `json:"routes"`
}

type PreviewRequest struct {
	Couriers   []domain.Courier  `json:"couriers"`
	Deliveries []domain.Delivery `json:"deliveries"`
	Now        *domain.TimeOfDay `json:"now"`
}

type PreviewResponse struct {
	Now    string          `json:"now"`
	Routes []RouteResponse `json:"routes"`
}

// FromRoute flattens a planned route; total distance is rounded to whole meters.
func FromRoute(r domain.Route) RouteResponse {
	positions := r.Positions
	if positions == nil {
		positions = []domain.Coordinates{}
	}
	ids := r.DeliveryIDs
	if ids == nil {
		ids = []string{}
	}

	return RouteResponse{
		CourierID:           r.CourierID,
		StyleKey:            r.StyleKey,
		Positions:           positions,
		DeliveryIDs:         ids,
		Skipped:             r.Skipped,
		Stops:               r.Stops(),
		TotalDistanceMeters: int(r.TotalDistanceMeters + 0.5),
	}
}
