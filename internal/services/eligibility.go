package services

import "courier-route-service/internal/domain"

// FilterEligible returns the deliveries a courier should route to at now.
//
// A delivery qualifies when it is assigned to exactly key, its status is
// Available or InProgress, and its scheduled time-of-day is not later than
// now. Deliveries with an invalid destination or schedule never qualify.
// The filter is stable: survivors keep their input order.
func FilterEligible(deliveries []domain.Delivery, key domain.EligibilityKey, now domain.TimeOfDay) []domain.Delivery {
	if !key.Assigned() {
		return []domain.Delivery{}
	}

	nowMinutes := now.MinutesOfDay()
	out := make([]domain.Delivery, 0, len(deliveries))
	for _, d := range deliveries {
		if !d.AssignedTo.Assigned() || d.AssignedTo != key {
			continue
		}
		if !d.Status.Routable() {
			continue
		}
		if !d.Scheduled.Valid() || d.Scheduled.MinutesOfDay() > nowMinutes {
			continue
		}
		if !d.Destination.Valid() {
			continue
		}
		out = append(out, d)
	}

	return out
}
