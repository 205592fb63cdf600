package domain

import (
	"fmt"
	"time"
)

// DeliveryStatus is the closed set of delivery lifecycle states.
type DeliveryStatus uint8

const (
	// StatusUnknown is any wire value outside the known set.
	StatusUnknown DeliveryStatus = iota
	StatusAvailable
	StatusInProgress
	StatusCompleted
)

func (s DeliveryStatus) String() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusInProgress:
		return "InProgress"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Routable reports whether a delivery in this state still needs a visit.
func (s DeliveryStatus) Routable() bool {
	return s == StatusAvailable || s == StatusInProgress
}

// ParseDeliveryStatus maps a wire value onto the enum. Matching is exact.
func ParseDeliveryStatus(s string) (DeliveryStatus, bool) {
	switch s {
	case "Available":
		return StatusAvailable, true
	case "InProgress":
		return StatusInProgress, true
	case "Completed":
		return StatusCompleted, true
	default:
		return StatusUnknown, false
	}
}

func (s DeliveryStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText never fails: unrecognized values decode to StatusUnknown so a
// single bad record cannot reject a whole snapshot.
func (s *DeliveryStatus) UnmarshalText(b []byte) error {
	*s, _ = ParseDeliveryStatus(string(b))
	return nil
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// TimeOfDayOf returns the time-of-day of t in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// MinutesOfDay returns hour*60+minute.
func (t TimeOfDay) MinutesOfDay() int { return t.Hour*60 + t.Minute }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// Delivery is a single order with a destination, a status, a scheduled
// time-of-day and an optional courier assignment.
type Delivery struct {
	ID          string         `json:"id"`
	Destination Coordinates    `json:"destination"`
	AssignedTo  EligibilityKey `json:"assigned_to,omitempty"`
	Status      DeliveryStatus `json:"status"`
	Scheduled   TimeOfDay      `json:"scheduled"`
}
