package domain

// EligibilityKey is the name a courier is matched by when deliveries are
// assigned to it. The zero value means "unassigned".
type EligibilityKey string

// Assigned reports whether the key names a courier.
func (k EligibilityKey) Assigned() bool { return k != "" }

// Courier is a person receiving assigned deliveries whose live position
// drives the start point of its route.
type Courier struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Key         EligibilityKey `json:"eligibility_name"`
	Position    Coordinates    `json:"position"`
}
