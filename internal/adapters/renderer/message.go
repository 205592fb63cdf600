package renderer

import (
	"courier-route-service/internal/ports"
	"encoding/json"
	"time"
)

const (
	MessageClear = "clear"
	MessageDraw  = "draw"
)

// Message is the envelope published to dashboard subscribers.
type Message struct {
	Type   string                  `json:"type"`
	Route  *ports.DrawRouteRequest `json:"route,omitempty"`
	SentAt time.Time               `json:"sent_at"`
}

func encodeClear(now time.Time) ([]byte, error) {
	return json.Marshal(Message{Type: MessageClear, SentAt: now})
}

func encodeDraw(req ports.DrawRouteRequest, now time.Time) ([]byte, error) {
	return json.Marshal(Message{Type: MessageDraw, Route: &req, SentAt: now})
}
