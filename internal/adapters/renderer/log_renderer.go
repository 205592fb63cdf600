package renderer

import (
	"context"
	"courier-route-service/internal/ports"

	"github.com/rs/zerolog"
)

// LogRenderer writes render requests to the log. Used when no dashboard
// sink is configured.
type LogRenderer struct {
	logger zerolog.Logger
}

func NewLogRenderer(logger zerolog.Logger) *LogRenderer {
	return &LogRenderer{logger: logger}
}

func (l *LogRenderer) ClearRoutes(ctx context.Context) error {
	l.logger.Info().Msg("clear routes")
	return nil
}

func (l *LogRenderer) DrawRoute(ctx context.Context, req ports.DrawRouteRequest) error {
	l.logger.Info().
		Str("courier_id", req.CourierID).
		Str("style_key", req.StyleKey).
		Int("waypoints", len(req.Positions)).
		Msg("draw route")
	return nil
}
