package services

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/platform/obs"
	"courier-route-service/internal/ports"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrSuperseded is returned by Recompute when its context was cancelled
// before the new routes could be applied.
var ErrSuperseded = errors.New("recompute superseded")

// RouteOrchestrator owns the set of currently rendered routes.
//
// Every Recompute retracts the previous routes before drawing new ones, and
// applies are serialized so two route sets are never visible at once. No
// other component mutates the rendered set.
type RouteOrchestrator struct {
	renderer ports.RouteRenderer
	distance ports.DistanceFunc
	roster   Permitter
	logger   zerolog.Logger

	mu       sync.Mutex
	rendered []domain.Route
	lastRun  time.Time
}

func NewRouteOrchestrator(
	renderer ports.RouteRenderer,
	distance ports.DistanceFunc,
	roster Permitter,
	logger zerolog.Logger,
) *RouteOrchestrator {
	return &RouteOrchestrator{
		renderer: renderer,
		distance: distance,
		roster:   roster,
		logger:   logger,
	}
}

// Recompute plans every permitted courier's route from the given snapshot
// and replaces the rendered set with the result.
//
// Planning happens before the apply lock is taken; if ctx is cancelled by
// then, nothing is rendered and ErrSuperseded is returned. A renderer
// failure on one courier is logged and does not stop the others.
func (o *RouteOrchestrator) Recompute(
	ctx context.Context,
	couriers []domain.Courier,
	deliveries []domain.Delivery,
	now time.Time,
) (err error) {
	defer obs.Time(ctx, "orchestrator.Recompute")(&err)

	logger := o.logger.With().Str("req_id", obs.RequestID(ctx)).Logger()
	ctx = logger.WithContext(ctx)

	routes := PlanRoutes(ctx, PlanRoutesRequest{
		Couriers:   couriers,
		Deliveries: deliveries,
		Now:        domain.TimeOfDayOf(now),
	}, o.roster, o.distance)

	o.mu.Lock()
	defer o.mu.Unlock()

	if ctx.Err() != nil {
		return fmt.Errorf("recompute: %w", ErrSuperseded)
	}

	if err := o.clearLocked(ctx); err != nil {
		return fmt.Errorf("recompute: %w", err)
	}

	drawn := make([]domain.Route, 0, len(routes))
	for _, r := range routes {
		if r.Empty() {
			continue
		}
		// A newer recompute is waiting on the lock and will clear whatever was drawn.
		if ctx.Err() != nil {
			o.rendered = drawn
			return fmt.Errorf("recompute: %w", ErrSuperseded)
		}

		req := ports.DrawRouteRequest{
			CourierID: r.CourierID,
			StyleKey:  r.StyleKey,
			Positions: r.Positions,
		}
		if err := o.renderer.DrawRoute(ctx, req); err != nil {
			logger.Error().Err(err).Str("courier_id", r.CourierID).Msg("renderer rejected route")
			continue
		}
		drawn = append(drawn, r)
	}

	o.rendered = drawn
	o.lastRun = now

	logger.Info().
		Int("couriers", len(couriers)).
		Int("deliveries", len(deliveries)).
		Int("routes", len(drawn)).
		Msg("routes recomputed")

	return nil
}

// Clear retracts every rendered route.
func (o *RouteOrchestrator) Clear(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.clearLocked(ctx); err != nil {
		return fmt.Errorf("clear routes: %w", err)
	}
	return nil
}

// clearLocked forgets the rendered set even when the renderer fails, so the
// next apply starts from a clear request again.
func (o *RouteOrchestrator) clearLocked(ctx context.Context) error {
	o.rendered = nil
	if err := o.renderer.ClearRoutes(ctx); err != nil {
		return fmt.Errorf("renderer clear: %w", err)
	}
	return nil
}

// Routes returns a copy of the currently rendered routes.
func (o *RouteOrchestrator) Routes() []domain.Route {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]domain.Route, len(o.rendered))
	copy(out, o.rendered)
	return out
}

// LastRun returns the time passed to the last fully applied Recompute.
func (o *RouteOrchestrator) LastRun() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastRun
}
