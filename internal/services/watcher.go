package services

import (
	"context"
	"courier-route-service/internal/platform/obs"
	"courier-route-service/internal/ports"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RouteWatcher turns pushed change notifications into debounced recomputes.
//
// Notify is the entry point for upstream events. The watcher also re-runs
// the recompute on a fixed interval so deliveries whose scheduled time has
// arrived become routable without waiting for an unrelated data change.
type RouteWatcher struct {
	source       ports.SnapshotSource
	clock        ports.Clock
	orchestrator *RouteOrchestrator
	debounce     time.Duration
	reevaluate   time.Duration
	logger       zerolog.Logger

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	debouncer *Debouncer
	wg        sync.WaitGroup
}

func NewRouteWatcher(
	source ports.SnapshotSource,
	clock ports.Clock,
	orchestrator *RouteOrchestrator,
	debounce time.Duration,
	reevaluate time.Duration,
	logger zerolog.Logger,
) *RouteWatcher {
	return &RouteWatcher{
		source:       source,
		clock:        clock,
		orchestrator: orchestrator,
		debounce:     debounce,
		reevaluate:   reevaluate,
		logger:       logger,
	}
}

// Start schedules an initial recompute and launches the re-evaluation loop.
func (w *RouteWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx != nil {
		w.logger.Warn().Msg("RouteWatcher is already running")
		return errors.New("route watcher is already running")
	}

	w.ctx, w.cancel = context.WithCancel(w.logger.WithContext(context.Background()))
	// A stopped debouncer ignores Schedule, so every run gets its own.
	w.debouncer = NewDebouncer(w.debounce)

	if w.reevaluate > 0 {
		w.wg.Add(1)
		go func(ctx context.Context, d *Debouncer) {
			defer w.wg.Done()
			w.runReevaluateLoop(ctx, d)
		}(w.ctx, w.debouncer)
	}

	w.debouncer.Schedule(w.ctx, w.recompute)

	w.logger.Info().Dur("reevaluate", w.reevaluate).Msg("RouteWatcher started")
	return nil
}

// Stop cancels pending work, waits for it, and retracts the rendered routes.
func (w *RouteWatcher) Stop() error {
	w.mu.Lock()
	if w.ctx == nil {
		w.mu.Unlock()
		w.logger.Warn().Msg("RouteWatcher is not running")
		return errors.New("route watcher is not running")
	}
	w.cancel()
	debouncer := w.debouncer
	w.ctx = nil
	w.cancel = nil
	w.debouncer = nil
	w.mu.Unlock()

	debouncer.Stop()
	w.wg.Wait()

	clearCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.orchestrator.Clear(clearCtx); err != nil {
		w.logger.Error().Err(err).Msg("Failed to clear routes on shutdown")
	}

	w.logger.Info().Msg("RouteWatcher stopped")
	return nil
}

// Notify signals that the courier roster or delivery set changed.
// It is safe to call from any goroutine; calls before Start are ignored.
func (w *RouteWatcher) Notify() {
	w.mu.Lock()
	ctx, debouncer := w.ctx, w.debouncer
	w.mu.Unlock()

	if ctx == nil {
		return
	}
	debouncer.Schedule(ctx, w.recompute)
}

func (w *RouteWatcher) runReevaluateLoop(ctx context.Context, debouncer *Debouncer) {
	ticker := time.NewTicker(w.reevaluate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			debouncer.Schedule(ctx, w.recompute)
		case <-ctx.Done():
			return
		}
	}
}

// recompute reads the latest snapshot at fire time, so a burst of
// notifications is served by the inputs present after the burst.
func (w *RouteWatcher) recompute(ctx context.Context) {
	ctx = obs.WithRequestID(ctx)

	couriers, err := w.source.ListCouriers(ctx)
	if err != nil {
		w.logger.Error().Err(err).Str("req_id", obs.RequestID(ctx)).Msg("Failed to load couriers, keeping current routes")
		return
	}
	deliveries, err := w.source.ListDeliveries(ctx)
	if err != nil {
		w.logger.Error().Err(err).Str("req_id", obs.RequestID(ctx)).Msg("Failed to load deliveries, keeping current routes")
		return
	}

	if err := w.orchestrator.Recompute(ctx, couriers, deliveries, w.clock.Now()); err != nil {
		if errors.Is(err, ErrSuperseded) {
			w.logger.Debug().Str("req_id", obs.RequestID(ctx)).Msg("recompute superseded")
			return
		}
		w.logger.Error().Err(err).Str("req_id", obs.RequestID(ctx)).Msg("Failed to recompute routes")
	}
}
