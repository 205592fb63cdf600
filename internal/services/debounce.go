package services

import (
	"context"
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single delayed task.
//
// Each Schedule stops the pending timer and cancels the context of the
// previous task, including one that is already running, so a superseded
// task can observe ctx.Err() and drop its output.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule runs fn after the delay unless another Schedule or Stop comes first.
func (d *Debouncer) Schedule(parent context.Context, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.cancelLocked()

	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel

	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		defer cancel()

		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	})
}

// Stop cancels any pending or running task and waits for it to return.
// Later Schedule calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.cancelLocked()
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		if d.timer.Stop() {
			d.wg.Done()
		}
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
