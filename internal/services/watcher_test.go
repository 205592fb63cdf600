package services

import (
	"courier-route-service/internal/adapters/distance"
	"courier-route-service/internal/mocks"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestRouteWatcherLifecycle(t *testing.T) {
	couriers, deliveries := snapshot()

	source := new(mocks.MockSnapshotSource)
	source.On("ListCouriers", mock.Anything).Return(couriers, nil)
	source.On("ListDeliveries", mock.Anything).Return(deliveries, nil)

	renderer := new(mocks.MockRouteRenderer)
	renderer.On("ClearRoutes", mock.Anything).Return(nil)
	renderer.On("DrawRoute", mock.Anything, mock.Anything).Return(nil)

	o := NewRouteOrchestrator(renderer, distance.Haversine, nil, zerolog.Nop())
	w := NewRouteWatcher(source, fixedClock{eightAM}, o, 10*time.Millisecond, 0, zerolog.Nop())

	w.Notify() // ignored before Start
	require.NoError(t, w.Start())
	assert.EqualError(t, w.Start(), "route watcher is already running")

	assert.Eventually(t, func() bool { return len(o.Routes()) == 2 }, time.Second, 5*time.Millisecond)

	for i := 0; i < 10; i++ {
		w.Notify()
	}
	assert.Eventually(t, func() bool {
		return len(renderer.Sequence()) == 6
	}, time.Second, 5*time.Millisecond, "burst must collapse to one recompute")

	require.NoError(t, w.Stop())
	assert.EqualError(t, w.Stop(), "route watcher is not running")

	seq := renderer.Sequence()
	assert.Equal(t, "clear", seq[len(seq)-1])
	assert.Empty(t, o.Routes())
}

func TestRouteWatcherKeepsRoutesWhenSourceFails(t *testing.T) {
	couriers, deliveries := snapshot()

	source := new(mocks.MockSnapshotSource)
	source.On("ListCouriers", mock.Anything).Return(couriers, nil).Once()
	source.On("ListDeliveries", mock.Anything).Return(deliveries, nil).Once()
	source.On("ListCouriers", mock.Anything).Return(nil, errors.New("db down"))

	renderer := new(mocks.MockRouteRenderer)
	renderer.On("ClearRoutes", mock.Anything).Return(nil)
	renderer.On("DrawRoute", mock.Anything, mock.Anything).Return(nil)

	o := NewRouteOrchestrator(renderer, distance.Haversine, nil, zerolog.Nop())
	w := NewRouteWatcher(source, fixedClock{eightAM}, o, time.Millisecond, 0, zerolog.Nop())

	require.NoError(t, w.Start())
	defer w.Stop()
	assert.Eventually(t, func() bool { return len(o.Routes()) == 2 }, time.Second, 5*time.Millisecond)

	w.Notify()
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, o.Routes(), 2)
}

func TestRouteWatcherReevaluatesOnInterval(t *testing.T) {
	source := new(mocks.MockSnapshotSource)
	source.On("ListCouriers", mock.Anything).Return(nil, nil)
	source.On("ListDeliveries", mock.Anything).Return(nil, nil)

	renderer := new(mocks.MockRouteRenderer)
	renderer.On("ClearRoutes", mock.Anything).Return(nil)

	o := NewRouteOrchestrator(renderer, distance.Haversine, nil, zerolog.Nop())
	w := NewRouteWatcher(source, fixedClock{eightAM}, o, time.Millisecond, 10*time.Millisecond, zerolog.Nop())

	require.NoError(t, w.Start())
	assert.Eventually(t, func() bool {
		return len(renderer.Sequence()) >= 3
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, w.Stop())
}

func TestRouteWatcherRestartsAfterStop(t *testing.T) {
	couriers, deliveries := snapshot()

	source := new(mocks.MockSnapshotSource)
	source.On("ListCouriers", mock.Anything).Return(couriers, nil)
	source.On("ListDeliveries", mock.Anything).Return(deliveries, nil)

	renderer := new(mocks.MockRouteRenderer)
	renderer.On("ClearRoutes", mock.Anything).Return(nil)
	renderer.On("DrawRoute", mock.Anything, mock.Anything).Return(nil)

	o := NewRouteOrchestrator(renderer, distance.Haversine, nil, zerolog.Nop())
	w := NewRouteWatcher(source, fixedClock{eightAM}, o, time.Millisecond, 0, zerolog.Nop())

	require.NoError(t, w.Start())
	assert.Eventually(t, func() bool { return len(o.Routes()) == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, w.Stop())
	require.Empty(t, o.Routes())

	require.NoError(t, w.Start())
	defer w.Stop()
	assert.Eventually(t, func() bool { return len(o.Routes()) == 2 }, time.Second, 5*time.Millisecond,
		"initial recompute after restart")

	runs := len(renderer.Sequence())
	w.Notify()
	assert.Eventually(t, func() bool { return len(renderer.Sequence()) == runs+3 }, time.Second, 5*time.Millisecond,
		"notify after restart")
}
