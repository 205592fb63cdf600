package mocks

import (
	"context"
	"courier-route-service/internal/ports"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockRouteRenderer is a mock implementation of ports.RouteRenderer that
// also records the sequence of calls it received.
type MockRouteRenderer struct {
	mock.Mock

	mu    sync.Mutex
	calls []string
}

func (m *MockRouteRenderer) ClearRoutes(ctx context.Context) error {
	m.record("clear")
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRouteRenderer) DrawRoute(ctx context.Context, req ports.DrawRouteRequest) error {
	m.record("draw:" + req.CourierID)
	args := m.Called(ctx, req)
	return args.Error(0)
}

// Sequence returns the recorded calls, e.g. ["clear", "draw:leo"].
func (m *MockRouteRenderer) Sequence() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockRouteRenderer) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}
