package mocks

import (
	"context"
	"courier-route-service/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockSnapshotSource is a mock implementation of ports.SnapshotSource.
type MockSnapshotSource struct {
	mock.Mock
}

func (m *MockSnapshotSource) ListCouriers(ctx context.Context) ([]domain.Courier, error) {
	args := m.Called(ctx)
	couriers, _ := args.Get(0).([]domain.Courier)
	return couriers, args.Error(1)
}

func (m *MockSnapshotSource) ListDeliveries(ctx context.Context) ([]domain.Delivery, error) {
	args := m.Called(ctx)
	deliveries, _ := args.Get(0).([]domain.Delivery)
	return deliveries, args.Error(1)
}
