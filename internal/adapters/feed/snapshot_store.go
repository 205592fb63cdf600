package feed

import (
	"context"
	"courier-route-service/internal/domain"
	"sync"
)

// SnapshotStore holds the latest pushed courier roster and delivery set.
// Each push replaces the previous list wholesale. It implements
// ports.SnapshotSource.
type SnapshotStore struct {
	mu         sync.RWMutex
	couriers   []domain.Courier
	deliveries []domain.Delivery
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

func (s *SnapshotStore) ReplaceCouriers(couriers []domain.Courier) {
	cp := make([]domain.Courier, len(couriers))
	copy(cp, couriers)

	s.mu.Lock()
	s.couriers = cp
	s.mu.Unlock()
}

func (s *SnapshotStore) ReplaceDeliveries(deliveries []domain.Delivery) {
	cp := make([]domain.Delivery, len(deliveries))
	copy(cp, deliveries)

	s.mu.Lock()
	s.deliveries = cp
	s.mu.Unlock()
}

func (s *SnapshotStore) ListCouriers(ctx context.Context) ([]domain.Courier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Courier, len(s.couriers))
	copy(out, s.couriers)
	return out, nil
}

func (s *SnapshotStore) ListDeliveries(ctx context.Context) ([]domain.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Delivery, len(s.deliveries))
	copy(out, s.deliveries)
	return out, nil
}
