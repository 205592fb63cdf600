package ports

import (
	"context"
	"courier-route-service/internal/domain"
	"time"
)

// Port: read-only snapshot of the courier roster and delivery set.
// Returned slices are owned by the caller and must not be retained by the source.
type SnapshotSource interface {
	ListCouriers(ctx context.Context) ([]domain.Courier, error)
	ListDeliveries(ctx context.Context) ([]domain.Delivery, error)
}

// Clock supplies the host wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now in a fixed location.
type SystemClock struct{ Location *time.Location }

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}
