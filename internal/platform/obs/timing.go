package obs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID tags ctx with a fresh request/cycle ID.
func WithRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, RequestIDKey, uuid.NewString())
}

// RequestID returns the ID stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(RequestIDKey).(string)
	return reqID
}

func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID := RequestID(ctx)
	logger := zerolog.Ctx(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			logger.Warn().Str("req_id", reqID).Str("op", name).Int64("dur_ms", dur.Milliseconds()).Err(*errp).Msg("op failed")
			return
		}
		logger.Debug().Str("req_id", reqID).Str("op", name).Int64("dur_ms", dur.Milliseconds()).Msg("op done")
	}
}
