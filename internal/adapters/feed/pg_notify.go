package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// PgNotifyListener turns Postgres NOTIFY events on a channel into notify
// calls. It holds a dedicated connection outside the database/sql pool and
// reconnects after failures.
type PgNotifyListener struct {
	databaseURL string
	channel     string
	notify      func()
	logger      zerolog.Logger
	retryDelay  time.Duration

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPgNotifyListener(databaseURL, channel string, notify func(), logger zerolog.Logger) *PgNotifyListener {
	return &PgNotifyListener{
		databaseURL: databaseURL,
		channel:     channel,
		notify:      notify,
		logger:      logger,
		retryDelay:  2 * time.Second,
	}
}

func (l *PgNotifyListener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ctx != nil {
		return errors.New("pg notify listener is already running")
	}
	l.ctx, l.cancel = context.WithCancel(context.Background())

	l.wg.Add(1)
	go func(ctx context.Context) {
		defer l.wg.Done()
		l.run(ctx)
	}(l.ctx)

	l.logger.Info().Str("channel", l.channel).Msg("PgNotifyListener started")
	return nil
}

func (l *PgNotifyListener) Stop() error {
	l.mu.Lock()
	if l.ctx == nil {
		l.mu.Unlock()
		return errors.New("pg notify listener is not running")
	}
	l.cancel()
	l.ctx = nil
	l.cancel = nil
	l.mu.Unlock()

	l.wg.Wait()
	l.logger.Info().Msg("PgNotifyListener stopped")
	return nil
}

func (l *PgNotifyListener) run(ctx context.Context) {
	for ctx.Err() == nil {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.logger.Warn().Err(err).Dur("retry_in", l.retryDelay).Msg("LISTEN connection lost")

		timer := time.NewTimer(l.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (l *PgNotifyListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.databaseURL)
	if err != nil {
		return fmt.Errorf("listen: connect: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: LISTEN %s: %w", l.channel, err)
	}

	// Rows may have changed while disconnected.
	l.notify()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("listen: wait for notification: %w", err)
		}
		l.logger.Debug().Str("channel", n.Channel).Str("payload", n.Payload).Msg("snapshot change notified")
		l.notify()
	}
}
