package feed

import (
	"context"
	"courier-route-service/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	MessageCouriers   = "couriers"
	MessageDeliveries = "deliveries"
)

// FeedMessage is one push from the dispatch backend. Data holds the full
// list for the named collection.
type FeedMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WebsocketFeed subscribes to the dispatch backend's real-time socket and
// mirrors the pushed lists into a SnapshotStore, calling notify after every
// applied push. It reconnects with capped exponential backoff.
type WebsocketFeed struct {
	url        string
	store      *SnapshotStore
	notify     func()
	dialer     *websocket.Dialer
	logger     zerolog.Logger
	minBackoff time.Duration
	maxBackoff time.Duration

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWebsocketFeed(url string, store *SnapshotStore, notify func(), logger zerolog.Logger) *WebsocketFeed {
	return &WebsocketFeed{
		url:        url,
		store:      store,
		notify:     notify,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:     logger,
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// Start launches the connection loop in a separate goroutine.
func (f *WebsocketFeed) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ctx != nil {
		return errors.New("websocket feed is already running")
	}
	f.ctx, f.cancel = context.WithCancel(context.Background())

	f.wg.Add(1)
	go func(ctx context.Context) {
		defer f.wg.Done()
		f.run(ctx)
	}(f.ctx)

	f.logger.Info().Str("url", f.url).Msg("WebsocketFeed started")
	return nil
}

// Stop closes the connection and waits for the loop to exit.
func (f *WebsocketFeed) Stop() error {
	f.mu.Lock()
	if f.ctx == nil {
		f.mu.Unlock()
		return errors.New("websocket feed is not running")
	}
	f.cancel()
	f.ctx = nil
	f.cancel = nil
	f.mu.Unlock()

	f.wg.Wait()
	f.logger.Info().Msg("WebsocketFeed stopped")
	return nil
}

func (f *WebsocketFeed) run(ctx context.Context) {
	backoff := f.minBackoff

	for ctx.Err() == nil {
		conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
		if err != nil {
			f.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("Failed to connect to feed")
		} else {
			backoff = f.minBackoff
			err = f.consume(ctx, conn)
			if ctx.Err() != nil {
				return
			}
			f.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("Feed connection lost")
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		backoff *= 2
		if backoff > f.maxBackoff {
			backoff = f.maxBackoff
		}
	}
}

func (f *WebsocketFeed) consume(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read feed message: %w", err)
		}

		if err := f.Apply(data); err != nil {
			f.logger.Warn().Err(err).Msg("Ignoring malformed feed message")
			continue
		}
		if f.notify != nil {
			f.notify()
		}
	}
}

// Apply decodes one feed message into the store.
func (f *WebsocketFeed) Apply(data []byte) error {
	var msg FeedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("apply feed message: decode envelope: %w", err)
	}

	switch msg.Type {
	case MessageCouriers:
		var couriers []domain.Courier
		if err := json.Unmarshal(msg.Data, &couriers); err != nil {
			return fmt.Errorf("apply feed message: decode couriers: %w", err)
		}
		f.store.ReplaceCouriers(couriers)
	case MessageDeliveries:
		var deliveries []domain.Delivery
		if err := json.Unmarshal(msg.Data, &deliveries); err != nil {
			return fmt.Errorf("apply feed message: decode deliveries: %w", err)
		}
		f.store.ReplaceDeliveries(deliveries)
	default:
		return fmt.Errorf("apply feed message: unknown type %q", msg.Type)
	}

	return nil
}
