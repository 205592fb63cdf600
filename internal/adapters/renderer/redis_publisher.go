package renderer

import (
	"context"
	"courier-route-service/internal/ports"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes render requests on a pub/sub channel and mirrors
// the current route set in a hash (<channel>:current) so dashboards that
// connect late can load it.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
	hashKey string
	now     func() time.Time
}

func NewRedisPublisher(client redis.UniversalClient, channel string) (*RedisPublisher, error) {
	if client == nil {
		return nil, errors.New("redis publisher: client is nil")
	}
	if channel == "" {
		return nil, errors.New("redis publisher: channel must not be empty")
	}

	return &RedisPublisher{
		client:  client,
		channel: channel,
		hashKey: channel + ":current",
		now:     time.Now,
	}, nil
}

func (p *RedisPublisher) ClearRoutes(ctx context.Context) error {
	payload, err := encodeClear(p.now())
	if err != nil {
		return fmt.Errorf("redis clear: encode: %w", err)
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, p.hashKey)
		pipe.Publish(ctx, p.channel, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}

func (p *RedisPublisher) DrawRoute(ctx context.Context, req ports.DrawRouteRequest) error {
	if req.CourierID == "" {
		return errors.New("redis draw: courier id must not be empty")
	}

	payload, err := encodeDraw(req, p.now())
	if err != nil {
		return fmt.Errorf("redis draw: encode: %w", err)
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, p.hashKey, req.CourierID, payload)
		pipe.Publish(ctx, p.channel, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis draw courier_id=%q: %w", req.CourierID, err)
	}
	return nil
}
