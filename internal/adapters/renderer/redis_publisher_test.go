package renderer

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/ports"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T) (*RedisPublisher, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	p, err := NewRedisPublisher(client, "dashboard:routes")
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }
	return p, client
}

func receive(t *testing.T, sub *redis.PubSub) Message {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(raw.Payload), &msg))
	return msg
}

func TestRedisPublisherDrawAndClear(t *testing.T) {
	ctx := context.Background()
	p, client := newTestPublisher(t)

	sub := client.Subscribe(ctx, "dashboard:routes")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	req := ports.DrawRouteRequest{
		CourierID: "leo",
		StyleKey:  "#e6194b",
		Positions: []domain.Coordinates{{Lat: -25.82, Lon: -48.53}, {Lat: -25.8209, Lon: -48.53}},
	}
	require.NoError(t, p.DrawRoute(ctx, req))

	msg := receive(t, sub)
	assert.Equal(t, MessageDraw, msg.Type)
	require.NotNil(t, msg.Route)
	assert.Equal(t, req, *msg.Route)

	current, err := client.HGetAll(ctx, "dashboard:routes:current").Result()
	require.NoError(t, err)
	assert.Contains(t, current, "leo")

	require.NoError(t, p.ClearRoutes(ctx))

	msg = receive(t, sub)
	assert.Equal(t, MessageClear, msg.Type)
	assert.Nil(t, msg.Route)

	n, err := client.Exists(ctx, "dashboard:routes:current").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisPublisherValidation(t *testing.T) {
	_, err := NewRedisPublisher(nil, "c")
	assert.Error(t, err)

	p, _ := newTestPublisher(t)
	assert.Error(t, p.DrawRoute(context.Background(), ports.DrawRouteRequest{}))
}

func TestRedisPublisherReportsConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()

	p, err := NewRedisPublisher(client, "dashboard:routes")
	require.NoError(t, err)

	mr.Close()
	assert.Error(t, p.ClearRoutes(context.Background()))
}
