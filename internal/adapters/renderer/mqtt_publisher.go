package renderer

import (
	"context"
	"courier-route-service/internal/ports"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTClient is the subset of the paho client used for publishing.
type MQTTClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher publishes render requests to <topic>/clear and
// <topic>/draw/<courier_id>.
type MQTTPublisher struct {
	client  MQTTClient
	topic   string
	qos     byte
	timeout time.Duration
	now     func() time.Time
}

func NewMQTTPublisher(client MQTTClient, topic string, qos byte) (*MQTTPublisher, error) {
	if client == nil {
		return nil, errors.New("mqtt publisher: client is nil")
	}
	if topic == "" {
		return nil, errors.New("mqtt publisher: topic must not be empty")
	}
	if qos > 2 {
		return nil, fmt.Errorf("mqtt publisher: invalid qos %d", qos)
	}

	return &MQTTPublisher{
		client:  client,
		topic:   topic,
		qos:     qos,
		timeout: 5 * time.Second,
		now:     time.Now,
	}, nil
}

func (p *MQTTPublisher) ClearRoutes(ctx context.Context) error {
	payload, err := encodeClear(p.now())
	if err != nil {
		return fmt.Errorf("mqtt clear: encode: %w", err)
	}
	if err := p.publish(ctx, p.topic+"/clear", payload); err != nil {
		return fmt.Errorf("mqtt clear: %w", err)
	}
	return nil
}

func (p *MQTTPublisher) DrawRoute(ctx context.Context, req ports.DrawRouteRequest) error {
	if req.CourierID == "" {
		return errors.New("mqtt draw: courier id must not be empty")
	}

	payload, err := encodeDraw(req, p.now())
	if err != nil {
		return fmt.Errorf("mqtt draw: encode: %w", err)
	}
	if err := p.publish(ctx, p.topic+"/draw/"+req.CourierID, payload); err != nil {
		return fmt.Errorf("mqtt draw courier_id=%q: %w", req.CourierID, err)
	}
	return nil
}

func (p *MQTTPublisher) publish(ctx context.Context, topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, false, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return fmt.Errorf("publish to %q timed out", topic)
	}

	return token.Error()
}

// ConnectMQTT opens a paho client connection to broker.
func ConnectMQTT(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect to %q timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %q: %w", broker, err)
	}

	return client, nil
}
