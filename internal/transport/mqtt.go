package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/bennettsmith-io/labrelay-core/internal/infrastructure/mqtt"
	"github.com/bennettsmith-io/labrelay-core/internal/message"
	"github.com/bennettsmith-io/labrelay-core/internal/queue"
)

// MQTTTransport delivers envelopes over an MQTT broker.
//
// Requests publish to labrelay/request/{endpoint} and replies to
// labrelay/reply/{endpoint}; the transport subscribes to both topics for
// its own endpoint. Incoming payloads are decoded and staged in a local
// two-tier queue, so Receive surfaces them in priority order rather than
// broker arrival order.
type MQTTTransport struct {
	client   *mqtt.Client
	codec    message.Codec
	endpoint string
	inbox    *queue.TwoTier
	logger   mqtt.Logger

	mu     sync.Mutex
	closed bool
}

// topics is shared with the infrastructure package so topic construction
// stays in one place.
var topics = mqtt.Topics{}

// NewMQTTTransport subscribes the given endpoint on an established MQTT
// connection. The codec decodes incoming payloads; decode failures are
// logged and the payload is dropped, matching the at-most-once handling
// of malformed broker traffic elsewhere in the system.
func NewMQTTTransport(client *mqtt.Client, codec message.Codec, endpoint string, logger mqtt.Logger) (*MQTTTransport, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w: empty endpoint", ErrUnknownEndpoint)
	}
	t := &MQTTTransport{
		client:   client,
		codec:    codec,
		endpoint: endpoint,
		inbox:    queue.New(),
		logger:   logger,
	}

	if err := client.Subscribe(topics.Request(endpoint), 1, t.handleRequest); err != nil {
		return nil, fmt.Errorf("subscribing to request topic: %w", err)
	}
	if err := client.Subscribe(topics.Reply(endpoint), 1, t.handleReply); err != nil {
		return nil, fmt.Errorf("subscribing to reply topic: %w", err)
	}
	return t, nil
}

func (t *MQTTTransport) handleRequest(topic string, payload []byte) error {
	req, err := t.codec.DecodeRequest(payload)
	if err != nil {
		t.logger.Warn("dropping undecodable request", "topic", topic, "error", err)
		return nil
	}
	return t.inbox.Enqueue(message.WrapRequest(req))
}

func (t *MQTTTransport) handleReply(topic string, payload []byte) error {
	rep, err := t.codec.DecodeReply(payload)
	if err != nil {
		t.logger.Warn("dropping undecodable reply", "topic", topic, "error", err)
		return nil
	}
	return t.inbox.Enqueue(message.WrapReply(rep))
}

// Send publishes the envelope to its target endpoint's topic at QoS 1.
func (t *MQTTTransport) Send(ctx context.Context, env *message.Envelope) error {
	if err := env.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrClosed
	}

	target := env.TargetEndpoint()
	switch env.Kind {
	case message.KindRequest:
		payload, err := t.codec.EncodeRequest(env.Request)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		return t.client.Publish(topics.Request(target), payload, 1, false)
	case message.KindReply:
		payload, err := t.codec.EncodeReply(env.Reply)
		if err != nil {
			return fmt.Errorf("encoding reply: %w", err)
		}
		return t.client.Publish(topics.Reply(target), payload, 1, false)
	default:
		return fmt.Errorf("%w: envelope kind %q", message.ErrDecode, env.Kind)
	}
}

// Receive returns the next staged envelope in two-tier order.
func (t *MQTTTransport) Receive(ctx context.Context) (*message.Envelope, error) {
	return t.inbox.Dequeue(ctx)
}

// Endpoint returns the endpoint name this transport receives for.
func (t *MQTTTransport) Endpoint() string {
	return t.endpoint
}

// Depth returns the number of envelopes staged in the local inbox.
func (t *MQTTTransport) Depth() int {
	return t.inbox.Len()
}

// Close unsubscribes the endpoint topics and closes the local inbox.
// The underlying MQTT client is shared and stays connected.
func (t *MQTTTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	if err := t.client.Unsubscribe(topics.Request(t.endpoint)); err != nil {
		t.logger.Warn("unsubscribe failed", "topic", topics.Request(t.endpoint), "error", err)
	}
	if err := t.client.Unsubscribe(topics.Reply(t.endpoint)); err != nil {
		t.logger.Warn("unsubscribe failed", "topic", topics.Reply(t.endpoint), "error", err)
	}
	t.inbox.Close()
	return nil
}

var _ Transport = (*MQTTTransport)(nil)
