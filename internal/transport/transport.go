package transport

import (
	"context"

	"github.com/bennettsmith-io/labrelay-core/internal/message"
)

// Transport delivers envelopes to and from a single named endpoint.
type Transport interface {
	// Send delivers an envelope to the endpoint named by its target
	// address. Delivery is asynchronous; a nil error means the envelope
	// was accepted, not that it was processed.
	Send(ctx context.Context, env *message.Envelope) error

	// Receive blocks until an envelope addressed to this endpoint is
	// available. Envelopes are surfaced in two-tier priority order.
	// Returns queue.ErrClosed once the transport is closed and drained.
	Receive(ctx context.Context) (*message.Envelope, error)

	// Endpoint returns the endpoint name this transport receives for.
	Endpoint() string

	// Close stops delivery. Already-staged envelopes remain receivable.
	Close() error
}
