package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/bennettsmith-io/labrelay-core/internal/message"
	"github.com/bennettsmith-io/labrelay-core/internal/queue"
)

// Bus is an in-process transport: every endpoint gets its own two-tier
// inbox and Send routes by the envelope's target endpoint.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Bus struct {
	mu        sync.RWMutex
	endpoints map[string]*MemoryEndpoint
	closed    bool
}

// NewBus creates an empty in-process bus.
func NewBus() *Bus {
	return &Bus{
		endpoints: make(map[string]*MemoryEndpoint),
	}
}

// Endpoint returns the transport for the named endpoint, creating it on
// first use. Repeated calls with the same name return the same endpoint.
func (b *Bus) Endpoint(name string) *MemoryEndpoint {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ep, ok := b.endpoints[name]; ok {
		return ep
	}
	ep := &MemoryEndpoint{
		bus:   b,
		name:  name,
		inbox: queue.New(),
	}
	b.endpoints[name] = ep
	return ep
}

// route delivers an envelope into the target endpoint's inbox.
func (b *Bus) route(env *message.Envelope) error {
	target := env.TargetEndpoint()

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}
	ep, ok := b.endpoints[target]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEndpoint, target)
	}
	return ep.inbox.Enqueue(env)
}

// Close closes every endpoint on the bus. Staged envelopes remain
// receivable until drained.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, ep := range b.endpoints {
		ep.inbox.Close()
	}
	return nil
}

// MemoryEndpoint is one endpoint's view of a Bus.
type MemoryEndpoint struct {
	bus   *Bus
	name  string
	inbox *queue.TwoTier
}

// Send routes the envelope to its target endpoint's inbox.
func (e *MemoryEndpoint) Send(ctx context.Context, env *message.Envelope) error {
	if err := env.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.bus.route(env)
}

// Receive returns the next envelope for this endpoint in two-tier order.
func (e *MemoryEndpoint) Receive(ctx context.Context) (*message.Envelope, error) {
	return e.inbox.Dequeue(ctx)
}

// Endpoint returns the endpoint name.
func (e *MemoryEndpoint) Endpoint() string {
	return e.name
}

// Depth returns the number of envelopes waiting in this endpoint's inbox.
func (e *MemoryEndpoint) Depth() int {
	return e.inbox.Len()
}

// Close closes this endpoint's inbox. Other endpoints on the bus are
// unaffected.
func (e *MemoryEndpoint) Close() error {
	e.inbox.Close()
	return nil
}

var _ Transport = (*MemoryEndpoint)(nil)
