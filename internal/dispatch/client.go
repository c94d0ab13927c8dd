package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bennettsmith-io/labrelay-core/internal/message"
	"github.com/bennettsmith-io/labrelay-core/internal/registry"
)

// ClientMetrics receives client-side telemetry. Satisfied by
// influxdb.Client.
type ClientMetrics interface {
	WriteReplyLatency(endpoint, status string, latency time.Duration)
}

// pending is one outstanding request awaiting its terminal reply.
type pending struct {
	req    *message.Request
	done   chan *message.Reply
	sentAt time.Time
}

// Client issues requests and correlates incoming replies by request_id.
//
// Replies for unknown ids (late replies after Cancel, duplicates after a
// terminal reply) are logged and discarded. Non-terminal Pending replies
// surface through the OnReply callback but keep the request outstanding.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	transport Sender
	endpoint  string

	mu      sync.Mutex
	pending map[string]*pending
	closed  bool

	logger  Logger
	metrics ClientMetrics

	onReply    func(*message.Reply)
	callbackMu sync.RWMutex
}

// NewClient creates a client sending from the given endpoint name.
func NewClient(transport Sender, endpoint string) *Client {
	return &Client{
		transport: transport,
		endpoint:  endpoint,
		pending:   make(map[string]*pending),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// SetMetrics sets an optional metrics sink for reply latency.
func (c *Client) SetMetrics(m ClientMetrics) {
	c.metrics = m
}

// SetOnReply sets a callback invoked for every correlated reply, terminal
// or not. Used by the API layer to stream replies to websocket clients.
func (c *Client) SetOnReply(callback func(*message.Reply)) {
	c.callbackMu.Lock()
	c.onReply = callback
	c.callbackMu.Unlock()
}

// Endpoint returns the endpoint name this client sends from.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send transmits a request and records it as pending. The reply is
// collected later with Await or Poll.
//
// Returns ErrDuplicateRequestID if the id is already outstanding and
// ErrClientClosed after Close.
func (c *Client) Send(ctx context.Context, req *message.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	p := &pending{
		req:    req,
		done:   make(chan *message.Reply, 1),
		sentAt: time.Now(),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	if _, exists := c.pending[req.RequestID]; exists {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicateRequestID, req.RequestID)
	}
	c.pending[req.RequestID] = p
	c.mu.Unlock()

	if err := c.transport.Send(ctx, message.WrapRequest(req)); err != nil {
		c.remove(req.RequestID)
		return fmt.Errorf("sending request: %w", err)
	}

	c.logger.Debug("request sent",
		"request_id", req.RequestID,
		"object_id", req.ObjectID,
		"method", req.Method,
	)
	return nil
}

// Await blocks until the terminal reply for the request arrives, the
// context expires, or the client closes.
//
// A context deadline surfaces as ErrTimeout and removes the pending
// entry: a reply that arrives after the timeout is handled as an orphan.
func (c *Client) Await(ctx context.Context, requestID string) (*message.Reply, error) {
	c.mu.Lock()
	p, ok := c.pending[requestID]
	closed := c.closed
	c.mu.Unlock()
	if !ok {
		if closed {
			return nil, ErrClientClosed
		}
		return nil, fmt.Errorf("%w: %q", ErrNotPending, requestID)
	}

	select {
	case rep := <-p.done:
		if rep == nil {
			return nil, ErrClientClosed
		}
		c.remove(requestID)
		return rep, nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			c.remove(requestID)
			return nil, fmt.Errorf("%w: %q", ErrTimeout, requestID)
		}
		return nil, ctx.Err()
	}
}

// Poll returns the terminal reply if it has arrived, without blocking.
// The second return reports whether a reply was available.
//
// Returns ErrNotPending if the id has no outstanding entry.
func (c *Client) Poll(requestID string) (*message.Reply, bool, error) {
	c.mu.Lock()
	p, ok := c.pending[requestID]
	c.mu.Unlock()
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrNotPending, requestID)
	}

	select {
	case rep := <-p.done:
		if rep == nil {
			return nil, false, ErrClientClosed
		}
		c.remove(requestID)
		return rep, true, nil
	default:
		return nil, false, nil
	}
}

// Cancel abandons an outstanding request. A reply that arrives afterwards
// is treated as an orphan: logged and discarded.
func (c *Client) Cancel(requestID string) error {
	c.mu.Lock()
	_, ok := c.pending[requestID]
	if ok {
		delete(c.pending, requestID)
	}
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotPending, requestID)
	}

	c.logger.Info("request cancelled", "request_id", requestID)
	return nil
}

// PendingCount returns the number of outstanding requests.
func (c *Client) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// HandleReply correlates one incoming reply. Terminal replies complete
// the pending entry; Pending status keeps the request outstanding.
// Called by the Endpoint receive loop.
func (c *Client) HandleReply(rep *message.Reply) {
	c.callbackMu.RLock()
	callback := c.onReply
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(rep)
	}

	c.mu.Lock()
	p, ok := c.pending[rep.RequestID]
	c.mu.Unlock()

	if !ok {
		c.logger.Warn("orphan reply discarded",
			"reply_id", rep.ReplyID,
			"request_id", rep.RequestID,
			"status", string(rep.Status),
		)
		return
	}

	if !rep.Status.Terminal() {
		c.logger.Debug("progress reply",
			"request_id", rep.RequestID,
			"status", string(rep.Status),
		)
		return
	}

	if c.metrics != nil {
		c.metrics.WriteReplyLatency(c.endpoint, string(rep.Status), time.Since(p.sentAt))
	}

	// The entry stays until Await or Poll consumes the reply. The channel
	// holds one terminal reply; a duplicate is discarded here.
	select {
	case p.done <- rep:
	default:
		c.logger.Warn("duplicate terminal reply discarded",
			"reply_id", rep.ReplyID,
			"request_id", rep.RequestID,
		)
	}
}

// Close fails every outstanding request with ErrClientClosed and rejects
// further sends. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	abandoned := c.pending
	c.pending = make(map[string]*pending)
	c.mu.Unlock()

	// A nil sentinel wakes blocked Await/Poll callers with ErrClientClosed.
	// The channel is never closed, so a racing HandleReply cannot panic;
	// its send lands in the buffer of an already-abandoned entry.
	for id, p := range abandoned {
		c.logger.Warn("pending request failed by shutdown", "request_id", id)
		select {
		case p.done <- nil:
		default:
		}
	}
	return nil
}

// remove drops a pending entry, used when the send itself fails.
func (c *Client) remove(requestID string) {
	c.mu.Lock()
	delete(c.pending, requestID)
	c.mu.Unlock()
}

// Call sends a request to target and blocks for the terminal reply.
// It is the synchronous convenience wrapper over Send and Await.
func (c *Client) Call(ctx context.Context, target []string, objectID, method string, args []string, kwargs map[string]string) (*message.Reply, error) {
	addr, err := message.BuildAddress([]string{c.endpoint}, target)
	if err != nil {
		return nil, err
	}
	req, err := message.NewRequest(addr, objectID, method, args, kwargs)
	if err != nil {
		return nil, err
	}
	if err := c.Send(ctx, req); err != nil {
		return nil, err
	}
	rep, err := c.Await(ctx, req.RequestID)
	if err != nil {
		// Covers the cancellation paths Await leaves pending; a late
		// reply is handled as an orphan either way.
		c.remove(req.RequestID)
		return nil, err
	}
	return rep, nil
}

// Describe fetches the discovery catalog of a remote endpoint by calling
// the system object's describe method.
func (c *Client) Describe(ctx context.Context, target []string) ([]registry.ObjectSpec, error) {
	rep, err := c.Call(ctx, target, "system", "describe", nil, nil)
	if err != nil {
		return nil, err
	}
	if rep.Status != message.StatusSuccess {
		return nil, fmt.Errorf("describe failed with status %s: %s", rep.Status, rep.Error)
	}
	var specs []registry.ObjectSpec
	if err := json.Unmarshal(rep.Data, &specs); err != nil {
		return nil, fmt.Errorf("%w: decoding catalog: %w", message.ErrDecode, err)
	}
	return specs, nil
}
