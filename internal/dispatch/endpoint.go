package dispatch

import (
	"context"
	"errors"

	"github.com/bennettsmith-io/labrelay-core/internal/message"
	"github.com/bennettsmith-io/labrelay-core/internal/queue"
	"github.com/bennettsmith-io/labrelay-core/internal/transport"
)

// Endpoint owns a transport's receive loop and demultiplexes envelopes:
// requests go to the Dispatcher, replies to the Client. Either side may
// be nil for a process that only serves or only calls.
type Endpoint struct {
	transport  transport.Transport
	dispatcher *Dispatcher
	client     *Client
	logger     Logger
}

// NewEndpoint wires a transport to its request and reply consumers.
func NewEndpoint(tr transport.Transport, d *Dispatcher, c *Client) *Endpoint {
	return &Endpoint{
		transport:  tr,
		dispatcher: d,
		client:     c,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the endpoint.
func (e *Endpoint) SetLogger(logger Logger) {
	e.logger = logger
}

// Run receives envelopes until the context is cancelled or the transport
// closes. On exit it waits for in-flight dispatches and fails the
// client's outstanding requests.
func (e *Endpoint) Run(ctx context.Context) error {
	defer e.shutdown()

	for {
		env, err := e.transport.Receive(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		switch env.Kind {
		case message.KindRequest:
			if e.dispatcher == nil {
				e.logger.Warn("request received on client-only endpoint",
					"request_id", env.Request.RequestID,
				)
				continue
			}
			e.dispatcher.Dispatch(ctx, env.Request)
		case message.KindReply:
			if e.client == nil {
				e.logger.Warn("reply received on server-only endpoint",
					"reply_id", env.Reply.ReplyID,
				)
				continue
			}
			e.client.HandleReply(env.Reply)
		default:
			e.logger.Warn("envelope with unknown kind dropped", "kind", string(env.Kind))
		}
	}
}

func (e *Endpoint) shutdown() {
	if e.dispatcher != nil {
		e.dispatcher.Wait()
	}
	if e.client != nil {
		e.client.Close() //nolint:errcheck // Close is idempotent and error-free
	}
}
