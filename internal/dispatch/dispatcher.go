package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bennettsmith-io/labrelay-core/internal/message"
	"github.com/bennettsmith-io/labrelay-core/internal/registry"
)

// Logger defines the logging interface used by this package.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Sender is the sending half of a transport.
type Sender interface {
	Send(ctx context.Context, env *message.Envelope) error
}

// Resolver maps (object_id, method) pairs to invokables. Satisfied by
// registry.Registry.
type Resolver interface {
	Resolve(objectID, method string) (registry.Invokable, error)
}

// Metrics receives dispatch telemetry. Satisfied by influxdb.Client.
type Metrics interface {
	WriteDispatchMetric(endpoint, objectID, method, status string, duration time.Duration)
}

// DispatcherConfig controls dispatch behaviour.
type DispatcherConfig struct {
	// Endpoint is this node's name, used for metrics tagging.
	Endpoint string

	// Concurrent runs each invocation in its own goroutine. When false,
	// invocations run one at a time in strict queue order.
	Concurrent bool

	// MaxConcurrent bounds in-flight invocations in concurrent mode.
	// 0 means unbounded.
	MaxConcurrent int

	// InvokeTimeout is the per-invocation deadline. 0 disables it.
	InvokeTimeout time.Duration
}

// Dispatcher serves requests: it resolves each request against the
// registry, invokes the method, and sends exactly one reply back to the
// requester. Failures at any stage still produce a reply so the caller
// is never left waiting on a swallowed error.
//
// Thread Safety:
//   - Dispatch is safe for concurrent use, though a single Endpoint
//     receive loop is the usual caller.
type Dispatcher struct {
	resolver  Resolver
	transport Sender
	cfg       DispatcherConfig
	logger    Logger
	metrics   Metrics

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewDispatcher creates a dispatcher serving requests over the given
// transport.
func NewDispatcher(resolver Resolver, transport Sender, cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		resolver:  resolver,
		transport: transport,
		cfg:       cfg,
		logger:    noopLogger{},
	}
	if cfg.Concurrent && cfg.MaxConcurrent > 0 {
		d.sem = make(chan struct{}, cfg.MaxConcurrent)
	}
	return d
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.logger = logger
}

// SetMetrics sets an optional metrics sink for dispatch telemetry.
func (d *Dispatcher) SetMetrics(m Metrics) {
	d.metrics = m
}

// Dispatch handles one request. In serial mode it runs the invocation
// inline; in concurrent mode it runs in a new goroutine, bounded by
// MaxConcurrent.
func (d *Dispatcher) Dispatch(ctx context.Context, req *message.Request) {
	if !d.cfg.Concurrent {
		d.handle(ctx, req)
		return
	}

	if d.sem != nil {
		select {
		case d.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if d.sem != nil {
			defer func() { <-d.sem }()
		}
		d.handle(ctx, req)
	}()
}

// Wait blocks until all in-flight concurrent invocations finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// handle runs the full resolve, invoke, reply sequence for one request.
func (d *Dispatcher) handle(ctx context.Context, req *message.Request) {
	started := time.Now()

	rep := d.process(ctx, req)

	if err := d.transport.Send(ctx, message.WrapReply(rep)); err != nil {
		d.logger.Error("sending reply failed",
			"request_id", req.RequestID,
			"reply_id", rep.ReplyID,
			"error", err,
		)
		return
	}

	d.logger.Debug("request dispatched",
		"request_id", req.RequestID,
		"object_id", req.ObjectID,
		"method", req.Method,
		"status", string(rep.Status),
		"duration", time.Since(started),
	)

	if d.metrics != nil {
		d.metrics.WriteDispatchMetric(d.cfg.Endpoint, req.ObjectID, req.Method, string(rep.Status), time.Since(started))
	}
}

// process resolves and invokes the request, mapping every failure mode to
// its reply status.
func (d *Dispatcher) process(ctx context.Context, req *message.Request) *message.Reply {
	if err := req.Validate(); err != nil {
		return message.NewFailureReply(req, message.StatusDecodeError, err.Error())
	}

	fn, err := d.resolver.Resolve(req.ObjectID, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrObjectNotFound):
			return message.NewFailureReply(req, message.StatusUnknownObject, err.Error())
		case errors.Is(err, registry.ErrMethodNotFound):
			return message.NewFailureReply(req, message.StatusUnknownMethod, err.Error())
		default:
			return message.NewFailureReply(req, message.StatusExecutionError, err.Error())
		}
	}

	result, err := d.invoke(ctx, fn, req)
	if err != nil {
		if errors.Is(err, message.ErrDecode) {
			return message.NewFailureReply(req, message.StatusDecodeError, err.Error())
		}
		return message.NewFailureReply(req, message.StatusExecutionError, err.Error())
	}

	if result == nil {
		return message.NewReply(req, message.StatusSuccess, nil)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return message.NewFailureReply(req, message.StatusExecutionError,
			fmt.Sprintf("encoding result: %v", err))
	}
	return message.NewReply(req, message.StatusSuccess, data)
}

// invoke calls the resolved method with panic recovery and the configured
// deadline.
func (d *Dispatcher) invoke(ctx context.Context, fn registry.Invokable, req *message.Request) (result any, err error) {
	if d.cfg.InvokeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.InvokeTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("method panicked",
				"request_id", req.RequestID,
				"object_id", req.ObjectID,
				"method", req.Method,
				"panic", r,
			)
			result = nil
			err = fmt.Errorf("method %s.%s panicked: %v", req.ObjectID, req.Method, r)
		}
	}()

	return fn(ctx, registry.Call{Args: req.Args, Kwargs: req.Kwargs})
}
