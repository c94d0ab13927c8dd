// Package dispatch implements the request/reply core: the server side that
// resolves and invokes registered methods, and the client side that
// correlates replies to outstanding requests.
//
// # Architecture
//
// A node runs one Endpoint per transport connection. The Endpoint owns the
// receive loop and demultiplexes by envelope kind: requests go to the
// Dispatcher, replies to the Client. Both sides can share a single
// transport, so one process can serve instruments and issue requests at
// the same time.
//
//	transport.Receive ─→ Endpoint ─┬─ request ─→ Dispatcher ─→ registry ─→ reply
//	                               └─ reply ───→ Client ─→ pending table
//
// The Dispatcher maps each request to exactly one reply:
//
//	resolve failure    → UnknownObject / UnknownMethod
//	argument decode    → DecodeError
//	invocation error   → ExecutionError
//	panic in handler   → ExecutionError
//	success            → Success with JSON-encoded result
//
// The Client keeps a pending table keyed by request_id. Await blocks for
// the terminal reply, Poll checks without blocking, Cancel abandons the
// entry so a late reply is logged and discarded like any other orphan.
//
// # Usage
//
//	reg := registry.New()
//	reg.Register(pump)
//
//	d := dispatch.NewDispatcher(reg, serverTransport, dispatch.DispatcherConfig{})
//	c := dispatch.NewClient(clientTransport, "operator")
//
//	go dispatch.NewEndpoint(serverTransport, d, nil).Run(ctx)
//	go dispatch.NewEndpoint(clientTransport, nil, c).Run(ctx)
//
//	rep, err := c.Call(ctx, []string{"lab-node-1"}, "pump1", "dispense",
//	    []string{"2.5"}, nil)
package dispatch
