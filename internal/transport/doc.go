// Package transport moves envelopes between endpoints.
//
// A Transport delivers request and reply envelopes addressed to named
// endpoints. The dispatch layer never talks to a broker or a queue
// directly; it sends and receives through this interface, so the same
// dispatcher and client run unchanged over the in-process bus or MQTT.
//
// # Architecture
//
// Two implementations are provided:
//
//   - Bus / MemoryEndpoint: in-process delivery backed by per-endpoint
//     two-tier queues. Used for single-process deployments and tests.
//   - MQTTTransport: broker-backed delivery over eclipse/paho. Requests
//     travel on labrelay/request/{endpoint}, replies on
//     labrelay/reply/{endpoint}. Incoming messages are decoded and staged
//     in a local two-tier queue so priority ordering holds even when the
//     broker delivers in arrival order.
//
// # Usage
//
//	bus := transport.NewBus()
//	server := bus.Endpoint("lab-node-1")
//	client := bus.Endpoint("operator")
//
//	err := client.Send(ctx, message.WrapRequest(req))
//	env, err := server.Receive(ctx)
//
// Receive blocks until an envelope arrives, the context is cancelled, or
// the transport is closed. After Close, Receive drains staged envelopes
// and then returns queue.ErrClosed.
package transport
