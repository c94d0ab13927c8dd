// Package message defines the wire-level data model for LabRelay Core.
//
// This package contains:
//   - Address: sender/target routing as ordered hop chains
//   - Request: an outbound method-invocation envelope
//   - Reply: the correlated result envelope for a prior Request
//   - Envelope: the union type carried by transports
//   - Codec: pluggable encoding with a JSON implementation
//
// # Wire Schema
//
// The JSON encoding is the interoperability contract between endpoints.
// Any two processes that speak it can exchange invocations, regardless of
// implementation language:
//
//	Request  { request_id, address, priority, rank, object_id, method, args, kwargs }
//	Reply    { reply_id, request_id, address, priority, rank, status, data?, error? }
//	Address  { sender: [...], target: [...] }
//
// Positional arguments and keyword values travel as strings. The textual
// serialization for non-string types is fixed by this package (args.go):
// booleans as "true"/"false", integers in base 10, floats in Go's shortest
// 'g' form. Both ends of a session must use these forms.
//
// # Hop Chains
//
// Both address chains run from the endpoint inward: index 0 names the
// endpoint (the process-level inbox), subsequent hops descend into nested
// or compound instrument hierarchies. Reverse() swaps the chains to derive
// a Reply's route from its Request.
//
// Requests and Replies are value objects: never mutated after creation,
// passed by copy or serialization only.
package message
