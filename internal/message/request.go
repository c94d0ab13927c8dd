package message

import (
	"fmt"

	"github.com/google/uuid"
)

// Request is an outbound method-invocation envelope.
//
// A Request is created by a caller, serialized, handed to a transport and
// consumed exactly once by the receiving dispatcher. The RequestID is
// generated at creation and never reused within a session. Treat a Request
// as immutable once sent.
type Request struct {
	// RequestID is the globally unique correlation key for this invocation.
	RequestID string `json:"request_id"`

	// Address carries the sender and target hop chains.
	Address Address `json:"address"`

	// Priority requests are serviced ahead of all queued non-priority ones.
	Priority bool `json:"priority"`

	// Rank breaks ties within a priority class: lower rank is serviced
	// first, equal ranks preserve arrival order. Zero is the neutral
	// default.
	Rank int32 `json:"rank"`

	// ObjectID identifies the target object instance within the target
	// endpoint's registry.
	ObjectID string `json:"object_id"`

	// Method is the name of the method to invoke on that object.
	Method string `json:"method"`

	// Args are string-encoded positional arguments (see args.go for the
	// textual forms).
	Args []string `json:"args"`

	// Kwargs are string-encoded keyword arguments. Keys are unique.
	Kwargs map[string]string `json:"kwargs"`
}

// NewRequest creates a Request with a freshly generated RequestID.
//
// Returns ErrInvalidAddress if the address fails validation. Args and
// kwargs may be nil for zero-argument invocations.
func NewRequest(addr Address, objectID, method string, args []string, kwargs map[string]string) (*Request, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	if objectID == "" {
		return nil, fmt.Errorf("%w: object_id is required", ErrDecode)
	}
	if method == "" {
		return nil, fmt.Errorf("%w: method is required", ErrDecode)
	}
	return &Request{
		RequestID: uuid.NewString(),
		Address:   addr,
		ObjectID:  objectID,
		Method:    method,
		Args:      args,
		Kwargs:    kwargs,
	}, nil
}

// WithPriority returns a copy of the Request marked as priority with the
// given rank. The original is left untouched (Requests are value objects).
func (r *Request) WithPriority(rank int32) *Request {
	cp := *r
	cp.Priority = true
	cp.Rank = rank
	return &cp
}

// Validate checks the invariants a dispatcher relies on before handling.
func (r *Request) Validate() error {
	if r.RequestID == "" {
		return fmt.Errorf("%w: request_id is required", ErrDecode)
	}
	if r.ObjectID == "" {
		return fmt.Errorf("%w: object_id is required", ErrDecode)
	}
	if r.Method == "" {
		return fmt.Errorf("%w: method is required", ErrDecode)
	}
	return r.Address.Validate()
}
