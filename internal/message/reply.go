package message

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Status is the outcome code carried by a Reply.
type Status string

// Reply statuses. Structural failures (unknown object/method, argument
// decoding) and invocation failures are reported through these codes and
// never crash the dispatch loop.
const (
	// StatusSuccess indicates the method was invoked and returned normally.
	StatusSuccess Status = "Success"

	// StatusPending indicates the request was accepted but the terminal
	// reply has not been produced yet.
	StatusPending Status = "Pending"

	// StatusUnknownObject indicates the target object_id is not registered
	// at the receiving endpoint.
	StatusUnknownObject Status = "UnknownObject"

	// StatusUnknownMethod indicates the object exists but has no such
	// invokable method.
	StatusUnknownMethod Status = "UnknownMethod"

	// StatusDecodeError indicates the string-encoded arguments could not
	// be decoded into the types the method expects.
	StatusDecodeError Status = "DecodeError"

	// StatusExecutionError indicates the invocation itself failed; the
	// Reply's Error field carries a human-readable message.
	StatusExecutionError Status = "ExecutionError"
)

// Terminal reports whether the status ends the request's lifecycle.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// Reply is the inbound result envelope correlated to a prior Request.
//
// At most one terminal Reply exists per RequestID. A Reply referencing an
// unknown RequestID is an orphan: it is logged by the receiving client and
// discarded, never delivered.
type Reply struct {
	// ReplyID uniquely identifies this reply.
	ReplyID string `json:"reply_id"`

	// RequestID equals the RequestID of the Request this answers.
	RequestID string `json:"request_id"`

	// Address is the Request's address with sender and target reversed.
	Address Address `json:"address"`

	// Priority and Rank mirror the Request for reply-side scheduling.
	Priority bool  `json:"priority"`
	Rank     int32 `json:"rank"`

	// Status is the outcome code.
	Status Status `json:"status"`

	// Data carries the method's return value, if any, as raw JSON.
	Data json.RawMessage `json:"data,omitempty"`

	// Error holds a human-readable failure message for non-success
	// statuses.
	Error string `json:"error,omitempty"`
}

// NewReply builds a Reply for the given Request with a fresh ReplyID.
//
// The reply is addressed with the Request's address reversed and inherits
// the Request's priority and rank so the return path keeps the same
// scheduling class.
func NewReply(req *Request, status Status, data json.RawMessage) *Reply {
	return &Reply{
		ReplyID:   uuid.NewString(),
		RequestID: req.RequestID,
		Address:   req.Address.Reverse(),
		Priority:  req.Priority,
		Rank:      req.Rank,
		Status:    status,
		Data:      data,
	}
}

// NewFailureReply builds a Reply carrying a failure status and message.
func NewFailureReply(req *Request, status Status, errMsg string) *Reply {
	rep := NewReply(req, status, nil)
	rep.Error = errMsg
	return rep
}

// Validate checks the invariants a client relies on before correlation.
func (r *Reply) Validate() error {
	if r.ReplyID == "" {
		return fmt.Errorf("%w: reply_id is required", ErrDecode)
	}
	if r.RequestID == "" {
		return fmt.Errorf("%w: request_id is required", ErrDecode)
	}
	if r.Status == "" {
		return fmt.Errorf("%w: status is required", ErrDecode)
	}
	return r.Address.Validate()
}
