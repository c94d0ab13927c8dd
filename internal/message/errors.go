package message

import "errors"

// Domain-specific errors for the message data model.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidAddress is returned when an address chain is empty.
	// Every routed message needs at least an endpoint hop on both sides.
	ErrInvalidAddress = errors.New("message: invalid address (sender and target chains must be non-empty)")

	// ErrDecode is returned when a wire payload or argument value cannot
	// be decoded into the expected form.
	ErrDecode = errors.New("message: decode failed")
)
