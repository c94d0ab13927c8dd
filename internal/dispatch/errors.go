package dispatch

import "errors"

var (
	// ErrTimeout indicates no terminal reply arrived within the wait window.
	ErrTimeout = errors.New("dispatch: reply timeout")

	// ErrDuplicateRequestID indicates a request id is already pending.
	ErrDuplicateRequestID = errors.New("dispatch: duplicate request id")

	// ErrNotPending indicates the request id has no pending entry, either
	// because it was never sent, already completed, or was cancelled.
	ErrNotPending = errors.New("dispatch: request not pending")

	// ErrClientClosed indicates the client was shut down while requests
	// were still outstanding.
	ErrClientClosed = errors.New("dispatch: client closed")
)
