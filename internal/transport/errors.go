package transport

import "errors"

var (
	// ErrUnknownEndpoint indicates the target endpoint of an envelope has
	// no registered receiver on this bus.
	ErrUnknownEndpoint = errors.New("transport: unknown endpoint")

	// ErrClosed indicates the transport has been closed and can no longer
	// send.
	ErrClosed = errors.New("transport: closed")
)
