package queue

import "errors"

// ErrClosed is returned by Enqueue after Close, and by Dequeue once the
// queue is closed and drained. Callers blocked on a correlated reply treat
// it as a systemic failure, never a silent hang.
var ErrClosed = errors.New("queue: closed")
