package queue

import (
	"container/heap"
	"context"
	"math"
	"sync"

	"github.com/bennettsmith-io/labrelay-core/internal/message"
)

// item is an envelope with its scheduling key.
type item struct {
	env  *message.Envelope
	rank int32
	seq  uint64 // arrival order, breaks rank ties
}

// partition is a min-heap ordered by (rank, seq).
type partition []*item

func (p partition) Len() int { return len(p) }

func (p partition) Less(i, j int) bool {
	if p[i].rank != p[j].rank {
		return p[i].rank < p[j].rank
	}
	return p[i].seq < p[j].seq
}

func (p partition) Swap(i, j int) { p[i], p[j] = p[j], p[i] }

func (p *partition) Push(x any) { *p = append(*p, x.(*item)) }

func (p *partition) Pop() any {
	old := *p
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*p = old[:n-1]
	return it
}

// TwoTier is the priority-aware delivery queue connecting producers to an
// endpoint's consumer loop.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type TwoTier struct {
	mu       sync.Mutex
	priority partition
	normal   partition
	seq      uint64
	closed   bool

	// wake is closed and replaced whenever queue state changes, releasing
	// blocked consumers.
	wake chan struct{}
}

// New creates an empty two-tier queue.
func New() *TwoTier {
	return &TwoTier{
		wake: make(chan struct{}),
	}
}

// Enqueue inserts an envelope according to its scheduling class.
//
// Priority envelopes are placed ahead of all non-priority envelopes
// currently queued. Within a class, lower rank dequeues first and equal
// ranks preserve arrival order. Returns ErrClosed after Close.
func (q *TwoTier) Enqueue(env *message.Envelope) error {
	return q.enqueue(env, env.Priority(), env.Rank())
}

// EnqueueFirst inserts an envelope ahead of everything currently queued,
// regardless of its own priority flag. Used for urgent control traffic
// such as halt commands.
func (q *TwoTier) EnqueueFirst(env *message.Envelope) error {
	return q.enqueue(env, true, math.MinInt32)
}

func (q *TwoTier) enqueue(env *message.Envelope, priority bool, rank int32) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	it := &item{env: env, rank: rank, seq: q.seq}
	q.seq++

	if priority {
		heap.Push(&q.priority, it)
	} else {
		heap.Push(&q.normal, it)
	}

	q.signal()
	return nil
}

// Dequeue removes and returns the next envelope.
//
// It blocks until an envelope is available, the context is cancelled
// (returning ctx.Err()), or the queue is closed and fully drained
// (returning ErrClosed). Envelopes are never reordered once dequeued.
func (q *TwoTier) Dequeue(ctx context.Context) (*message.Envelope, error) {
	for {
		q.mu.Lock()
		if env, ok := q.pop(); ok {
			q.mu.Unlock()
			return env, nil
		}
		if q.closed {
			q.mu.Unlock()
			return nil, ErrClosed
		}
		wake := q.wake
		q.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// TryDequeue removes and returns the next envelope without blocking.
// The second return value is false if the queue is currently empty.
func (q *TwoTier) TryDequeue() (*message.Envelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pop()
}

// pop takes the next item, priority partition first. Caller holds q.mu.
func (q *TwoTier) pop() (*message.Envelope, bool) {
	if q.priority.Len() > 0 {
		return heap.Pop(&q.priority).(*item).env, true
	}
	if q.normal.Len() > 0 {
		return heap.Pop(&q.normal).(*item).env, true
	}
	return nil, false
}

// Len returns the total number of queued envelopes across both partitions.
func (q *TwoTier) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.priority.Len() + q.normal.Len()
}

// Closed reports whether Close has been called.
func (q *TwoTier) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close marks the queue closed and releases blocked consumers.
//
// Queued envelopes remain dequeueable until drained; subsequent Enqueue
// calls fail with ErrClosed. Close is idempotent.
func (q *TwoTier) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.signal()
}

// signal releases all blocked consumers. Caller holds q.mu.
func (q *TwoTier) signal() {
	close(q.wake)
	q.wake = make(chan struct{})
}
