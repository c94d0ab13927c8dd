// Package queue provides the two-tier priority queue used to schedule
// envelopes at an endpoint.
//
// The queue keeps two partitions: a priority partition and a normal
// partition. A priority envelope is always dequeued ahead of every
// non-priority envelope already queued; within a partition, envelopes
// order by (rank, arrival). Rank zero is the neutral default, so unranked
// traffic within a class degrades to plain FIFO.
//
// # Concurrency
//
// Any number of goroutines may enqueue concurrently; one or more consumers
// may dequeue. Dequeue blocks until an envelope arrives, the context is
// cancelled, or the queue is closed. After Close, enqueues fail with
// ErrClosed and consumers drain the remaining envelopes before receiving
// ErrClosed as end-of-stream. No envelope is lost or delivered twice.
package queue
