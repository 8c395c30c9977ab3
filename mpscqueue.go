// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import "sync/atomic"

// MpscQueueOption configures an MpscQueue at construction.
type MpscQueueOption func(*mpscQueueOptions)

type mpscQueueOptions struct {
	poolSize int
}

// WithMpscNodePoolSize overrides the number of list nodes MpscQueue
// recycles. The default, zero, disables pooling.
func WithMpscNodePoolSize(n int) MpscQueueOption {
	return func(o *mpscQueueOptions) { o.poolSize = n }
}

// MpscQueue is an unbounded lock-free multi-producer single-consumer FIFO
// queue. It shares LinkQueue's enqueue protocol but drops the tagged-head
// CAS on the consumer side: with only one consumer ever calling TryDequeue,
// head needs no synchronization beyond the plain atomic load already
// required to read a node's next pointer across producer/consumer.
//
// Calling TryDequeue concurrently from more than one goroutine is a
// contract violation and races on head.
type MpscQueue[T any] struct {
	head CachePad[*node[T]]
	tail CachePad[atomic.Pointer[node[T]]]
	pool *objectPool[node[T]]
}

// NewMpscQueue creates an empty MpscQueue.
func NewMpscQueue[T any](opts ...MpscQueueOption) *MpscQueue[T] {
	o := mpscQueueOptions{poolSize: defaultNodePoolSize}
	for _, opt := range opts {
		opt(&o)
	}

	q := &MpscQueue[T]{pool: newObjectPool[node[T]](o.poolSize)}
	dummy := q.pool.get()
	dummy.next.Store(nil)
	q.head.Value = dummy
	q.tail.Value.Store(dummy)
	return q
}

// IsLockFree is a constant-true advisory.
func (q *MpscQueue[T]) IsLockFree() bool { return true }

// Enqueue adds elem to the queue and is safe to call from any number of
// goroutines concurrently.
func (q *MpscQueue[T]) Enqueue(elem *T) {
	n := newNode(q.pool, elem)
	enqueueNode(&q.tail.Value, n, q.pool)
}

// TryDequeue removes and returns the element at the head of the queue. Only
// a single goroutine may call TryDequeue (or Close) at a time.
func (q *MpscQueue[T]) TryDequeue() (T, bool) {
	ptr := q.head.Value
	next := loadNodeNext(ptr)
	if next == nil {
		var zero T
		return zero, false
	}

	v := next.value
	var zero T
	next.value = zero
	q.head.Value = next
	q.pool.put(ptr)
	return v, true
}

// Close tears down the queue from the single consumer goroutine. Producers
// racing enqueueNode against a nil tail abort and release their node.
func (q *MpscQueue[T]) Close() {
	q.tail.Value.Store(nil)
	for {
		if _, ok := q.TryDequeue(); !ok {
			break
		}
	}
	q.pool.put(q.head.Value)
}
