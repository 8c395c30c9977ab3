// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import "sync/atomic"

const defaultNodePoolSize = 0

// LinkQueueOption configures a LinkQueue at construction.
type LinkQueueOption func(*linkQueueOptions)

type linkQueueOptions struct {
	poolSize int
}

// WithNodePoolSize overrides the number of list nodes LinkQueue recycles.
// The default, zero, disables pooling entirely: every enqueue allocates a
// fresh node and every dequeued node is dropped for the garbage collector.
func WithNodePoolSize(n int) LinkQueueOption {
	return func(o *linkQueueOptions) { o.poolSize = n }
}

// headState is the boxed (pointer, version) pair a headTag publishes.
// Instances are immutable once stored — claim and release always swap in a
// freshly allocated headState rather than mutating one in place, so a
// pointer to a live headState is a stable snapshot for as long as anyone
// holds it.
type headState[T any] struct {
	ptr     *node[T]
	version uint64
}

// headTag is the tagged (pointer, version) head cursor. The version half
// defeats ABA on the ptr half: a consumer claims head by bumping the version
// before it ever dereferences ptr->next, so two consumers racing on the same
// ptr cannot both believe they own it, and a pointer being recycled and
// handed back out by the pool can never carry a version another consumer is
// still waiting to observe.
//
// The pair is boxed behind a genuine sync/atomic.Pointer[headState[T]]
// rather than packed into an atomix.Uint128, the way a sequence-plus-value
// slot elsewhere in this package would: ptr has to stay a type the garbage
// collector actually traces; this package allocates and owns every node,
// so a live head pointer folded into a uintptr-sized half of a 128-bit word
// would be invisible to the collector and could be reclaimed out from under
// a concurrent reader. Go has no atomic compound CAS over a real pointer
// plus a counter, so the pair is boxed into an immutable headState and the
// cursor CASes the box's address instead of the pair's bits directly.
type headTag[T any] struct {
	state atomic.Pointer[headState[T]]
}

func (h *headTag[T]) init(n *node[T]) {
	h.state.Store(&headState[T]{ptr: n})
}

func (h *headTag[T]) load() (ptr *node[T], version uint64) {
	s := h.state.Load()
	return s.ptr, s.version
}

// claim bumps version on ptr, succeeding only if head is still exactly the
// (ptr, version) pair the caller last observed via load.
func (h *headTag[T]) claim(ptr *node[T], version uint64) bool {
	cur := h.state.Load()
	if cur.ptr != ptr || cur.version != version {
		return false
	}
	return h.state.CompareAndSwap(cur, &headState[T]{ptr: ptr, version: version + 1})
}

func (h *headTag[T]) release(ptr *node[T]) {
	h.state.Store(&headState[T]{ptr: ptr})
}

// LinkQueue is an unbounded, lock-free multi-producer multi-consumer FIFO
// queue backed by a singly-linked list of one node per element. It trades
// BlockQueue's throughput for a simpler protocol: one allocation per
// enqueue instead of amortizing across a block.
//
// This is the simple CAS-on-tail linked-list design rather than a
// stash-list variant that buffers not-yet-linked nodes separately: the
// extra bookkeeping only pays for itself under producer counts and
// contention levels this package isn't targeting.
type LinkQueue[T any] struct {
	head CachePad[headTag[T]]
	tail CachePad[atomic.Pointer[node[T]]]
	pool *objectPool[node[T]]
}

// NewLinkQueue creates an empty LinkQueue.
func NewLinkQueue[T any](opts ...LinkQueueOption) *LinkQueue[T] {
	o := linkQueueOptions{poolSize: defaultNodePoolSize}
	for _, opt := range opts {
		opt(&o)
	}

	q := &LinkQueue[T]{pool: newObjectPool[node[T]](o.poolSize)}
	dummy := q.pool.get()
	dummy.next.Store(nil)
	q.head.Value.init(dummy)
	q.tail.Value.Store(dummy)
	return q
}

// IsLockFree is a constant-true advisory.
func (q *LinkQueue[T]) IsLockFree() bool { return true }

// Enqueue adds elem to the queue. It always succeeds unless the queue is
// concurrently being torn down by Close.
func (q *LinkQueue[T]) Enqueue(elem *T) {
	n := newNode(q.pool, elem)
	enqueueNode(&q.tail.Value, n, q.pool)
}

// TryDequeue removes and returns the element at the head of the queue.
// The second return value is false if the queue was empty.
func (q *LinkQueue[T]) TryDequeue() (T, bool) {
	var bo Backoff
	for {
		ptr, version := q.head.Value.load()
		if version != 0 {
			// Another consumer holds the claim on ptr; wait for its release.
			bo.Snooze()
			continue
		}
		if !q.head.Value.claim(ptr, version) {
			bo.Spin()
			continue
		}

		next := loadNodeNext(ptr)
		if next == nil {
			q.head.Value.release(ptr)
			var zero T
			return zero, false
		}

		v := next.value
		var zero T
		next.value = zero
		q.head.Value.release(next)
		q.pool.put(ptr)
		return v, true
	}
}

// Close tears down the queue: producers racing enqueueNode against a nil
// tail abort and release their node instead of publishing it. Construction
// and destruction are not concurrent with any other operation.
func (q *LinkQueue[T]) Close() {
	q.tail.Value.Store(nil)
	for {
		if _, ok := q.TryDequeue(); !ok {
			break
		}
	}
	ptr, _ := q.head.Value.load()
	q.pool.put(ptr)
}
