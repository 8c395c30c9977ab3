// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

// defaultBlockPoolSize is the number of recycled blocks BlockQueue caches
// by default.
const defaultBlockPoolSize = 2

// BlockQueueOption configures a BlockQueue at construction.
type BlockQueueOption func(*blockQueueOptions)

type blockQueueOptions struct {
	poolSize int
}

// WithBlockPoolSize overrides the number of blocks BlockQueue recycles
// instead of releasing to the garbage collector.
func WithBlockPoolSize(n int) BlockQueueOption {
	return func(o *blockQueueOptions) { o.poolSize = n }
}

// BlockQueue is an unbounded, lock-free multi-producer multi-consumer FIFO
// queue backed by a linked list of fixed-capacity blocks (a "segmented
// array"). It is the core algorithm of this package: a two-stage slot
// handshake (Write, then Read, with an independent Destroy bit for
// reclamation), cache-padded head/tail cursors, and a per-goroutine
// exponential backoff on contention.
//
// The block-linking protocol follows crossbeam-deque's Injector design.
type BlockQueue[T any] struct {
	head CachePad[positionCursor[T]]
	tail CachePad[positionCursor[T]]
	pool *objectPool[block[T]]
}

// NewBlockQueue creates an empty BlockQueue.
func NewBlockQueue[T any](opts ...BlockQueueOption) *BlockQueue[T] {
	o := blockQueueOptions{poolSize: defaultBlockPoolSize}
	for _, opt := range opts {
		opt(&o)
	}

	q := &BlockQueue[T]{pool: newObjectPool[block[T]](o.poolSize)}
	b := q.pool.get()
	q.head.Value.storeBlock(b)
	q.tail.Value.storeBlock(b)
	return q
}

// IsLockFree is a constant-true advisory: every operation in BlockQueue is
// built from CAS loops and atomic loads/stores, never a mutex.
func (q *BlockQueue[T]) IsLockFree() bool { return true }

// Enqueue adds elem to the queue. It always succeeds — BlockQueue is
// unbounded and enqueue never blocks except for a short spin against a
// concurrent producer that is mid-install of a new block.
func (q *BlockQueue[T]) Enqueue(elem *T) {
	var bo Backoff
	var next *block[T] // speculative next-block allocation, held across CAS attempts

	tail := &q.tail.Value
	for {
		index := tail.index.LoadAcquire()
		blk := tail.loadBlock()
		off := offsetOf(index)

		if off == blockCap {
			// Another producer is mid-install of the successor block.
			bo.Snooze()
			continue
		}

		if off == blockCap-1 && next == nil {
			// Pre-allocate the successor now, while racing, so the window
			// during which other producers see offset == blockCap and
			// must snooze is as short as possible. If this producer loses
			// the tail CAS below, the speculative block is kept for the
			// next iteration; it is either consumed by a winning crossing
			// or returned to the pool below before Enqueue returns.
			next = q.pool.get()
			next.reset()
		}

		newIndex := index + (1 << shift)
		if !tail.index.CompareAndSwapAcqRel(index, newIndex) {
			bo.Spin()
			continue
		}

		if off == blockCap-1 {
			nextIndex := newIndex + (1 << shift)
			tail.storeBlock(next)
			tail.index.StoreRelease(nextIndex)
			blk.storeNext(next)
			next = nil
		}

		blk.slots[off].value = *elem
		fetchOrState(&blk.slots[off].state, stateWrite)

		if next != nil {
			// This producer pre-allocated a successor speculatively (its
			// tail load once showed offset == blockCap-1) but a different
			// producer ended up owning the actual crossing. Return the
			// unused reservation instead of leaking it out of the pool.
			q.pool.put(next)
		}
		return
	}
}

// TryDequeue removes and returns the element at the head of the queue.
// The second return value is false if the queue was empty, and also if this
// call lost the head-advance CAS to a concurrent consumer; it does not retry
// that CAS itself.
func (q *BlockQueue[T]) TryDequeue() (T, bool) {
	var bo Backoff
	head := &q.head.Value
	tail := &q.tail.Value

	for {
		index := head.index.LoadAcquire()
		blk := head.loadBlock()
		off := offsetOf(index)

		for off == blockCap {
			bo.Snooze()
			index = head.index.LoadAcquire()
			blk = head.loadBlock()
			off = offsetOf(index)
		}

		newIndex := index + (1 << shift)

		if index&hasNext == 0 {
			// A StoreLoad fence between the head read above and the tail
			// read below: head and tail are independent atomics, so an
			// ordinary acquire load on each only orders accesses dependent
			// on that one variable, never a total order across both. Without
			// a fence, this consumer could observe a stale tail and declare
			// the queue empty even though the producer's advance is already
			// visible through the (acquire-ordered) head read it just did —
			// exactly the reordering crossbeam-deque's Injector::pop guards
			// against with a sequentially-consistent fence before this same
			// comparison. atomix has no standalone fence primitive; a CAS
			// that leaves the value unchanged forces the same full
			// read-modify-write barrier a fence would, on every
			// architecture Go targets. If it fails, head has already moved
			// on and this snapshot is stale, so retry from the top instead
			// of trusting a tail read paired with a head we no longer hold.
			if !head.index.CompareAndSwapAcqRel(index, index) {
				bo.Spin()
				continue
			}
			tailIndex := tail.index.LoadRelaxed()
			if positionOf(index) == positionOf(tailIndex) {
				var zero T
				return zero, false
			}
			if positionOf(index)/lap != positionOf(tailIndex)/lap {
				newIndex |= hasNext
			}
		}

		if !head.index.CompareAndSwapAcqRel(index, newIndex) {
			var zero T
			return zero, false
		}

		if off+1 == blockCap {
			succ := blk.waitNext()
			nextIndex := (newIndex &^ hasNext) + (1 << shift)
			if succ.loadNext() != nil {
				nextIndex |= hasNext
			}
			head.storeBlock(succ)
			head.index.StoreRelease(nextIndex)
		}

		s := &blk.slots[off]
		s.waitWrite()
		v := s.value
		var zero T
		s.value = zero

		readOld := fetchOrState(&s.state, stateRead)

		if off+1 == blockCap || readOld&stateDestroy != 0 {
			destroyBlock(blk, int(off), q.pool)
		}

		return v, true
	}
}

// Close drains and releases all storage. Construction and destruction are
// not concurrent with any other operation — Close assumes every producer
// and consumer has already quiesced.
func (q *BlockQueue[T]) Close() {
	for {
		if _, ok := q.TryDequeue(); !ok {
			break
		}
	}
	q.pool.put(q.head.Value.loadBlock())
}
