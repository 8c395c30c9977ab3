// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// Cursor arithmetic constants shared by BlockQueue. lap is the index
// granularity of a block; blockCap is the number of values a block can
// hold (one slot short of lap — the reserved offset triggers a block
// switch); shift is how many low bits of a cursor index are reserved for
// metadata; hasNext is the metadata bit meaning "the current block already
// has a published successor".
const (
	lap      = 64
	blockCap = lap - 1
	shift    = 1
	hasNext  = 1
)

// Slot state bits. Write is set once a producer has stored its payload,
// Read once a consumer has extracted it, Destroy once the slot is
// participating in a pending block-reclamation. All three are independent
// so Destroy can be observed regardless of whether Read has happened yet —
// an enum would lose that.
const (
	stateWrite   uint64 = 1 << 0
	stateRead    uint64 = 1 << 1
	stateDestroy uint64 = 1 << 2
)

// slot is one element cell inside a block. State is kept in an
// atomix.Uint64 rather than a narrower word — atomix exposes no atomic
// 8- or 32-bit type in this ecosystem (only Bool, Int32, Int64, Uint64,
// Uintptr, Uint128), and a 3-bit field fits comfortably regardless.
type slot[T any] struct {
	value T
	state atomix.Uint64
}

// fetchOrState atomically ORs bits into s.state and returns the value the
// state held immediately before the OR, with acquire-release ordering.
// atomix has no native fetch-or, so this composes it from load+CAS in a
// loop that retries until the CAS succeeds or the bits are already set.
func fetchOrState(state *atomix.Uint64, bits uint64) uint64 {
	for {
		old := state.LoadAcquire()
		if old&bits == bits {
			return old
		}
		if state.CompareAndSwapAcqRel(old, old|bits) {
			return old
		}
	}
}

// waitWrite spins until the producer has published a value into the slot.
func (s *slot[T]) waitWrite() {
	var bo Backoff
	for s.state.LoadAcquire()&stateWrite == 0 {
		bo.Snooze()
	}
}

// block is a fixed-capacity array of slots linked forward into a
// singly-linked chain. It is created empty, linked exactly once as the
// successor of another block, and destroyed once every slot it holds has
// been read and the queue has advanced past it.
//
// next is a genuine *block[T] behind sync/atomic's generic Pointer rather
// than a bit pattern in an atomix.Uintptr: BlockQueue allocates and owns
// every block end to end (through objectPool), and a uintptr is opaque to
// the garbage collector — it would not keep a linked block alive, letting
// a GC cycle between Enqueue calls reclaim a block still reachable through
// the chain and hand its memory to an unrelated allocation.
type block[T any] struct {
	slots [blockCap]slot[T]
	next  atomic.Pointer[block[T]]
}

// reset clears a block's linkage and every slot's state so it is safe to
// reuse as a fresh successor block after coming back out of the pool. A
// pool hit hands back a block whose slots still carry Write/Read/Destroy
// bits from its previous life; without this, a recycled block would look
// partially or fully drained before a single value had been written to it.
func (b *block[T]) reset() {
	b.next.Store(nil)
	for i := range b.slots {
		b.slots[i].state.StoreRelaxed(0)
	}
}

// loadNext returns the successor block, or nil if none has been published
// yet.
func (b *block[T]) loadNext() *block[T] {
	return b.next.Load()
}

// storeNext publishes n as this block's successor.
func (b *block[T]) storeNext(n *block[T]) {
	b.next.Store(n)
}

// waitNext spins until a successor block has been published, then returns
// it.
func (b *block[T]) waitNext() *block[T] {
	var bo Backoff
	for {
		if n := b.loadNext(); n != nil {
			return n
		}
		bo.Snooze()
	}
}

// destroyBlock walks slots[count-1..0] setting Destroy on every slot that
// has not yet been read. If it finds a slot where Read was still clear
// after setting Destroy, some consumer is still using that slot (or an
// earlier one) and reclamation is abandoned — that consumer will observe
// Destroy already set when it finishes and will finish reclamation itself.
// If every slot has already been read, the block is returned to the pool.
//
// The linear walk guarantees exactly one participant ends up freeing the
// block, whichever of "the consumer reading the last slot" or "a later
// reader that observes Destroy" runs last.
func destroyBlock[T any](b *block[T], count int, pool *objectPool[block[T]]) {
	for i := count - 1; i >= 0; i-- {
		s := &b.slots[i]
		if s.state.LoadAcquire()&stateRead != 0 {
			continue
		}
		if fetchOrState(&s.state, stateDestroy)&stateRead == 0 {
			return
		}
	}
	pool.put(b)
}

// positionCursor is the atomic (index, block) pair published as a queue's
// head or tail. index is a virtual slot counter shifted left by shift,
// with the low shift bits reserved for metadata (currently just hasNext).
// blk is a genuine *block[T] for the same reason block.next is: the pool
// recycles blocks by address, and only a scanned pointer field keeps a
// live block reachable to the garbage collector between accesses.
type positionCursor[T any] struct {
	index atomix.Uint64
	blk   atomic.Pointer[block[T]]
}

func (c *positionCursor[T]) loadBlock() *block[T] {
	return c.blk.Load()
}

func (c *positionCursor[T]) storeBlock(b *block[T]) {
	c.blk.Store(b)
}

// offsetOf decodes the slot offset within a block from a raw cursor index.
func offsetOf(index uint64) uint64 {
	return (index >> shift) % lap
}

// positionOf decodes the global logical position from a raw cursor index.
func positionOf(index uint64) uint64 {
	return index >> shift
}
