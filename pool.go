// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import "sync/atomic"

// objectPool is a bounded, lock-free cache of up to n pre-allocated *T
// instances, used to recycle block and node allocations under contention.
// It is a performance primitive only: correctness of every queue in this
// package does not depend on the pool ever returning a cached pointer
// instead of a fresh allocation.
//
// Slots hold genuine *T values behind sync/atomic's generic Pointer, not a
// bit pattern packed into an atomix.Uintptr: every T the pool recycles
// (block[T], node[T]) is a real heap object this package allocates and
// owns for its entire lifetime, and a uintptr is opaque to the garbage
// collector — it does not keep the pointee alive, so a slot holding one
// instead of a scanned pointer would let the GC reclaim a block or node
// still reachable through the queue's own live structure.
type objectPool[T any] struct {
	slots []atomic.Pointer[T]
}

// newObjectPool creates a pool that recycles up to n allocations. n == 0 is
// a valid, always-miss configuration: get always allocates fresh and put
// always drops, a straight pass-through to the underlying allocator.
func newObjectPool[T any](n int) *objectPool[T] {
	return &objectPool[T]{slots: make([]atomic.Pointer[T], n)}
}

// get returns a recycled *T if one is parked in the pool, otherwise a
// fresh zero-valued allocation.
func (p *objectPool[T]) get() *T {
	for i := range p.slots {
		v := p.slots[i].Load()
		if v == nil {
			continue
		}
		if p.slots[i].CompareAndSwap(v, nil) {
			return v
		}
	}
	return new(T)
}

// put releases v to the pool if a slot is free, otherwise drops it for the
// garbage collector to reclaim.
func (p *objectPool[T]) put(v *T) {
	for i := range p.slots {
		if p.slots[i].Load() != nil {
			continue
		}
		if p.slots[i].CompareAndSwap(nil, v) {
			return
		}
	}
}
