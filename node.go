// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import "sync/atomic"

// node is one element cell in the singly-linked list shared by LinkQueue and
// MpscQueue. Both queues publish new nodes the same way (CAS-swap into tail,
// then link the previous tail's next); they differ only in how a consumer
// advances head.
//
// next is a genuine *node[T] behind sync/atomic's generic Pointer rather
// than a bit pattern in an atomix.Uintptr: this package allocates and owns
// every node end to end (through objectPool), so the field has to stay a
// type the garbage collector actually traces, or a GC cycle between the
// producer publishing next and a consumer following it is free to reclaim
// the node out from under the read.
type node[T any] struct {
	next  atomic.Pointer[node[T]]
	value T
}

func newNode[T any](pool *objectPool[node[T]], elem *T) *node[T] {
	n := pool.get()
	n.value = *elem
	n.next.Store(nil)
	return n
}

func loadNodeNext[T any](n *node[T]) *node[T] {
	return n.next.Load()
}

// enqueueNode CAS-swaps n into *tail and links the previous tail node to it.
// tail == nil means the queue is torn down; the node is returned to pool and
// enqueueNode returns without publishing anything.
func enqueueNode[T any](tail *atomic.Pointer[node[T]], n *node[T], pool *objectPool[node[T]]) {
	var bo Backoff
	for {
		t := tail.Load()
		if t == nil {
			pool.put(n)
			return
		}
		if tail.CompareAndSwap(t, n) {
			t.next.Store(n)
			return
		}
		bo.Spin()
	}
}
