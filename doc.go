// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package segqueue provides unbounded, lock-free FIFO queue implementations.
//
// Unlike ring-buffer queues, every queue in this package grows without a
// capacity limit: Enqueue always succeeds and never returns an error for
// backpressure. Three implementations trade allocation pattern for
// throughput:
//
//   - BlockQueue: MPMC, backed by a linked list of fixed-capacity blocks.
//     Amortizes one block allocation across 63 enqueues; the core,
//     highest-throughput implementation in the package.
//   - LinkQueue: MPMC, backed by a linked list of one node per element.
//     Simpler protocol, one allocation per enqueue.
//   - MpscQueue: multi-producer single-consumer. Shares LinkQueue's enqueue
//     path but drops the head CAS on dequeue, since only one goroutine is
//     ever allowed to call it.
//
// # Quick Start
//
//	q := segqueue.NewBlockQueue[Event]()
//
//	go func() { // producer
//	    for ev := range events {
//	        q.Enqueue(&ev)
//	    }
//	}()
//
//	go func() { // consumer
//	    backoff := segqueue.Backoff{}
//	    for {
//	        ev, ok := q.TryDequeue()
//	        if !ok {
//	            backoff.Snooze()
//	            continue
//	        }
//	        backoff.Reset()
//	        process(ev)
//	    }
//	}()
//
// Builder API mirrors the pool-sizing knobs each queue exposes:
//
//	b := segqueue.NewBuilder().BlockPoolSize(4)
//	q := segqueue.BuildBlockQueue[Event](b)
//
//	b = segqueue.NewBuilder().NodePoolSize(64)
//	q2 := segqueue.BuildLinkQueue[Event](b)
//
// # Blocking consumers
//
// Every queue exposes only TryDequeue, which never blocks. Wrap one in
// [BlockingAdapter] to get a consumer that parks instead of spinning:
//
//	inner := segqueue.NewBlockQueue[Job]()
//	q := segqueue.NewBlockingAdapter[Job](inner)
//
//	job := q.Dequeue() // blocks until an element is available
//
//	job, err := q.DequeueContext(ctx) // blocks until available or ctx is done
//	if err != nil && segqueue.IsCanceled(err) {
//	    // ctx ended before a job arrived; not a failure
//	}
//
// # Choosing a queue
//
// BlockQueue is the right default for MPMC workloads: its block-based
// layout keeps the per-element atomic-operation count low. LinkQueue trades
// that for a smaller, easier-to-audit protocol and is a reasonable choice
// when allocation-per-enqueue is not a concern. MpscQueue is the fastest
// option when the access pattern genuinely is many producers into a single
// consumer — do not call TryDequeue from more than one goroutine on it; the
// dequeue path has no synchronization to catch that mistake.
//
// # Error Handling
//
// TryDequeue reports an empty queue with its boolean return, not an error —
// an empty queue is an expected steady-state condition for these
// implementations, not a failure. BlockQueue reports a lost head-advance
// CAS to a competing goroutine the same way rather than retrying it: it is
// the caller's call whether to spin, back off, or give up. LinkQueue
// retries a lost head claim internally. Allocation failure is fatal
// per Go's own convention. [BlockingAdapter.DequeueContext] is the one
// operation that returns an error; classify it with [IsCanceled].
//
// # Object Pooling
//
// BlockQueue recycles block allocations through a small bounded pool
// (default: 2 blocks) rather than allocating one every 63 enqueues.
// LinkQueue and MpscQueue default to no node pooling (WithNodePoolSize(0)
// and WithMpscNodePoolSize(0) respectively)
// since one allocation per element is already their steady-state cost;
// raise the pool size only after profiling shows allocator pressure.
//
// # Concurrency Contract
//
// Enqueue and TryDequeue are safe to call concurrently from any number of
// goroutines on BlockQueue and LinkQueue. MpscQueue restricts TryDequeue
// (and Close) to a single goroutine at a time; Enqueue remains safe from
// any number of producers. Construction and Close are not concurrent with
// any other operation on any queue — Close assumes every producer and
// consumer has already quiesced.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channels, WaitGroup) but cannot observe happens-before relationships
// established purely through atomic acquire/release orderings on separate
// variables. The slot and cursor protocols in this package are correct
// under the memory model even though the race detector may flag false
// positives on some of the more aggressive stress tests; those are guarded
// by the RaceEnabled constant and skipped under -race.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives with
// explicit memory ordering, [code.hybscloud.com/spin] for CPU pause
// instructions, and [code.hybscloud.com/iox] inside [IsCanceled], which
// classifies the error [BlockingAdapter.DequeueContext] returns.
package segqueue
