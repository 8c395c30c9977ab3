// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import (
	"context"
	"sync"
)

// nonBlockingQueue is the capability BlockingAdapter wraps. BlockQueue,
// LinkQueue and MpscQueue all satisfy it. Go generics have no
// specialization mechanism to detect "does Q already have a Dequeue
// method" at compile time, so that choice moves to the caller:
// NewBlockingAdapter always adds the condition-variable wait, and callers
// who want to adapt a queue that is already blocking simply don't wrap it.
type nonBlockingQueue[T any] interface {
	Enqueue(*T)
	TryDequeue() (T, bool)
	IsLockFree() bool
}

// BlockingAdapter adds a blocking Dequeue (and a context-cancelable
// DequeueContext) to any queue that exposes Enqueue/TryDequeue.
//
// The condition-variable wait checks TryDequeue itself under the mutex
// rather than checking emptiness first and only then locking, which would
// leave a lost-wakeup window between the unlocked check and acquiring the
// lock if Enqueue's broadcast landed in between.
type BlockingAdapter[T any, Q nonBlockingQueue[T]] struct {
	inner Q
	mu    sync.Mutex
	cond  *sync.Cond
}

// NewBlockingAdapter wraps inner with a blocking Dequeue.
func NewBlockingAdapter[T any, Q nonBlockingQueue[T]](inner Q) *BlockingAdapter[T, Q] {
	a := &BlockingAdapter[T, Q]{inner: inner}
	a.cond = sync.NewCond(&a.mu)
	return a
}

// Enqueue forwards to the inner queue and wakes any blocked consumers.
func (a *BlockingAdapter[T, Q]) Enqueue(elem *T) {
	a.inner.Enqueue(elem)
	a.mu.Lock()
	a.cond.Broadcast()
	a.mu.Unlock()
}

// TryDequeue forwards to the inner queue unchanged.
func (a *BlockingAdapter[T, Q]) TryDequeue() (T, bool) {
	return a.inner.TryDequeue()
}

// IsLockFree forwards to the inner queue. The adapter itself is not
// lock-free: Dequeue parks on a mutex-guarded condition variable.
func (a *BlockingAdapter[T, Q]) IsLockFree() bool {
	return a.inner.IsLockFree()
}

// Dequeue blocks until an element is available.
func (a *BlockingAdapter[T, Q]) Dequeue() T {
	a.mu.Lock()
	defer a.mu.Unlock()
	for {
		if v, ok := a.inner.TryDequeue(); ok {
			return v
		}
		a.cond.Wait()
	}
}

// DequeueContext blocks until an element is available or ctx is done, in
// which case it returns ctx.Err() (see [IsCanceled]). A process-local queue
// that can only block forever is a poor fit for request-scoped Go code, and
// context.Context is the established vocabulary for a cancelable wait
// rather than a bespoke timeout type.
//
// Before parking on the condition variable it snoozes through a Backoff
// until IsCompleted, the same escalation the queues' own internal waits
// use (those never park), so a value that arrives within a few
// microseconds is picked up without ever touching the mutex.
func (a *BlockingAdapter[T, Q]) DequeueContext(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	var bo Backoff
	for !bo.IsCompleted() {
		if v, ok := a.inner.TryDequeue(); ok {
			return v, nil
		}
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		bo.Snooze()
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			a.mu.Lock()
			a.cond.Broadcast()
			a.mu.Unlock()
		case <-stop:
		}
	}()

	a.mu.Lock()
	defer a.mu.Unlock()
	for {
		if v, ok := a.inner.TryDequeue(); ok {
			return v, nil
		}
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		a.cond.Wait()
	}
}
