// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import (
	"runtime"

	"code.hybscloud.com/spin"
)

// spinLimit and yieldLimit bound Backoff's escalation. Below spinLimit,
// Backoff busy-loops on a CPU pause hint; between spinLimit and yieldLimit
// it yields the OS scheduler time slice instead; past yieldLimit,
// IsCompleted reports true so a caller can switch to a blocking wait.
const (
	spinLimit  = 6
	yieldLimit = 10
)

// Backoff is an exponential spin/yield controller for lock-free retry
// loops. It is not safe for concurrent use — each goroutine racing on a
// queue owns its own Backoff.
//
// Two escalation modes are exposed because they serve different callers:
// Spin is for "another goroutine is racing me, retry quickly" (a producer
// losing a CAS), Snooze is for "I'm waiting on another goroutine to finish"
// (a consumer waiting for a slot's write bit or a block's next pointer).
// Both advance step by one per call, but Spin stops at spinLimit+1 while
// Snooze keeps going to yieldLimit+1 and falls back to runtime.Gosched()
// once the spin budget is spent, since waiting for progress rather than
// retrying a race can take much longer. Only Snooze can therefore make
// IsCompleted report true.
type Backoff struct {
	step  uint32
	pause spin.Wait
}

// Reset restarts the escalation from step zero.
func (b *Backoff) Reset() {
	b.step = 0
	b.pause = spin.Wait{}
}

// Spin backs off after losing a race with another goroutine.
func (b *Backoff) Spin() {
	n := b.step
	if n > spinLimit {
		n = spinLimit
	}
	for i := uint32(0); i < uint32(1)<<n; i++ {
		b.pause.Once()
	}
	if b.step <= spinLimit {
		b.step++
	}
}

// Snooze backs off while waiting for another goroutine to make progress.
func (b *Backoff) Snooze() {
	if b.step <= spinLimit {
		for i := uint32(0); i < uint32(1)<<b.step; i++ {
			b.pause.Once()
		}
	} else {
		runtime.Gosched()
	}
	if b.step <= yieldLimit {
		b.step++
	}
}

// IsCompleted reports whether the exponential backoff has run its course
// and the caller should switch from busy waiting to a blocking wait
// (condition variable, channel, etc.) instead.
func (b *Backoff) IsCompleted() bool {
	return b.step > yieldLimit
}
