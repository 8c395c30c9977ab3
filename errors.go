// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import (
	"context"
	"errors"

	"code.hybscloud.com/iox"
)

// This package defines no named error kinds of its own. TryDequeue reports
// an empty queue through its boolean return, not an error — emptiness is an
// expected steady state here, not a failure. BlockQueue.TryDequeue reports
// a lost head-advance CAS the same way: it returns false immediately and
// leaves the retry decision to the caller. LinkQueue.TryDequeue instead
// retries a lost head claim internally.
//
// DequeueContext is the only operation that can fail; it returns ctx.Err()
// directly, since context.Context is already the ecosystem's vocabulary for
// a cancelled or timed-out wait rather than a package-specific error type.

// IsCanceled reports whether err is the signal DequeueContext returns when
// its context ends before an element arrives — expected control flow from
// a caller-supplied deadline or cancellation, not a failure. It reports true
// for context.Canceled and context.DeadlineExceeded (also when wrapped), and
// for any error [iox.IsSemantic] classifies as a semantic control-flow signal.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		iox.IsSemantic(err)
}
