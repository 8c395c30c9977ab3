// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

// cacheLineSize is the platform destructive-interference size. 64 bytes
// covers every architecture Go currently targets; ARM's occasional 128-byte
// lines are a throughput concern, not a correctness one, so a single
// constant is enough here.
const cacheLineSize = 64

// CachePad wraps a value and follows it with a full cache line of padding,
// so that two CachePad fields placed back to back in a struct never share a
// line. Go generics have no compile-time expression for "round
// unsafe.Sizeof(T) up to a multiple of 64", so this settles for a fixed
// 64-byte gap after the payload rather than an exact-fit pad. Every value
// this package wraps (a positionCursor, a headTag, a node pointer) is well
// under one cache line, so the gap is always sufficient.
type CachePad[T any] struct {
	Value T
	_     [cacheLineSize]byte
}
