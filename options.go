// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

// Builder collects pool-sizing configuration shared across BlockQueue,
// LinkQueue and MpscQueue, so a caller who wants the same recycling
// behavior across several queues doesn't repeat the functional options.
//
// This mirrors a fluent options builder rather than exposing raw functional
// options everywhere a queue is constructed, since callers configuring
// several queues at once shouldn't have to repeat the same knobs three
// different ways.
type Builder struct {
	blockPoolSize int
	nodePoolSize  int
}

// NewBuilder creates a Builder with each queue's own defaults
// (defaultBlockPoolSize, defaultNodePoolSize).
func NewBuilder() *Builder {
	return &Builder{blockPoolSize: defaultBlockPoolSize, nodePoolSize: defaultNodePoolSize}
}

// BlockPoolSize sets the number of recycled blocks BuildBlockQueue's queue
// will cache.
func (b *Builder) BlockPoolSize(n int) *Builder {
	b.blockPoolSize = n
	return b
}

// NodePoolSize sets the number of recycled list nodes BuildLinkQueue's and
// BuildMpscQueue's queues will cache.
func (b *Builder) NodePoolSize(n int) *Builder {
	b.nodePoolSize = n
	return b
}

// BuildBlockQueue creates a BlockQueue using b's block pool size.
func BuildBlockQueue[T any](b *Builder) *BlockQueue[T] {
	return NewBlockQueue[T](WithBlockPoolSize(b.blockPoolSize))
}

// BuildLinkQueue creates a LinkQueue using b's node pool size.
func BuildLinkQueue[T any](b *Builder) *LinkQueue[T] {
	return NewLinkQueue[T](WithNodePoolSize(b.nodePoolSize))
}

// BuildMpscQueue creates an MpscQueue using b's node pool size.
func BuildMpscQueue[T any](b *Builder) *MpscQueue[T] {
	return NewMpscQueue[T](WithMpscNodePoolSize(b.nodePoolSize))
}
