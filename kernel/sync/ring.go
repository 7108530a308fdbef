// Package sync provides synchronization primitives that are safe to share
// between interrupt context and the main kernel loop.
package sync

import "sync/atomic"

// RingCapacity is the number of slots in a ByteRing. One slot is always kept
// free so that a full ring can be told apart from an empty one.
const RingCapacity = 256

// ByteRing is a fixed-capacity single-producer/single-consumer byte queue.
// The producer (interrupt context) only writes tail; the consumer (main
// loop) only writes head. Each slot is written before the index that
// publishes it, so no lock is required on a single CPU.
//
// The zero value is an empty ring ready for use.
type ByteRing struct {
	buf  [RingCapacity]byte
	head atomic.Uint32
	tail atomic.Uint32

	dropped atomic.Uint32
}

// Push appends b to the ring. If the ring is full, b is discarded and the
// drop counter is incremented. Push must only be called by the producer.
func (r *ByteRing) Push(b byte) bool {
	tail := r.tail.Load()
	next := (tail + 1) % RingCapacity
	if next == r.head.Load() {
		r.dropped.Add(1)
		return false
	}

	r.buf[tail] = b
	r.tail.Store(next)
	return true
}

// Pop removes and returns the oldest byte. The second return value is false
// if the ring is empty, in which case the indices are left untouched. Pop
// must only be called by the consumer.
func (r *ByteRing) Pop() (byte, bool) {
	head := r.head.Load()
	if head == r.tail.Load() {
		return 0, false
	}

	b := r.buf[head]
	r.head.Store((head + 1) % RingCapacity)
	return b, true
}

// HasData returns true if at least one byte can be popped.
func (r *ByteRing) HasData() bool {
	return r.head.Load() != r.tail.Load()
}

// Len returns the number of buffered bytes.
func (r *ByteRing) Len() int {
	return int((r.tail.Load() + RingCapacity - r.head.Load()) % RingCapacity)
}

// Dropped returns the number of bytes discarded because the ring was full.
func (r *ByteRing) Dropped() uint32 {
	return r.dropped.Load()
}

// Reset empties the ring and clears the drop counter. It must not race with
// Push or Pop; callers run it with interrupts disabled.
func (r *ByteRing) Reset() {
	r.head.Store(0)
	r.tail.Store(0)
	r.dropped.Store(0)
}
