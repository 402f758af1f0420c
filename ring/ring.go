// Package ring implements a bounded, lock-free, multi-producer
// multi-consumer queue around a fixed-capacity ring buffer with per-slot
// sequence numbers.
//
// Original algorithm by Dmitry Vyukov:
// https://www.1024cores.net/home/lock-free-algorithms/queues/bounded-mpmc-queue
package ring

import "sync/atomic"

// slot holds one element payload together with the sequence counter that
// decides whether a producer or a consumer currently owns it.
type slot[T any] struct {
	seq atomic.Uint64
	val T
}
