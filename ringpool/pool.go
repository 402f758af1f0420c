// Package ringpool hands out and reclaims indices into a backing array of
// pooled values using a bounded MPMC ring of free slot tokens, so callers
// can acquire and release buffers without allocating once the pool is
// warmed up.
package ringpool

import "github.com/lferreira-oss/tradequeue/ring"

// Pool is a fixed-capacity pool of T values, indexed by integer token.
// Acquire/Release are safe to call concurrently from many goroutines.
type Pool[T any] struct {
	tokens *ring.Ring[int]
	data   []T
}

// New creates a pool of capacity slots, all initially free. capacity must
// be a power of two and at least 2, same constraint as ring.Ring.
func New[T any](capacity uint64) *Pool[T] {
	p := &Pool[T]{
		tokens: ring.New[int](capacity),
		data:   make([]T, capacity),
	}
	for i := 0; i < int(capacity); i++ {
		if !p.tokens.TryEnqueue(i) {
			panic("ringpool: unreached, freshly constructed token ring cannot be full")
		}
	}
	return p
}

// Acquire reserves one free slot and returns its token. ok is false if
// every slot is currently checked out.
func (p *Pool[T]) Acquire() (token int, ok bool) {
	ok = p.tokens.TryDequeue(&token)
	return token, ok
}

// Get returns the value stored at token. Safe to call concurrently so long
// as token was obtained from Acquire and not yet Released by this caller.
func (p *Pool[T]) Get(token int) T {
	return p.data[token]
}

// Set stores value at token. Must only be called by the goroutine that
// currently holds token.
func (p *Pool[T]) Set(token int, value T) {
	p.data[token] = value
}

// Release returns token to the pool, making it available to a future
// Acquire. Must be called exactly once per successful Acquire.
func (p *Pool[T]) Release(token int) {
	if !p.tokens.TryEnqueue(token) {
		panic("ringpool: unreached, token ring cannot be full on release")
	}
}
