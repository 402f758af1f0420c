package ring

import (
	"runtime"
	"sync/atomic"
)

// Ring is a fixed-capacity, lock-free MPMC queue. Capacity must be a power
// of two and at least 2; both are enforced at construction, not on the hot
// path. Neither TryEnqueue nor TryDequeue blocks, sleeps, or allocates.
type Ring[T any] struct {
	// Padding keeps the read-mostly mask/capacity/slots header off the
	// cache line shared by the hot cursors below.
	_        [64]byte
	mask     uint64
	capacity uint64
	slots    []slot[T]
	_        [64]byte
	tail     atomic.Uint64 // next ticket a producer will attempt to claim
	_        [64]byte
	head     atomic.Uint64 // next ticket a consumer will attempt to claim
	_        [64]byte
}

// goschedEvery bounds how often a spinning goroutine yields to the Go
// scheduler while retrying a CAS, so retries don't starve other goroutines
// on a GOMAXPROCS=1 build without paying runtime.Gosched's cost every spin.
const goschedEvery = 64

// New constructs a ring with the given capacity. It panics if capacity is
// zero, not a power of two, or less than 2 — all of which are programmer
// errors detectable before the first operation, not runtime conditions.
func New[T any](capacity uint64) *Ring[T] {
	if capacity < 2 || (capacity&(capacity-1)) != 0 {
		panic("ring: capacity must be a power of two and at least 2")
	}

	slots := make([]slot[T], capacity)
	for i := uint64(0); i < capacity; i++ {
		slots[i].seq.Store(i)
	}

	return &Ring[T]{
		mask:     capacity - 1,
		capacity: capacity,
		slots:    slots,
	}
}

// Capacity returns the fixed capacity the ring was constructed with. It is
// not a length query — the ring deliberately has none, since a fill level
// observed from outside would be stale the instant it is returned.
func (r *Ring[T]) Capacity() uint64 {
	return r.capacity
}

// TryEnqueue attempts to publish value into the ring. It returns false if
// the ring was observed full during the attempt; the caller's value is
// unconsumed in that case and the call may be retried immediately.
func (r *Ring[T]) TryEnqueue(value T) bool {
	var spins uint32
	pos := r.tail.Load()

	for {
		s := &r.slots[pos&r.mask]

		seq := s.seq.Load()
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			// Slot is at the correct lap and free. Win the ticket.
			if r.tail.CompareAndSwap(pos, pos+1) {
				s.val = value
				s.seq.Store(pos + 1)
				return true
			}
			pos = r.tail.Load()
			spins++
		case diff < 0:
			// A prior lap's element still occupies this slot.
			return false
		default:
			// Another producer has already advanced past pos.
			pos = r.tail.Load()
			spins++
		}

		if spins%goschedEvery == 0 {
			runtime.Gosched()
		}
	}
}

// TryDequeue attempts to extract one value from the ring. It returns false
// if the ring was observed empty during the attempt; *out is left
// unmodified in that case.
func (r *Ring[T]) TryDequeue(out *T) bool {
	var spins uint32
	pos := r.head.Load()

	for {
		s := &r.slots[pos&r.mask]

		seq := s.seq.Load()
		diff := int64(seq) - int64(pos+1)

		switch {
		case diff == 0:
			if r.head.CompareAndSwap(pos, pos+1) {
				*out = s.val
				var zero T
				s.val = zero
				s.seq.Store(pos + r.capacity)
				return true
			}
			pos = r.head.Load()
			spins++
		case diff < 0:
			// No producer has yet published for this ticket.
			return false
		default:
			// Another consumer has already advanced past pos.
			pos = r.head.Load()
			spins++
		}

		if spins%goschedEvery == 0 {
			runtime.Gosched()
		}
	}
}
