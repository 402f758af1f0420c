package ring

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

// S1: enqueue 42, enqueue 7, dequeue x3.
func TestRingBasicSequence(t *testing.T) {
	r := New[int](8)

	if !r.TryEnqueue(42) {
		t.Fatal("enqueue 42 should succeed")
	}
	if !r.TryEnqueue(7) {
		t.Fatal("enqueue 7 should succeed")
	}

	var v int
	if !r.TryDequeue(&v) || v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
	if !r.TryDequeue(&v) || v != 7 {
		t.Fatalf("expected 7, got %d", v)
	}
	if r.TryDequeue(&v) {
		t.Fatal("expected empty queue")
	}
}

// S2: capacity 4, fifth enqueue fails.
func TestRingCapacityOverflow(t *testing.T) {
	r := New[int](4)
	for i := 0; i < 4; i++ {
		if !r.TryEnqueue(i) {
			t.Fatalf("enqueue %d should succeed (capacity not yet reached)", i)
		}
	}
	if r.TryEnqueue(5) {
		t.Fatal("fifth enqueue should observe full")
	}
}

// S3: interleaved enqueue/dequeue preserves FIFO across many laps.
func TestRingWrapAroundFIFO(t *testing.T) {
	r := New[int](4)
	for i := 0; i < 11; i++ {
		if !r.TryEnqueue(i) {
			t.Fatalf("enqueue %d should succeed", i)
		}
		var v int
		if !r.TryDequeue(&v) {
			t.Fatalf("dequeue after enqueue %d should succeed", i)
		}
		if v != i {
			t.Fatalf("expected %d, got %d", i, v)
		}
	}
}

// Minimum capacity of 2 behaves per spec boundary behaviours.
func TestRingMinimumCapacity(t *testing.T) {
	r := New[int](2)
	if !r.TryEnqueue(1) || !r.TryEnqueue(2) {
		t.Fatal("first two enqueues on a capacity-2 ring must succeed")
	}
	if r.TryEnqueue(3) {
		t.Fatal("third enqueue on a capacity-2 ring must observe full")
	}
	var v int
	if !r.TryDequeue(&v) || v != 1 {
		t.Fatalf("expected 1, got %d", v)
	}
	if !r.TryEnqueue(3) {
		t.Fatal("enqueue after a dequeue should succeed")
	}
}

func TestRingRejectsBadCapacity(t *testing.T) {
	for _, c := range []uint64{0, 1, 6} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("capacity %d should panic", c)
				}
			}()
			New[int](c)
		}()
	}
}

func TestRingFalseReturnLeavesOutUnmodified(t *testing.T) {
	r := New[int](2)
	out := 99
	if r.TryDequeue(&out) {
		t.Fatal("empty ring should not dequeue")
	}
	if out != 99 {
		t.Fatalf("false TryDequeue must not modify out, got %d", out)
	}
}

// S4-style: many producers, many consumers, exact multiset.
func TestRingConcurrentNoLossNoDuplication(t *testing.T) {
	const (
		capacity    = 1 << 7
		producers   = 40
		perProducer = 2000
		total       = producers * perProducer
		consumers   = 4
	)

	r := New[uint64](capacity)
	seen := make([]int32, total)

	var consumed atomic.Uint64
	var done atomic.Bool

	var cwg sync.WaitGroup
	cwg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			defer cwg.Done()
			for {
				var v uint64
				if r.TryDequeue(&v) {
					atomic.AddInt32(&seen[v], 1)
					if consumed.Add(1) == total {
						done.Store(true)
					}
					continue
				}
				if done.Load() {
					return
				}
				runtime.Gosched()
			}
		}()
	}

	var pwg sync.WaitGroup
	pwg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(pid int) {
			defer pwg.Done()
			for i := 0; i < perProducer; i++ {
				v := uint64(pid*perProducer + i)
				for !r.TryEnqueue(v) {
					runtime.Gosched()
				}
			}
		}(p)
	}

	pwg.Wait()
	cwg.Wait()

	for i := 0; i < total; i++ {
		if seen[i] != 1 {
			t.Fatalf("value %d seen %d times (expected exactly 1)", i, seen[i])
		}
	}
}

// S5: single producer, single consumer preserves strict FIFO order.
func TestRingSPSCOrderPreserved(t *testing.T) {
	const (
		capacity = 1 << 10
		n        = 200_000
	)
	r := New[uint64](capacity)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := uint64(0); i < n; i++ {
			var v uint64
			for !r.TryDequeue(&v) {
				runtime.Gosched()
			}
			if v != i {
				t.Errorf("expected %d, got %d", i, v)
				return
			}
		}
	}()

	for i := uint64(0); i < n; i++ {
		for !r.TryEnqueue(i) {
			runtime.Gosched()
		}
	}
	<-done
}

func BenchmarkRing_1P1C(b *testing.B) {
	const capacity = 1 << 16
	r := New[int](capacity)
	done := make(chan struct{})

	go func() {
		for i := 0; i < b.N; i++ {
			var v int
			for !r.TryDequeue(&v) {
				runtime.Gosched()
			}
		}
		close(done)
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for !r.TryEnqueue(i) {
			runtime.Gosched()
		}
	}
	<-done
	b.StopTimer()
}
