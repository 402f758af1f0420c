// Package backoff implements the spin/yield/sleep retry policy spec.md
// pushes to callers of ring.Ring: the core never blocks, so anything that
// needs to wait for space or data supplies its own policy. This one is
// shared by the ingester and the drainer.
package backoff

import (
	"runtime"
	"time"

	"github.com/valyala/fastrand"
)

// Policy tracks consecutive failed attempts and escalates from a plain
// scheduler yield to a jittered sleep, mirroring the original demo's
// thread-yield-then-~50µs-sleep behaviour.
type Policy struct {
	attempts uint32
}

// yieldThreshold is how many consecutive Gosched-only retries happen
// before escalating to a timed sleep.
const yieldThreshold = 64

// baseSleep is the original demo's reference sleep duration; jitter is
// applied around it so many contending goroutines don't wake in lockstep.
const baseSleep = 50 * time.Microsecond

// Wait should be called after an observed-full or observed-empty result.
// It blocks the calling goroutine briefly before the caller retries.
func (p *Policy) Wait() {
	p.attempts++
	if p.attempts <= yieldThreshold {
		runtime.Gosched()
		return
	}

	jitter := time.Duration(fastrand.Uint32n(uint32(baseSleep)))
	time.Sleep(baseSleep/2 + jitter)
}

// Reset clears the escalation state after a successful attempt.
func (p *Policy) Reset() {
	p.attempts = 0
}
