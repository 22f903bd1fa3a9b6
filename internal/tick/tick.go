// Package tick converts an absolute millisecond counter into per-call
// elapsed deltas. Both I/O engines share this so they can run off a single
// monotonic tick source without storing absolute timestamps per channel.
package tick

// Accumulator tracks the counter value seen on the previous call.
// Not safe for concurrent use; each engine owns its own accumulator.
type Accumulator struct {
	last   uint32
	primed bool
}

// Delta returns the milliseconds elapsed since the previous call and
// records now for the next one. The subtraction is unsigned so the result
// stays correct when the counter wraps around. The first call primes the
// accumulator and returns 0.
func (a *Accumulator) Delta(now uint32) uint32 {
	if !a.primed {
		a.primed = true
		a.last = now
		return 0
	}
	d := now - a.last
	a.last = now
	return d
}
