// Package clock abstracts timers so the router's loading delay and the
// search debounce can be driven deterministically in tests.
package clock

import (
	"sync/atomic"
	"time"
)

// Timer is a pending callback scheduled by a Clock.
type Timer interface {
	// Stop prevents the callback from firing. Returns false if the
	// callback already fired or the timer was already stopped.
	Stop() bool
}

// Clock schedules callbacks and reports the current time.
//
// Callbacks run on a goroutine owned by the Clock implementation, never
// on the caller's. Components that own single-goroutine state must hand
// the callback's work back to their own loop.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// System is the wall clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Sequence is a monotonic counter used to stamp dispatch generations.
//
// Every call to Next returns a unique, strictly increasing value. Safe for
// concurrent use.
type Sequence struct {
	n atomic.Int64
}

// Next increments the sequence and returns the new value. The first call
// returns 1.
func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}

// Current returns the last value handed out, or 0.
func (s *Sequence) Current() int64 {
	return s.n.Load()
}
