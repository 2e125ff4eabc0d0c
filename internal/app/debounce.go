package app

import (
	"sync"
	"time"

	"github.com/roach88/communityvoice/internal/clock"
)

// DefaultSearchDebounce is the quiet period after the last keystroke
// before a search re-renders.
const DefaultSearchDebounce = 300 * time.Millisecond

// Debouncer coalesces bursts of calls: every Trigger cancels the pending
// one, so only the last function scheduled ever fires.
//
// Thread-safety: safe for concurrent use. Functions run on the clock's
// goroutine; hand work back to the router loop with Post.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration

	mu      sync.Mutex
	pending clock.Timer
	seq     uint64
}

// NewDebouncer creates a Debouncer with the given quiet period.
func NewDebouncer(c clock.Clock, delay time.Duration) *Debouncer {
	return &Debouncer{clock: c, delay: delay}
}

// Trigger schedules fn after the quiet period, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A Trigger racing with this callback wins.
		if seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.pending = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending call, if any. Returns true if one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == nil {
		return false
	}
	d.pending.Stop()
	d.pending = nil
	d.seq++
	return true
}
