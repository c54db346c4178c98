package stream

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single callback using
// trailing-edge semantics: each Schedule call replaces any pending timer
// with a fresh one for the full window, so the callback fires once the
// triggers go quiet for a whole window, timed from the last trigger.
//
// There is at most one pending timer. The callback receives the firing
// time and runs on a timer goroutine; it is the callback's job to check
// whether emission is still appropriate at fire time.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timer  *time.Timer
	fire   func(at time.Time)
}

// NewDebouncer creates a Debouncer with the given window and callback.
func NewDebouncer(window time.Duration, fire func(at time.Time)) *Debouncer {
	return &Debouncer{
		window: window,
		fire:   fire,
	}
}

// Schedule arms the debounce timer. If a timer is already pending it is
// stopped and replaced, restarting the full window from now. N calls
// within one window produce exactly one firing.
func (d *Debouncer) Schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		d.timer = nil
		d.mu.Unlock()
		d.fire(time.Now())
	})
}

// Stop cancels any pending firing. A firing already in flight may still
// run; callers gate on their own liveness state at fire time.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a firing is currently scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
