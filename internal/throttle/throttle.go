// Package throttle provides a trailing-edge throttle: at most one
// cycle starts per window, with at most one retained trailing intent.
package throttle

import (
	"sync"
	"time"
)

// Trailing rate-limits a recurring task. Calls arriving while a cycle
// is running, or while the window from the last start is still open,
// collapse into a single trailing run fired at the window edge.
type Trailing struct {
	window time.Duration
	fn     func()

	mu      sync.Mutex
	running bool
	pending bool
	last    time.Time
	timer   *time.Timer
	stopped bool
}

// New constructs a trailing-edge throttle around fn. fn is invoked for
// trailing runs; callers that win Enter run their own work instead.
func New(window time.Duration, fn func()) *Trailing {
	if fn == nil {
		fn = func() {}
	}
	return &Trailing{window: window, fn: fn}
}

// Enter attempts to start a cycle now. When it returns true the caller
// owns the cycle and must call done when finished. When it returns
// false the call has been coalesced into an in-flight or trailing run
// and done is nil.
func (t *Trailing) Enter() (run bool, done func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false, nil
	}
	if t.running {
		t.pending = true
		return false, nil
	}
	if wait := t.window - time.Since(t.last); wait > 0 {
		t.pending = true
		t.armLocked(wait)
		return false, nil
	}
	t.running = true
	t.last = time.Now()
	return true, t.leave
}

// Trigger requests a cycle without waiting for it. A winning call runs
// fn on a new goroutine; a losing call is coalesced.
func (t *Trailing) Trigger() {
	run, done := t.Enter()
	if !run {
		return
	}
	go func() {
		defer done()
		t.fn()
	}()
}

// Stop cancels any armed trailing run. Cycles already running finish.
func (t *Trailing) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.pending = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Trailing) leave() {
	t.mu.Lock()
	t.running = false
	if t.pending && !t.stopped {
		wait := t.window - time.Since(t.last)
		if wait < 0 {
			wait = 0
		}
		t.armLocked(wait)
	}
	t.mu.Unlock()
}

func (t *Trailing) armLocked(wait time.Duration) {
	if t.timer != nil {
		return
	}
	t.timer = time.AfterFunc(wait, t.fire)
}

func (t *Trailing) fire() {
	t.mu.Lock()
	t.timer = nil
	if t.stopped || t.running || !t.pending {
		// A running cycle re-arms the timer on leave if needed.
		t.mu.Unlock()
		return
	}
	t.pending = false
	t.running = true
	t.last = time.Now()
	t.mu.Unlock()
	t.fn()
	t.leave()
}
