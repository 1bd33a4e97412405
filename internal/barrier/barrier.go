// Package barrier provides a one-time-opening readiness gate.
package barrier

import (
	"sync"
	"time"
)

// Gate releases all waiters once opened and never closes again. An
// optional timeout opens the gate even if nobody calls Open.
type Gate struct {
	once  sync.Once
	ch    chan struct{}
	timer *time.Timer
}

// New constructs a gate. A timeout of zero disables the deadline.
func New(timeout time.Duration) *Gate {
	g := &Gate{ch: make(chan struct{})}
	if timeout > 0 {
		g.timer = time.AfterFunc(timeout, g.Open)
	}
	return g
}

// Open releases all current and future waiters. Safe to call any
// number of times from any goroutine.
func (g *Gate) Open() {
	g.once.Do(func() {
		if g.timer != nil {
			g.timer.Stop()
		}
		close(g.ch)
	})
}

// Opened reports whether the gate has opened.
func (g *Gate) Opened() bool {
	select {
	case <-g.ch:
		return true
	default:
		return false
	}
}

// Wait returns a channel closed when the gate opens.
func (g *Gate) Wait() <-chan struct{} {
	return g.ch
}
