// Package eventbus fans profile-change events out to subscribers.
package eventbus

import (
	"context"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/termprof/schema"
)

// Bus delivers ProfilesChangedEvent to all subscribers. Slow
// subscribers drop events rather than block the service.
type Bus struct {
	mu    sync.Mutex
	subs  map[chan schema.ProfilesChangedEvent]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[chan schema.ProfilesChangedEvent]struct{}),
		log:   logger,
		depth: 64,
	}
}

// Subscribe registers a subscriber and returns a channel + cancel.
func (b *Bus) Subscribe() (<-chan schema.ProfilesChangedEvent, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan schema.ProfilesChangedEvent, b.depth)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()
	b.log.Debug("eventbus subscribe", "subs", count)
	return ch, func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
		b.log.Debug("eventbus unsubscribe")
	}
}

// OnProfilesChanged implements core.EventSink.
func (b *Bus) OnProfilesChanged(event schema.ProfilesChangedEvent) {
	if b == nil {
		return
	}
	// Sends are non-blocking, so they stay under the mutex: a cancel
	// cannot close a channel mid-send.
	b.mu.Lock()
	dropped := 0
	for sub := range b.subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	b.mu.Unlock()
	if dropped > 0 {
		b.log.Trace("eventbus dropped", "count", dropped)
	}
}
