package httpapi

import (
	"context"
	"sync"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/termprof/schema"
)

// StreamEvent is sent to SSE clients.
type StreamEvent struct {
	Seq            uint64                      `json:"seq"`
	Type           string                      `json:"type"`
	Platform       schema.PlatformKey          `json:"platform,omitempty"`
	Profiles       []schema.Profile            `json:"profiles,omitempty"`
	Contributed    []schema.ContributedProfile `json:"contributed,omitempty"`
	DefaultProfile schema.ProfileName          `json:"default_profile,omitempty"`
	Timestamp      time.Time                   `json:"timestamp"`
}

// Hub broadcasts profile change events to SSE subscribers and keeps a
// bounded history for Last-Event-ID replay.
type Hub struct {
	mu          sync.Mutex
	seq         uint64
	history     []StreamEvent
	subs        map[chan StreamEvent]struct{}
	historySize int
}

// NewHub constructs a hub with the given history size.
func NewHub(historySize int) *Hub {
	if historySize <= 0 {
		historySize = 100
	}
	return &Hub{
		subs:        make(map[chan StreamEvent]struct{}),
		historySize: historySize,
	}
}

// OnProfilesChanged implements core.EventSink.
func (h *Hub) OnProfilesChanged(event schema.ProfilesChangedEvent) {
	h.publish(StreamEvent{
		Type:           "profiles",
		Platform:       event.Platform,
		Profiles:       event.Profiles,
		Contributed:    event.Contributed,
		DefaultProfile: event.DefaultProfile,
		Timestamp:      time.Now(),
	})
}

// Subscribe registers a subscriber and returns the current sequence
// number alongside the retained history.
func (h *Hub) Subscribe() (<-chan StreamEvent, func(), uint64, []StreamEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan StreamEvent, 64)
	h.subs[ch] = struct{}{}
	history := append([]StreamEvent(nil), h.history...)
	seq := h.seq
	log := pslog.Ctx(context.Background())
	log.Info("hub subscribe", "subs", len(h.subs), "history", len(history))
	unsub := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		close(ch)
		remaining := len(h.subs)
		h.mu.Unlock()
		log.Info("hub unsubscribe", "subs", remaining)
	}
	return ch, unsub, seq, history
}

// Replay returns retained events after the provided seq.
func (h *Hub) Replay(after uint64) []StreamEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	events := make([]StreamEvent, 0, len(h.history))
	for _, event := range h.history {
		if event.Seq > after {
			events = append(events, event)
		}
	}
	return events
}

func (h *Hub) publish(event StreamEvent) {
	h.mu.Lock()
	h.seq++
	event.Seq = h.seq
	h.history = append(h.history, event)
	if len(h.history) > h.historySize {
		h.history = h.history[len(h.history)-h.historySize:]
	}
	// Sends are non-blocking, so they stay under the mutex: an
	// unsubscribe cannot close a channel mid-send.
	dropped := 0
	for sub := range h.subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	h.mu.Unlock()
	if dropped > 0 {
		pslog.Ctx(context.Background()).Warn("hub event dropped", "type", event.Type, "dropped", dropped)
	}
}
