package termprof

import (
	"pkt.systems/termprof/core"
	"pkt.systems/termprof/schema"
)

type eventFanout struct {
	sinks []core.EventSink
}

func (f eventFanout) OnProfilesChanged(event schema.ProfilesChangedEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnProfilesChanged(event)
	}
}
