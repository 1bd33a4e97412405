// Package contrib holds the in-memory registry of extension-declared
// terminal profiles.
package contrib

import (
	"sort"
	"sync"

	"pkt.systems/termprof/schema"
)

type entryKey struct {
	extension schema.ExtensionID
	provider  schema.ProviderID
}

// Registry implements core.ContributionRegistry. Registering or
// disposing an entry notifies subscribers, mirroring extension-set
// changes in a workbench host.
type Registry struct {
	mu      sync.Mutex
	entries map[entryKey]schema.ContributedProfile
	subs    map[int]func()
	nextSub int
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[entryKey]schema.ContributedProfile),
		subs:    make(map[int]func()),
	}
}

// Register declares a contributed profile. Re-registering the same
// (extension, provider) pair replaces the previous entry. The returned
// func removes the entry.
func (r *Registry) Register(profile schema.ContributedProfile) func() {
	key := entryKey{extension: profile.Extension, provider: profile.Provider}
	r.mu.Lock()
	r.entries[key] = profile
	r.mu.Unlock()
	r.notify()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.entries, key)
			r.mu.Unlock()
			r.notify()
		})
	}
}

// ContributedProfiles returns the declared profiles sorted by title.
func (r *Registry) ContributedProfiles() []schema.ContributedProfile {
	r.mu.Lock()
	list := make([]schema.ContributedProfile, 0, len(r.entries))
	for _, entry := range r.entries {
		list = append(list, entry)
	}
	r.mu.Unlock()
	sort.Slice(list, func(i, j int) bool {
		if list[i].Title != list[j].Title {
			return list[i].Title < list[j].Title
		}
		if list[i].Extension != list[j].Extension {
			return list[i].Extension < list[j].Extension
		}
		return list[i].Provider < list[j].Provider
	})
	return list
}

// Subscribe registers a callback fired after the contribution set
// changes. The returned func cancels the subscription.
func (r *Registry) Subscribe(fn func()) func() {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

func (r *Registry) notify() {
	r.mu.Lock()
	subs := make([]func(), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
