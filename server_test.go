package termprof

import (
	"context"
	"sync"
	"testing"
	"time"

	"pkt.systems/termprof/core"
	"pkt.systems/termprof/httpapi"
	"pkt.systems/termprof/schema"
)

type memStore struct {
	mu       sync.Mutex
	profiles map[schema.PlatformKey]map[string]*schema.ProfileConfig
	defaults map[schema.PlatformKey]schema.ProfileName
}

func newMemStore() *memStore {
	return &memStore{
		profiles: make(map[schema.PlatformKey]map[string]*schema.ProfileConfig),
		defaults: make(map[schema.PlatformKey]schema.ProfileName),
	}
}

func (s *memStore) Profiles(platform schema.PlatformKey) (map[string]*schema.ProfileConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*schema.ProfileConfig, len(s.profiles[platform]))
	for title, cfg := range s.profiles[platform] {
		out[title] = cfg
	}
	return out, nil
}

func (s *memStore) DefaultProfileName(platform schema.PlatformKey) (schema.ProfileName, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaults[platform], nil
}

func (s *memStore) WriteProfile(platform schema.PlatformKey, title string, cfg schema.ProfileConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profiles[platform] == nil {
		s.profiles[platform] = make(map[string]*schema.ProfileConfig)
	}
	copied := cfg
	s.profiles[platform][title] = &copied
	return nil
}

func (s *memStore) SetDefaultProfileName(platform schema.PlatformKey, name schema.ProfileName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[platform] = name
	return nil
}

func (s *memStore) Subscribe(fn func()) func() { return func() {} }

type staticSource struct {
	profiles []schema.Profile
}

func (s *staticSource) DetectProfiles(ctx context.Context, req core.DetectRequest) ([]schema.Profile, error) {
	return append([]schema.Profile(nil), s.profiles...), nil
}

type staticRegistry struct{}

func (staticRegistry) ContributedProfiles() []schema.ContributedProfile { return nil }
func (staticRegistry) Subscribe(fn func()) func()                      { return func() {} }

func TestServerLifecycle(t *testing.T) {
	srv, err := New(ServerConfig{
		Service: schema.ServiceConfig{
			RefreshInterval: time.Millisecond,
			ReadyTimeout:    time.Second,
			Platform:        schema.PlatformLinux,
			IncludeDetected: true,
		},
		HTTP: httpapi.Config{Addr: "127.0.0.1:0"},
	}, ServerDeps{
		ServiceDeps: core.ServiceDeps{
			Local:         &staticSource{profiles: []schema.Profile{{Name: "bash", Path: "/bin/bash"}}},
			Config:        newMemStore(),
			Contributions: staticRegistry{},
		},
	}, WithHTTP())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	events, cancelEvents := srv.Events()
	defer cancelEvents()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := srv.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	select {
	case event := <-events:
		if len(event.Profiles) != 1 || event.Profiles[0].Name != "bash" {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change event observed")
	}

	select {
	case <-srv.Service().ProfilesReady():
	case <-time.After(2 * time.Second):
		t.Fatal("service never became ready")
	}
	profiles := srv.Service().AvailableProfiles()
	if len(profiles) != 1 || profiles[0].Name != "bash" {
		t.Fatalf("unexpected profiles: %+v", profiles)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestServerWithoutHTTP(t *testing.T) {
	srv, err := New(ServerConfig{
		Service: schema.ServiceConfig{
			RefreshInterval: time.Millisecond,
			ReadyTimeout:    time.Second,
			Platform:        schema.PlatformLinux,
		},
	}, ServerDeps{
		ServiceDeps: core.ServiceDeps{
			Local:         &staticSource{},
			Config:        newMemStore(),
			Contributions: staticRegistry{},
		},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := srv.Stop(nil); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
