// Package confstore persists terminal profile configuration to a
// user-scoped yaml file, namespaced by platform key.
package confstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"pkt.systems/pslog"
	"pkt.systems/termprof/schema"
)

// document is the on-disk shape: profiles.<platform>.<title> and
// defaultProfile.<platform>. An explicit null under a title removes a
// detected or contributed profile of that name.
type document struct {
	Profiles map[string]map[string]*schema.ProfileConfig `yaml:"profiles,omitempty"`
	Defaults map[string]string                           `yaml:"defaultProfile,omitempty"`
}

// Store implements core.ConfigurationStore on a yaml file.
type Store struct {
	path string
	log  pslog.Logger

	mu      sync.Mutex
	doc     document
	subs    map[int]func()
	nextSub int
}

// New constructs a store backed by the given file path. A missing file
// is treated as an empty configuration.
func New(path string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("profile configuration path is required")
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	s := &Store{
		path: path,
		log:  logger.With("config_path", path),
		subs: make(map[int]func()),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Profiles returns the configured entries for the platform. Nil map
// values mark titles explicitly nulled out by the user.
func (s *Store) Profiles(platform schema.PlatformKey) (map[string]*schema.ProfileConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.doc.Profiles[string(platform)]
	out := make(map[string]*schema.ProfileConfig, len(entries))
	for title, entry := range entries {
		if entry == nil {
			out[title] = nil
			continue
		}
		copied := *entry
		copied.Args = append([]string(nil), entry.Args...)
		out[title] = &copied
	}
	return out, nil
}

// DefaultProfileName returns defaultProfile.<platform>, empty when unset.
func (s *Store) DefaultProfileName(platform schema.PlatformKey) (schema.ProfileName, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schema.ProfileName(s.doc.Defaults[string(platform)]), nil
}

// WriteProfile merges an entry under profiles.<platform>.<title> at
// user scope. The last writer for a title wins.
func (s *Store) WriteProfile(platform schema.PlatformKey, title string, cfg schema.ProfileConfig) error {
	s.mu.Lock()
	if s.doc.Profiles == nil {
		s.doc.Profiles = make(map[string]map[string]*schema.ProfileConfig)
	}
	entries := s.doc.Profiles[string(platform)]
	if entries == nil {
		entries = make(map[string]*schema.ProfileConfig)
		s.doc.Profiles[string(platform)] = entries
	}
	copied := cfg
	entries[title] = &copied
	err := s.saveLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// RemoveProfile writes an explicit null for the title, excluding a
// detected or contributed profile of that name.
func (s *Store) RemoveProfile(platform schema.PlatformKey, title string) error {
	s.mu.Lock()
	if s.doc.Profiles == nil {
		s.doc.Profiles = make(map[string]map[string]*schema.ProfileConfig)
	}
	entries := s.doc.Profiles[string(platform)]
	if entries == nil {
		entries = make(map[string]*schema.ProfileConfig)
		s.doc.Profiles[string(platform)] = entries
	}
	entries[title] = nil
	err := s.saveLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetDefaultProfileName writes defaultProfile.<platform>.
func (s *Store) SetDefaultProfileName(platform schema.PlatformKey, name schema.ProfileName) error {
	s.mu.Lock()
	if s.doc.Defaults == nil {
		s.doc.Defaults = make(map[string]string)
	}
	s.doc.Defaults[string(platform)] = string(name)
	err := s.saveLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Reload re-reads the file and notifies subscribers. Used when the
// file was edited outside this process.
func (s *Store) Reload() error {
	s.mu.Lock()
	err := s.loadLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Subscribe registers a callback fired after configuration changes.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debug("profile config missing, starting empty")
			s.doc = document{}
			return nil
		}
		s.log.Warn("profile config load failed", "err", err)
		return err
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		s.log.Warn("profile config parse failed", "err", err)
		return err
	}
	s.doc = doc
	s.log.Debug("profile config loaded", "platforms", len(doc.Profiles))
	return nil
}

func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.log.Warn("profile config save failed", "err", err)
		return err
	}
	data, err := yaml.Marshal(s.doc)
	if err != nil {
		s.log.Warn("profile config save failed", "err", err)
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "profiles-*.yaml")
	if err != nil {
		s.log.Warn("profile config save failed", "err", err)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		s.log.Warn("profile config save failed", "err", err)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		s.log.Warn("profile config save failed", "err", err)
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		s.log.Warn("profile config save failed", "err", err)
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		s.log.Warn("profile config save failed", "err", err)
		return err
	}
	s.log.Debug("profile config saved")
	return nil
}
