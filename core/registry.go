package core

import (
	"context"
	"sync"

	"pkt.systems/termprof/internal/logx"
	"pkt.systems/termprof/schema"
)

// providerKey keys the registry on the full (extension, provider)
// pair. Disposal uses the same key, so a provider id collision across
// extensions can never unregister an unrelated provider.
type providerKey struct {
	extension schema.ExtensionID
	provider  schema.ProviderID
}

type registration struct {
	provider Provider
}

func (s *service) RegisterProfileProvider(extension schema.ExtensionID, provider schema.ProviderID, p Provider) func() {
	key := providerKey{extension: extension, provider: provider}
	entry := &registration{provider: p}
	s.mu.Lock()
	s.providers[key] = entry
	s.mu.Unlock()
	logx.WithProvider(s.logger, extension, provider).Debug("profile provider registered")

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			// Remove only our own registration; a later overwrite for
			// the same pair survives disposal of the older handle.
			if s.providers[key] == entry {
				delete(s.providers, key)
			}
			s.mu.Unlock()
			logx.WithProvider(s.logger, extension, provider).Debug("profile provider disposed")
		})
	}
}

func (s *service) ResolveContributedProfile(ctx context.Context, extension schema.ExtensionID, provider schema.ProviderID, launch schema.LaunchConfig) (schema.Profile, error) {
	s.mu.Lock()
	entry := s.providers[providerKey{extension: extension, provider: provider}]
	s.mu.Unlock()
	if entry == nil {
		return schema.Profile{}, schema.ErrProviderNotFound
	}
	profile, err := entry.provider.CreateProfile(ctx, launch)
	if err != nil {
		return schema.Profile{}, err
	}
	logx.WithProfile(logx.WithProvider(s.logger, extension, provider), profile.Name).Debug("contributed profile resolved")
	return profile, nil
}
