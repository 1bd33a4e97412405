package core

import (
	"context"

	"pkt.systems/termprof/schema"
)

// DetectRequest parameterizes a profile detection pass.
type DetectRequest struct {
	Platform schema.PlatformKey
	// ConfiguredProfiles maps profile titles to their configured
	// entries. A nil entry marks the title as explicitly removed.
	ConfiguredProfiles map[string]*schema.ProfileConfig
	DefaultProfileName schema.ProfileName
	IncludeDetected    bool
}

// ProfileSource detects launchable profiles against a terminal
// backend. Implementations must be idempotent and side-effect-free
// from the service's perspective.
type ProfileSource interface {
	DetectProfiles(ctx context.Context, req DetectRequest) ([]schema.Profile, error)
}

// RemoteEnvironmentProvider resolves the remote host environment. A
// nil environment with a nil error means "operate in local mode".
type RemoteEnvironmentProvider interface {
	Environment(ctx context.Context) (*schema.RemoteEnvironment, error)
}

// ConfigurationStore reads and writes profile configuration namespaced
// by platform key. Writes are user-scoped. Read and write failures
// propagate verbatim to callers.
type ConfigurationStore interface {
	Profiles(platform schema.PlatformKey) (map[string]*schema.ProfileConfig, error)
	DefaultProfileName(platform schema.PlatformKey) (schema.ProfileName, error)
	WriteProfile(platform schema.PlatformKey, title string, cfg schema.ProfileConfig) error
	SetDefaultProfileName(platform schema.PlatformKey, name schema.ProfileName) error
	// Subscribe registers a callback fired after configuration
	// changes. The returned func cancels the subscription.
	Subscribe(fn func()) (cancel func())
}

// ContributionRegistry enumerates extension-declared profiles.
type ContributionRegistry interface {
	ContributedProfiles() []schema.ContributedProfile
	// Subscribe registers a callback fired when the contribution set
	// changes. The returned func cancels the subscription.
	Subscribe(fn func()) (cancel func())
}

// EventSink receives change notifications from the profile service.
type EventSink interface {
	OnProfilesChanged(event schema.ProfilesChangedEvent)
}
