package core

import (
	"context"

	"pkt.systems/termprof/schema"
)

// Service is the transport-agnostic API for terminal profile
// discovery, caching, and change notification. One instance serves a
// whole session; construct it once and call Start exactly once.
type Service interface {
	// Start performs the initial refresh and arms configuration and
	// contribution subscriptions plus the readiness deadline.
	// Detection failures propagate to the caller, which should log
	// them; the cache keeps its last-known-good state.
	Start(ctx context.Context) error

	// RefreshAvailableProfiles requests a refresh. Requests inside
	// the debounce window coalesce into a single trailing pass; a
	// coalesced call returns nil immediately. A call that performs
	// detection itself propagates detection failures verbatim.
	RefreshAvailableProfiles(ctx context.Context) error

	// AvailableProfiles returns a copy of the current snapshot,
	// triggering a best-effort refresh as a side effect.
	AvailableProfiles() []schema.Profile

	// ContributedProfiles returns a copy of the current contributed
	// snapshot, triggering a best-effort refresh as a side effect.
	ContributedProfiles() []schema.ContributedProfile

	// DefaultProfileName returns the resolved default profile name,
	// or schema.ErrNoDefaultProfile before any resolution. Await
	// ProfilesReady first to avoid the race.
	DefaultProfileName() (schema.ProfileName, error)

	// ContributedDefaultProfile returns the contributed profile
	// matching the configured default for the current platform, or
	// nil when the launch request carries an explicit executable or a
	// parent-terminal correlation id.
	ContributedDefaultProfile(ctx context.Context, launch schema.LaunchConfig) (*schema.ContributedProfile, error)

	// RegisterProfileProvider registers a provider under the
	// (extension, provider) pair, silently overwriting an existing
	// registration. The returned func removes exactly that pair.
	RegisterProfileProvider(extension schema.ExtensionID, provider schema.ProviderID, p Provider) (dispose func())

	// RegisterContributedProfile merges a contributed descriptor into
	// the persisted configuration for the current platform, keyed by
	// title. Last writer for a title wins.
	RegisterContributedProfile(ctx context.Context, extension schema.ExtensionID, provider schema.ProviderID, title schema.ProfileName, options ContributedProfileOptions) error

	// ResolveContributedProfile invokes the registered provider for
	// the pair to produce a launchable profile.
	ResolveContributedProfile(ctx context.Context, extension schema.ExtensionID, provider schema.ProviderID, launch schema.LaunchConfig) (schema.Profile, error)

	// ProfilesReady is closed once the first refresh completes or the
	// ready timeout elapses, whichever comes first. It never closes
	// again; a ready signal may precede a successful detection under
	// pathological delay.
	ProfilesReady() <-chan struct{}

	// Platform returns the platform key currently in effect.
	Platform() schema.PlatformKey

	// Close cancels subscriptions and pending trailing refreshes.
	Close() error
}

// Provider creates a launchable profile on demand for a contributed
// profile descriptor.
type Provider interface {
	CreateProfile(ctx context.Context, launch schema.LaunchConfig) (schema.Profile, error)
}

// ContributedProfileOptions carries the optional descriptor fields
// persisted by RegisterContributedProfile.
type ContributedProfileOptions struct {
	Icon  schema.ProfileIcon
	Color schema.ProfileColor
}
