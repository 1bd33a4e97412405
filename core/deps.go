package core

import (
	"pkt.systems/pslog"
	"pkt.systems/termprof/schema"
)

// ServiceDeps captures dependencies for the profile service. Local,
// Remote, RemoteEnv, EventSink, and Hooks are optional; nil members
// are checked at each call site.
type ServiceDeps struct {
	Local         ProfileSource
	Remote        ProfileSource
	RemoteEnv     RemoteEnvironmentProvider
	Config        ConfigurationStore
	Contributions ContributionRegistry
	EventSink     EventSink
	Hooks         RefreshHooks
	Logger        pslog.Logger
}

// RefreshHooks receives post-commit notifications for surfaces outside
// the cache: configuration schema regeneration, action list refresh,
// and the web-host visibility context flag. All members are optional.
type RefreshHooks struct {
	ConfigSchema func(defaultProfile schema.ProfileName, platform schema.PlatformKey)
	ActionList   func()
	WebContext   func(visible bool)
}
