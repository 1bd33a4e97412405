package schema

import (
	"errors"
	"runtime"
	"time"
)

// ServiceConfig defines defaults and limits for the profile service.
type ServiceConfig struct {
	// RefreshInterval is the debounce window for refresh requests.
	RefreshInterval time.Duration
	// ReadyTimeout bounds how long first-use waiters block before the
	// readiness gate opens regardless of refresh completion.
	ReadyTimeout time.Duration
	// Platform overrides the local OS platform key. Empty means the
	// platform is derived from the remote environment if connected,
	// else the local OS.
	Platform PlatformKey
	// WebHost marks the service as running in a web host, where no
	// local backend exists and contributed profiles drive visibility.
	WebHost bool
	// IncludeDetected asks backends to report auto-detected profiles
	// alongside configured ones.
	IncludeDetected bool
}

// DefaultRefreshInterval is the default debounce window for refreshes.
const DefaultRefreshInterval = 2 * time.Second

// DefaultReadyTimeout is the default bound on first-use readiness.
const DefaultReadyTimeout = 20 * time.Second

// NormalizeServiceConfig applies defaults and validates the config.
func NormalizeServiceConfig(cfg ServiceConfig) (ServiceConfig, error) {
	if cfg.RefreshInterval < 0 {
		return ServiceConfig{}, errors.New("refresh interval must not be negative")
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.ReadyTimeout < 0 {
		return ServiceConfig{}, errors.New("ready timeout must not be negative")
	}
	if cfg.ReadyTimeout == 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}
	if cfg.Platform == "" {
		cfg.Platform = PlatformKeyForOS(runtime.GOOS)
	}
	switch cfg.Platform {
	case PlatformWindows, PlatformOSX, PlatformLinux:
	default:
		return ServiceConfig{}, errors.New("unknown platform key")
	}
	return cfg, nil
}
