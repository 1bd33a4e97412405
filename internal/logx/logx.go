// Package logx carries logger helpers shared across the service.
package logx

import (
	"context"

	"pkt.systems/pslog"
	"pkt.systems/termprof/schema"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithPlatform annotates the logger with the platform key if present.
func WithPlatform(log pslog.Logger, platform schema.PlatformKey) pslog.Logger {
	if platform != "" {
		log = log.With("platform", platform)
	}
	return log
}

// WithProfile annotates the logger with a profile name when available.
func WithProfile(log pslog.Logger, name schema.ProfileName) pslog.Logger {
	if name != "" {
		log = log.With("profile", name)
	}
	return log
}

// WithProvider annotates the logger with extension/provider identifiers.
func WithProvider(log pslog.Logger, extension schema.ExtensionID, provider schema.ProviderID) pslog.Logger {
	if extension != "" {
		log = log.With("extension", extension)
	}
	if provider != "" {
		log = log.With("provider", provider)
	}
	return log
}
