package version

import (
	"runtime/debug"
	"strings"
)

const defaultModule = "pkt.systems/termprof"

// buildVersion is set via -ldflags "-X pkt.systems/termprof/internal/version.buildVersion=...".
var buildVersion = ""

// Current returns the release version stamped at build time, falling back
// to module build info and finally the VCS revision for devel builds.
func Current() string {
	if v := strings.TrimSpace(buildVersion); v != "" {
		return strings.TrimSuffix(v, "+dirty")
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "v0.0.0-unknown"
	}
	if v := strings.TrimSpace(info.Main.Version); v != "" && v != "(devel)" {
		return strings.TrimSuffix(v, "+dirty")
	}
	if rev := vcsRevision(info); rev != "" {
		return "devel-" + rev
	}
	return "v0.0.0-unknown"
}

// Module returns the module path from build info when available.
func Module() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			return path
		}
	}
	return defaultModule
}

func vcsRevision(info *debug.BuildInfo) string {
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			rev := setting.Value
			if len(rev) > 12 {
				rev = rev[:12]
			}
			return rev
		}
	}
	return ""
}
