package schema

import (
	"runtime"
	"testing"
)

func TestNormalizeServiceConfigDefaults(t *testing.T) {
	cfg, err := NormalizeServiceConfig(ServiceConfig{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.RefreshInterval != DefaultRefreshInterval {
		t.Fatalf("expected default refresh interval, got %v", cfg.RefreshInterval)
	}
	if cfg.ReadyTimeout != DefaultReadyTimeout {
		t.Fatalf("expected default ready timeout, got %v", cfg.ReadyTimeout)
	}
	if cfg.Platform != PlatformKeyForOS(runtime.GOOS) {
		t.Fatalf("expected local platform key, got %q", cfg.Platform)
	}
}

func TestNormalizeServiceConfigRejectsNegativeInterval(t *testing.T) {
	if _, err := NormalizeServiceConfig(ServiceConfig{RefreshInterval: -1}); err == nil {
		t.Fatalf("expected error for negative interval")
	}
}

func TestNormalizeServiceConfigRejectsUnknownPlatform(t *testing.T) {
	if _, err := NormalizeServiceConfig(ServiceConfig{Platform: "beos"}); err == nil {
		t.Fatalf("expected error for unknown platform")
	}
}

func TestPlatformKeyForOS(t *testing.T) {
	cases := map[string]PlatformKey{
		"windows": PlatformWindows,
		"darwin":  PlatformOSX,
		"linux":   PlatformLinux,
		"freebsd": PlatformLinux,
	}
	for goos, want := range cases {
		if got := PlatformKeyForOS(goos); got != want {
			t.Fatalf("PlatformKeyForOS(%q) = %q, want %q", goos, got, want)
		}
	}
}
