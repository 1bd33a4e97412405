package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Fatalf("expected version %d, got %d", CurrentConfigVersion, cfg.ConfigVersion)
	}
	if cfg.Service.RefreshIntervalMS != 2000 {
		t.Fatalf("expected default refresh interval, got %d", cfg.Service.RefreshIntervalMS)
	}
	if !cfg.Service.IncludeDetected {
		t.Fatal("expected detection enabled by default")
	}
}

func TestLoadRejectsUnsupportedConfigVersion(t *testing.T) {
	path := writeConfig(t, `
config_version: 99
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported config_version") {
		t.Fatalf("expected config_version error, got %v", err)
	}
}

func TestLoadRejectsMissingConfigVersion(t *testing.T) {
	path := writeConfig(t, `
service:
  refresh_interval_ms: 500
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "config_version is required") {
		t.Fatalf("expected missing version error, got %v", err)
	}
}

func TestLoadAcceptsExplicitConfigVersion(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Fatalf("expected version %d, got %d", CurrentConfigVersion, cfg.ConfigVersion)
	}
	if cfg.Service.RefreshIntervalMS != 2000 {
		t.Fatalf("expected defaults to apply, got %d", cfg.Service.RefreshIntervalMS)
	}
}

func TestLoadRequiresRemoteCredentials(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
remote:
  addr: host:22
  user: probe
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "remote.key_path or remote.password") {
		t.Fatalf("expected remote credential error, got %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
profiles_path: /state/profiles.yaml
service:
  refresh_interval_ms: 250
  ready_timeout_seconds: 5
  web_host: true
http:
  addr: ":9999"
remote:
  addr: host:22
  user: probe
  key_path: /keys/id_ed25519
  timeout_seconds: 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ProfilesPath != "/state/profiles.yaml" {
		t.Fatalf("unexpected profiles path %q", cfg.ProfilesPath)
	}
	if cfg.Service.RefreshIntervalMS != 250 || cfg.Service.ReadyTimeoutSeconds != 5 {
		t.Fatalf("unexpected service config %+v", cfg.Service)
	}
	if !cfg.Service.WebHost {
		t.Fatal("expected web_host true")
	}
	if cfg.HTTP.Addr != ":9999" {
		t.Fatalf("unexpected http addr %q", cfg.HTTP.Addr)
	}
	if got := time.Duration(cfg.Remote.TimeoutSeconds) * time.Second; got != 3*time.Second {
		t.Fatalf("unexpected remote timeout %v", got)
	}
}

func TestLoadRejectsNegativeRefreshInterval(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
service:
  refresh_interval_ms: -1
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "refresh_interval_ms") {
		t.Fatalf("expected interval error, got %v", err)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("FOO", "bar")
	value := expandEnv("$FOO/$UID/$GID/$MISSING")
	if !strings.HasPrefix(value, "bar/") {
		t.Fatalf("expected env expansion, got %q", value)
	}
	if strings.Contains(value, "$UID") || strings.Contains(value, "$GID") {
		t.Fatalf("expected UID/GID expansion, got %q", value)
	}
	if !strings.HasSuffix(value, "/$MISSING") {
		t.Fatalf("expected missing vars to remain, got %q", value)
	}
}

func TestWriteDefaultRespectsOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	written, err := WriteDefault(path, false)
	if err != nil {
		t.Fatalf("write default: %v", err)
	}
	if written != path {
		t.Fatalf("expected path %q, got %q", path, written)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config to exist: %v", err)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected error when config exists")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("expected overwrite to succeed: %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
