package appconfig

import (
	"os"
	"path/filepath"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	ProfilesPath  string        `mapstructure:"profiles_path" yaml:"profiles_path"`
	Service       ServiceConfig `mapstructure:"service" yaml:"service"`
	HTTP          HTTPConfig    `mapstructure:"http" yaml:"http"`
	Remote        RemoteConfig  `mapstructure:"remote" yaml:"remote"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// ServiceConfig controls profile refresh behavior.
type ServiceConfig struct {
	RefreshIntervalMS   int  `mapstructure:"refresh_interval_ms" yaml:"refresh_interval_ms"`
	ReadyTimeoutSeconds int  `mapstructure:"ready_timeout_seconds" yaml:"ready_timeout_seconds"`
	WebHost             bool `mapstructure:"web_host" yaml:"web_host"`
	IncludeDetected     bool `mapstructure:"include_detected" yaml:"include_detected"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// RemoteConfig points profile detection at an SSH host instead of the
// local machine. Detection stays local when Addr is empty.
type RemoteConfig struct {
	Addr           string `mapstructure:"addr" yaml:"addr"`
	User           string `mapstructure:"user" yaml:"user"`
	KeyPath        string `mapstructure:"key_path" yaml:"key_path"`
	Password       string `mapstructure:"password" yaml:"password"`
	KnownHostsPath string `mapstructure:"known_hosts_path" yaml:"known_hosts_path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		ProfilesPath:  filepath.Join(home, ".termprof", "profiles.yaml"),
		Service: ServiceConfig{
			RefreshIntervalMS:   2000,
			ReadyTimeoutSeconds: 20,
			WebHost:             false,
			IncludeDetected:     true,
		},
		HTTP: HTTPConfig{
			Addr: ":27491",
		},
		Remote: RemoteConfig{
			TimeoutSeconds: 10,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".termprof", "config.yaml"), nil
}
