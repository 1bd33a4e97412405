package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	// config_version deliberately has no default: a config file must
	// carry it explicitly so the presence check below can fire.
	v.SetDefault("profiles_path", cfg.ProfilesPath)
	v.SetDefault("service.refresh_interval_ms", cfg.Service.RefreshIntervalMS)
	v.SetDefault("service.ready_timeout_seconds", cfg.Service.ReadyTimeoutSeconds)
	v.SetDefault("service.web_host", cfg.Service.WebHost)
	v.SetDefault("service.include_detected", cfg.Service.IncludeDetected)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("remote.addr", cfg.Remote.Addr)
	v.SetDefault("remote.user", cfg.Remote.User)
	v.SetDefault("remote.key_path", cfg.Remote.KeyPath)
	v.SetDefault("remote.password", cfg.Remote.Password)
	v.SetDefault("remote.known_hosts_path", cfg.Remote.KnownHostsPath)
	v.SetDefault("remote.timeout_seconds", cfg.Remote.TimeoutSeconds)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
				return cfg, nil
			}
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
		if v.IsSet("remote.addr") && v.GetString("remote.addr") != "" {
			if !v.IsSet("remote.user") || v.GetString("remote.user") == "" {
				return Config{}, fmt.Errorf("remote.user is required when remote.addr is set")
			}
			if v.GetString("remote.key_path") == "" && v.GetString("remote.password") == "" {
				return Config{}, fmt.Errorf("remote.key_path or remote.password is required when remote.addr is set")
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if cfg.Service.RefreshIntervalMS < 0 {
		return Config{}, fmt.Errorf("service.refresh_interval_ms must not be negative")
	}
	if cfg.Service.ReadyTimeoutSeconds <= 0 {
		return Config{}, fmt.Errorf("service.ready_timeout_seconds must be positive")
	}
	return cfg, nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.ProfilesPath = expandEnv(cfg.ProfilesPath)
	cfg.Remote.KeyPath = expandEnv(cfg.Remote.KeyPath)
	cfg.Remote.KnownHostsPath = expandEnv(cfg.Remote.KnownHostsPath)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
