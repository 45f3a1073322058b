// Package config loads the gapscan client configuration from a YAML
// file with environment-variable overrides for per-invocation tweaks.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config describes the gapscan YAML configuration.
type Config struct {
	Server struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`
	Identity struct {
		TenantID string `yaml:"tenant_id"`
		UserID   string `yaml:"user_id"`
	} `yaml:"identity"`
	Flow struct {
		AutoAdvance bool   `yaml:"auto_advance"`
		PackID      string `yaml:"pack_id"`
	} `yaml:"flow"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	var cfg Config
	cfg.Server.BaseURL = "http://localhost:8787"
	cfg.Flow.AutoAdvance = true
	return cfg
}

// DefaultPath resolves the config file location: $GAPSCAN_CONFIG, then
// $XDG_CONFIG_HOME/gapscan/config.yaml, then ~/.config/gapscan/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv("GAPSCAN_CONFIG"); p != "" {
		return p, nil
	}
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "gapscan", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return filepath.Join(home, ".config", "gapscan", "config.yaml"), nil
}

// Load reads the configuration file at path, falling back to defaults
// when the file does not exist, then applies environment overrides. A
// present-but-invalid file is an error, not a silent default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if cfg.Server.BaseURL == "" {
		return cfg, fmt.Errorf("server.base_url is required")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GAPSCAN_SERVER_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("GAPSCAN_TENANT_ID"); v != "" {
		cfg.Identity.TenantID = v
	}
	if v := os.Getenv("GAPSCAN_USER_ID"); v != "" {
		cfg.Identity.UserID = v
	}
	if v := os.Getenv("GAPSCAN_AUTO_ADVANCE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Flow.AutoAdvance = b
		}
	}
	if v := os.Getenv("GAPSCAN_PACK_ID"); v != "" {
		cfg.Flow.PackID = v
	}
}
