// Package config loads the daemon configuration from YAML with environment
// overrides. Out-of-range tuning values are clamped, not rejected; only
// structural problems fail the load.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	SchemaVersion = 1
	DefaultPath   = "/etc/fluidra-pool/config.yaml"

	DefaultHTTPAddr = "0.0.0.0:8080"
	DefaultLogLevel = "info"

	DefaultScanIntervalMinutes = 30
	MinScanIntervalMinutes     = 5
	MaxScanIntervalMinutes     = 120

	DefaultRateLimitPerMinute = 60
	MinRateLimitPerMinute     = 10
	MaxRateLimitPerMinute     = 120
)

// Account configures one Fluidra account to poll.
type Account struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	ScanIntervalMinutes int    `yaml:"scan_interval_minutes"`
	RateLimitPerMinute  int    `yaml:"rate_limit_per_minute"`
	DeviceID            string `yaml:"device_id"`
}

// Config is the top-level daemon configuration.
type Config struct {
	SchemaVersion int    `yaml:"schema_version"`
	HTTPAddr      string `yaml:"http_addr"`
	LogLevel      string `yaml:"log_level"`
	BaseURL       string `yaml:"base_url"`

	Accounts []Account `yaml:"accounts"`
}

// Load parses the YAML config file, applies environment overrides and
// defaults, and validates. A missing file is tolerated when the environment
// supplies credentials.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Env-only configuration.
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets the environment override file values. FLUIDRA_USERNAME and
// FLUIDRA_PASSWORD configure a default account when the file declares none.
func applyEnv(cfg *Config) {
	if v := os.Getenv("FLUIDRA_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("FLUIDRA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FLUIDRA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}

	username := os.Getenv("FLUIDRA_USERNAME")
	password := os.Getenv("FLUIDRA_PASSWORD")
	if username == "" && password == "" {
		return
	}

	if len(cfg.Accounts) == 0 {
		cfg.Accounts = append(cfg.Accounts, Account{ID: "default"})
	}
	if username != "" {
		cfg.Accounts[0].Username = username
	}
	if password != "" {
		cfg.Accounts[0].Password = password
	}
	if v := os.Getenv("FLUIDRA_SCAN_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Accounts[0].ScanIntervalMinutes = n
		}
	}
	if v := os.Getenv("FLUIDRA_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Accounts[0].RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("FLUIDRA_DEVICE_ID"); v != "" {
		cfg.Accounts[0].DeviceID = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.SchemaVersion == 0 {
		cfg.SchemaVersion = SchemaVersion
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	for i := range cfg.Accounts {
		a := &cfg.Accounts[i]
		if a.ScanIntervalMinutes == 0 {
			a.ScanIntervalMinutes = DefaultScanIntervalMinutes
		}
		a.ScanIntervalMinutes = clamp(a.ScanIntervalMinutes, MinScanIntervalMinutes, MaxScanIntervalMinutes)
		if a.RateLimitPerMinute == 0 {
			a.RateLimitPerMinute = DefaultRateLimitPerMinute
		}
		a.RateLimitPerMinute = clamp(a.RateLimitPerMinute, MinRateLimitPerMinute, MaxRateLimitPerMinute)
	}
}

// Validate enforces required invariants beyond YAML typing.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if cfg.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported schema_version %d (want %d)", cfg.SchemaVersion, SchemaVersion)
	}
	if len(cfg.Accounts) == 0 {
		return fmt.Errorf("no accounts configured")
	}
	for i, a := range cfg.Accounts {
		if a.ID == "" {
			return fmt.Errorf("accounts[%d]: id is required", i)
		}
		if a.Username == "" {
			return fmt.Errorf("account %s: username is required", a.ID)
		}
		if a.Password == "" {
			return fmt.Errorf("account %s: password is required", a.ID)
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
