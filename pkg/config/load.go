package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention HOSTGATE_SECTION_FIELD (e.g., HOSTGATE_TEMP_FILES_DIRECTORY).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format HOSTGATE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Rate limit overrides (default limiter only; named limiters are
	// file-configured)
	if val := os.Getenv("HOSTGATE_RATE_LIMIT_DEFAULT_COOLDOWN"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.RateLimit.Default.Cooldown = &d
		}
	}

	// Temp file overrides
	if val := os.Getenv("HOSTGATE_TEMP_FILES_DIRECTORY"); val != "" {
		cfg.TempFiles.Directory = val
	}
	if val := os.Getenv("HOSTGATE_TEMP_FILES_APP_NAME"); val != "" {
		cfg.TempFiles.AppName = val
	}
	if val := os.Getenv("HOSTGATE_TEMP_FILES_SWEEP_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.TempFiles.Sweep.Enabled = b
		}
	}
	if val := os.Getenv("HOSTGATE_TEMP_FILES_SWEEP_SCHEDULE"); val != "" {
		cfg.TempFiles.Sweep.Schedule = val
	}
	if val := os.Getenv("HOSTGATE_TEMP_FILES_SWEEP_MAX_AGE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.TempFiles.Sweep.MaxAge = d
		}
	}

	// Journal overrides
	if val := os.Getenv("HOSTGATE_JOURNAL_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Journal.Enabled = b
		}
	}
	if val := os.Getenv("HOSTGATE_JOURNAL_BACKEND"); val != "" {
		cfg.Journal.Backend = val
	}
	if val := os.Getenv("HOSTGATE_JOURNAL_SQLITE_PATH"); val != "" {
		cfg.Journal.SQLite.Path = val
	}

	// Telemetry overrides
	if val := os.Getenv("HOSTGATE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("HOSTGATE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("HOSTGATE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
