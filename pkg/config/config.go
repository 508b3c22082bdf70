package config

import "time"

// Config is the root configuration structure for hostgate.
// It contains all configuration sections for outbound rate limiting,
// temporary file management, the usage journal, and telemetry.
type Config struct {
	// RateLimit contains cool-down configuration for outbound request
	// rate limiting, both the default limiter and named limiters.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// TempFiles contains configuration for the managed temporary file
	// directory and its orphan sweeper.
	TempFiles TempFilesConfig `yaml:"temp_files"`

	// Journal contains configuration for the rate-limit usage journal.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RateLimitConfig contains cool-down policies keyed by limiter name.
// The zero name (the "default" limiter) is configured separately from
// named limiters so YAML files don't need empty-string map keys.
type RateLimitConfig struct {
	// Default is the cool-down policy for the unnamed limiter.
	Default CooldownConfig `yaml:"default"`

	// Clients maps limiter names to their cool-down policies. Each name
	// owns a fully independent limiter; there is no cross-name contention.
	Clients map[string]CooldownConfig `yaml:"clients"`
}

// Client returns the cool-down policy for the given limiter name.
// The empty name resolves to the default limiter's policy. Unknown
// names resolve to an empty policy (rate limiting disabled).
func (c *RateLimitConfig) Client(name string) *CooldownConfig {
	if c == nil {
		return nil
	}
	if name == "" {
		return &c.Default
	}
	if cc, ok := c.Clients[name]; ok {
		return &cc
	}
	return nil
}

// CooldownConfig describes the cool-down policy for one limiter.
//
// A cool-down is the minimum duration that must elapse between the
// completion of one request to a host and the dispatch of the next
// request to the same host. A nil duration disables rate limiting.
type CooldownConfig struct {
	// Cooldown is the default cool-down applied to hosts without an
	// explicit entry in Hosts. nil (absent) disables rate limiting for
	// unlisted hosts.
	Cooldown *time.Duration `yaml:"cooldown"`

	// Hosts maps host names (matched case-insensitively) to per-host
	// overrides. An explicit null entry disables limiting for that host
	// even when Cooldown is set:
	//
	//	cooldown: 500ms
	//	hosts:
	//	  api.example.org: 2s
	//	  localhost:       # null, no limiting for localhost
	Hosts map[string]*time.Duration `yaml:"hosts"`
}

// TempFilesConfig contains configuration for managed temporary files.
type TempFilesConfig struct {
	// Directory is the directory temp files are created in. If empty,
	// a subdirectory of the system temp root named after the application
	// is used.
	Directory string `yaml:"directory"`

	// AppName is the application identity used for the default directory
	// name when Directory is empty.
	// Default: "hostgate"
	AppName string `yaml:"app_name"`

	// Sweep configures the orphan sweeper for the managed directory.
	Sweep SweepConfig `yaml:"sweep"`
}

// SweepConfig configures scheduled cleanup of orphaned temporary files.
// Files still referenced by a running process are only at risk after a
// crash, so the sweep uses a generous age threshold.
type SweepConfig struct {
	// Enabled controls whether the scheduled sweeper runs.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Schedule is a standard cron expression (e.g. "0 3 * * *").
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`

	// MaxAge is the minimum age a file must have before it is swept.
	// Default: 24h
	MaxAge time.Duration `yaml:"max_age"`
}

// JournalConfig contains configuration for the usage journal.
type JournalConfig struct {
	// Enabled controls whether rate-limit activity is journaled.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the journal backend: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Buffer is the size of the async write channel. Records are dropped
	// (and counted) when the buffer is full rather than blocking requests.
	// Default: 1000
	Buffer int `yaml:"buffer"`

	// MaxEntries caps the number of records kept by the memory backend.
	// Default: 10000
	MaxEntries int `yaml:"max_entries"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains configuration for the sqlite journal backend.
type SQLiteConfig struct {
	// Path is the path to the database file.
	// Default: "data/journal.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains configuration for structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains configuration for Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "hostgate"
	Namespace string `yaml:"namespace"`
}
