package config

import "time"

// Default values for configuration fields.
const (
	// Temp file defaults
	DefaultTempAppName   = "hostgate"
	DefaultSweepSchedule = "0 3 * * *"
	DefaultSweepMaxAge   = 24 * time.Hour

	// Journal defaults
	DefaultJournalBackend     = "memory"
	DefaultJournalBuffer      = 1000
	DefaultJournalMaxEntries  = 10000
	DefaultJournalSQLitePath  = "data/journal.db"
	DefaultJournalBusyTimeout = 5 * time.Second

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsNamespace = "hostgate"
)

// ApplyDefaults fills in default values for any configuration fields that
// were not explicitly set. It modifies the configuration in place.
func ApplyDefaults(cfg *Config) {
	// Temp files
	if cfg.TempFiles.AppName == "" {
		cfg.TempFiles.AppName = DefaultTempAppName
	}
	if cfg.TempFiles.Sweep.Schedule == "" {
		cfg.TempFiles.Sweep.Schedule = DefaultSweepSchedule
	}
	if cfg.TempFiles.Sweep.MaxAge <= 0 {
		cfg.TempFiles.Sweep.MaxAge = DefaultSweepMaxAge
	}

	// Journal
	if cfg.Journal.Backend == "" {
		cfg.Journal.Backend = DefaultJournalBackend
	}
	if cfg.Journal.Buffer <= 0 {
		cfg.Journal.Buffer = DefaultJournalBuffer
	}
	if cfg.Journal.MaxEntries <= 0 {
		cfg.Journal.MaxEntries = DefaultJournalMaxEntries
	}
	if cfg.Journal.SQLite.Path == "" {
		cfg.Journal.SQLite.Path = DefaultJournalSQLitePath
	}
	if cfg.Journal.SQLite.BusyTimeout <= 0 {
		cfg.Journal.SQLite.BusyTimeout = DefaultJournalBusyTimeout
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}
