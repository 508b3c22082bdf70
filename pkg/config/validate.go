package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "temp_files.sweep.schedule").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateRateLimit(&cfg.RateLimit)...)
	errs = append(errs, validateTempFiles(&cfg.TempFiles)...)
	errs = append(errs, validateJournal(&cfg.Journal)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// validateRateLimit validates cool-down configuration for all limiters.
func validateRateLimit(cfg *RateLimitConfig) []FieldError {
	var errs []FieldError

	errs = append(errs, validateCooldown("rate_limit.default", &cfg.Default)...)
	for name, cc := range cfg.Clients {
		if name == "" {
			errs = append(errs, FieldError{
				Field:   "rate_limit.clients",
				Message: "limiter name must not be empty (use rate_limit.default)",
			})
			continue
		}
		errs = append(errs, validateCooldown(fmt.Sprintf("rate_limit.clients.%s", name), &cc)...)
	}

	return errs
}

// validateCooldown validates a single cool-down policy.
func validateCooldown(field string, cc *CooldownConfig) []FieldError {
	var errs []FieldError

	if cc.Cooldown != nil && *cc.Cooldown < 0 {
		errs = append(errs, FieldError{
			Field:   field + ".cooldown",
			Message: "cooldown must not be negative",
		})
	}
	for host, d := range cc.Hosts {
		if host == "" {
			errs = append(errs, FieldError{
				Field:   field + ".hosts",
				Message: "host name must not be empty",
			})
		}
		if d != nil && *d < 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("%s.hosts.%s", field, host),
				Message: "cooldown must not be negative",
			})
		}
	}

	return errs
}

// validateTempFiles validates temp file and sweeper configuration.
func validateTempFiles(cfg *TempFilesConfig) []FieldError {
	var errs []FieldError

	if cfg.AppName == "" {
		errs = append(errs, FieldError{
			Field:   "temp_files.app_name",
			Message: "app name must not be empty",
		})
	}
	if cfg.Sweep.Enabled {
		if _, err := cron.ParseStandard(cfg.Sweep.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "temp_files.sweep.schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Sweep.Schedule, err),
			})
		}
		if cfg.Sweep.MaxAge <= 0 {
			errs = append(errs, FieldError{
				Field:   "temp_files.sweep.max_age",
				Message: "max age must be positive",
			})
		}
	}

	return errs
}

// validateJournal validates usage journal configuration.
func validateJournal(cfg *JournalConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "journal.backend",
			Message: fmt.Sprintf("unknown backend %q (must be \"memory\" or \"sqlite\")", cfg.Backend),
		})
	}
	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "journal.sqlite.path",
			Message: "path must not be empty",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (must be json or text)", cfg.Logging.Format),
		})
	}

	return errs
}
