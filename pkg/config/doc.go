// Package config provides configuration management for hostgate.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention HOSTGATE_SECTION_FIELD.
// For example:
//
//   - HOSTGATE_RATE_LIMIT_DEFAULT_COOLDOWN overrides rate_limit.default.cooldown
//   - HOSTGATE_TEMP_FILES_DIRECTORY overrides temp_files.directory
//   - HOSTGATE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Cool-down Configuration
//
// Rate limiting is configured per limiter name, each with a default
// cool-down and per-host overrides:
//
//	rate_limit:
//	  default:
//	    cooldown: 500ms
//	    hosts:
//	      api.example.org: 2s
//	      localhost:            # explicit null disables limiting
//	  clients:
//	    crawler:
//	      cooldown: 1s
//
// A missing cooldown means "no rate limiting". Host names are matched
// case-insensitively.
//
// # Hot Reloading
//
// The global configuration can be replaced at runtime with ReloadConfig, or
// automatically via Watcher, which watches the configuration file with
// fsnotify and reloads on change:
//
//	w, err := config.NewWatcher(config.WatcherConfig{Path: "config.yaml"}, nil)
//	go w.Watch(ctx, nil)
//
// Components that resolve configuration through accessor functions observe
// the new values on their next request.
package config
