package config

import (
	"fmt"
	"sync"
)

var (
	globalConfig *Config
	configMutex  sync.RWMutex

	// initOnce makes repeated Initialize calls no-ops.
	initOnce sync.Once
)

// Initialize loads the configuration from path (with environment
// overrides) and installs it as the process-wide instance. Call it once
// at startup; later calls do nothing. Hot reloads go through
// ReloadConfig, typically driven by a Watcher.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		configMutex.Unlock()
	})

	return initErr
}

// GetConfig returns the process-wide configuration, or nil before a
// successful Initialize. Components that consult it per call (the rate
// limiter registry's default config source does) treat nil as
// "limiting disabled" rather than an error.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig replaces the process-wide configuration directly, bypassing
// loading and validation. Meant for tests; production code goes through
// Initialize and ReloadConfig.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// ReloadConfig re-reads path and swaps in the result. On any load or
// validation error the current configuration stays in place, so a bad
// edit can never take a running process's policy away. Readers pick up
// the new instance on their next GetConfig call; nothing is cached at
// construction time.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()

	return nil
}

// MustGetConfig is GetConfig for code paths that run strictly after a
// successful startup; it panics instead of returning nil.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
