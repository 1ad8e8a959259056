package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultStateDir is used when neither a flag, environment variable, nor
// config file sets state-dir.
const DefaultStateDir = "/var/lib/taskd"

// Config holds the daemon's own configuration (spec.md §6), distinct
// from the job manifests it loads.
type Config struct {
	StateDir  string
	LoadPaths []string
	LogLevel  string

	// SocketPath is informational only: Domain always derives
	// <statedir>/rpc.sock, so this field exists for diagnostics (taskd
	// logs it with the rest of the config). taskctl does not read it; it
	// derives its default socket from --state-dir through a Domain.
	SocketPath string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		StateDir: DefaultStateDir,
		LogLevel: "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.StateDir == "" {
		return fmt.Errorf("state-dir is required")
	}
	if !filepath.IsAbs(c.StateDir) {
		abs, err := filepath.Abs(c.StateDir)
		if err != nil {
			return fmt.Errorf("resolve state-dir: %w", err)
		}
		c.StateDir = abs
	}

	if c.SocketPath == "" {
		c.SocketPath = filepath.Join(c.StateDir, "rpc.sock")
	}

	switch c.LogLevel {
	case "":
		c.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log-level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't
// been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStringSlice sets a []string value if non-empty and flag not changed.
func (s *configSetter) setStringSlice(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// DefaultConfigPath returns ~/.taskd/config.toml if the user's home
// directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".taskd", "config.toml")
	}
	return ""
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
