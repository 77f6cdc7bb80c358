// Package config provides TOML configuration file loading for diffdeck.
// The configuration file lives at ~/.diffdeck/config.toml by default, but can
// be overridden with the --config flag. CLI flags always take precedence over
// file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the diffdeck configuration file structure.
// Field names use Go camelCase internally but map to snake_case in TOML files
// via struct tags.
type Config struct {
	// Addr is the host:port for the HTTP/WebSocket server.
	// Default: 127.0.0.1:4966
	Addr string `toml:"addr"`

	// DebounceMs is the quiet window for filesystem change debouncing
	// in milliseconds. A burst of changes within this window produces a
	// single cache invalidation and reload notification.
	// Default: 300
	DebounceMs int `toml:"debounce_ms"`

	// GitMaxOutputMB is the output ceiling for git subprocess calls in
	// mebibytes. Output beyond this fails the call rather than blocking.
	// Default: 64
	GitMaxOutputMB int `toml:"git_max_output_mb"`

	// CommentDB is the path to the SQLite database for review comments.
	// Default: ~/.diffdeck/comments.db
	CommentDB string `toml:"comment_db"`

	// IgnoreGlobs are extra glob patterns for filesystem events to drop,
	// in addition to .gitignore. A leading "!" negates a pattern.
	IgnoreGlobs []string `toml:"ignore_globs"`

	// StrictParse makes an unresolvable diff block a hard parse error
	// instead of being silently dropped.
	// Default: false
	StrictParse bool `toml:"strict_parse"`

	// LogLevel controls logging verbosity: debug, info, warn, error.
	// Default: info
	LogLevel string `toml:"log_level"`
}

// DefaultConfigPath returns the default config file location:
// ~/.diffdeck/config.toml. Returns an error only if the user's home
// directory cannot be determined.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".diffdeck", "config.toml"), nil
}

// Load reads and parses the config file at the given path.
// A missing file is not an error: defaults are returned so the tool works
// with zero configuration.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Default returns a Config populated with default values.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero-valued fields with defaults.
// Called after parsing so partial config files still get sane values.
func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.DebounceMs <= 0 {
		c.DebounceMs = DefaultDebounceMs
	}
	if c.GitMaxOutputMB <= 0 {
		c.GitMaxOutputMB = DefaultGitMaxOutputMB
	}
	if c.CommentDB == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.CommentDB = filepath.Join(home, ".diffdeck", "comments.db")
		}
	}
	if c.IgnoreGlobs == nil {
		c.IgnoreGlobs = append([]string(nil), DefaultIgnoreGlobs...)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}
