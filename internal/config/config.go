package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Config represents the complete pysiglens configuration.
// It can be loaded from .pysiglens/config.yml with environment variable
// overrides. A Config is read-only once loaded; pipeline runs receive it as
// a snapshot, never as shared mutable state.
type Config struct {
	// Enabled is the master switch. When false the pipeline short-circuits
	// and emits no labels at all.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// ShowFunctionName prefixes labels with the qualified declaration name.
	ShowFunctionName bool `yaml:"show_function_name" mapstructure:"show_function_name"`

	// DebounceMs is the quiet period after an edit before re-parsing.
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`

	// MaxFileSize skips files larger than this many bytes.
	MaxFileSize int64 `yaml:"max_file_size" mapstructure:"max_file_size"`

	// Include selects the files scan and watch operate on.
	Include []string `yaml:"include" mapstructure:"include"`

	// Ignore excludes paths from discovery and watching.
	Ignore []string `yaml:"ignore" mapstructure:"ignore"`
}

// Default returns a configuration with documented defaults. Invalid or
// unrecognized loaded values fall back to these silently.
func Default() *Config {
	return &Config{
		Enabled:          true,
		ShowFunctionName: true,
		DebounceMs:       300,
		MaxFileSize:      1048576, // 1 MB
		Include:          []string{"**/*.py"},
		Ignore: []string{
			".git/**",
			"__pycache__/**",
			"**/__pycache__/**",
			".venv/**",
			"**/.venv/**",
		},
	}
}

// Debounce returns the debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Fingerprint returns a short stable digest of the options that affect label
// output, used in result cache keys so a settings change never serves stale
// labels.
func (c *Config) Fingerprint() string {
	h := sha256.Sum256([]byte(fmt.Sprintf("enabled=%t;show_function_name=%t",
		c.Enabled, c.ShowFunctionName)))
	return hex.EncodeToString(h[:8])
}

// Clone returns a deep copy so callers can hold a snapshot while the session
// swaps in a new configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Include = append([]string(nil), c.Include...)
	out.Ignore = append([]string(nil), c.Ignore...)
	return &out
}

// SourceExtensions returns the unique file extensions named by the include
// patterns, with leading dot, for the file watcher's event filter.
func (c *Config) SourceExtensions() []string {
	extMap := make(map[string]bool)
	for _, pattern := range c.Include {
		if idx := strings.LastIndex(pattern, "*."); idx >= 0 {
			ext := pattern[idx+1:]
			if !strings.ContainsAny(ext, "*/[") {
				extMap[ext] = true
			}
		}
	}

	extensions := make([]string, 0, len(extMap))
	for ext := range extMap {
		extensions = append(extensions, ext)
	}
	return extensions
}
