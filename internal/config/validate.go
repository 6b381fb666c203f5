package config

import (
	"github.com/gobwas/glob"
)

// Normalize repairs a loaded configuration in place so downstream code never
// sees an unusable value. Option errors are not surfaced to the user; each
// invalid value reverts to its documented default, matching how the pipeline
// itself degrades instead of failing.
func Normalize(cfg *Config) {
	defaults := Default()

	if cfg.DebounceMs <= 0 {
		cfg.DebounceMs = defaults.DebounceMs
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = defaults.MaxFileSize
	}

	cfg.Include = validPatterns(cfg.Include)
	if len(cfg.Include) == 0 {
		cfg.Include = defaults.Include
	}
	cfg.Ignore = validPatterns(cfg.Ignore)
}

// validPatterns drops glob patterns that fail to compile, keeping the rest.
func validPatterns(patterns []string) []string {
	var valid []string
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if _, err := glob.Compile(p, '/'); err != nil {
			continue
		}
		valid = append(valid, p)
	}
	return valid
}
