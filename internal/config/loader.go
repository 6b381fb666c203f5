package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (PYSIGLENS_*)
// 2. Config file (.pysiglens/config.yml or .pysiglens/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".pysiglens")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	// Enable environment variable overrides (e.g. PYSIGLENS_DEBOUNCE_MS)
	v.SetEnvPrefix("PYSIGLENS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("enabled")
	v.BindEnv("show_function_name")
	v.BindEnv("debounce_ms")
	v.BindEnv("max_file_size")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Unrecognized or invalid option values fall back to defaults silently;
	// loading fails only on an unreadable or unparseable file.
	Normalize(cfg)

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("enabled", defaults.Enabled)
	v.SetDefault("show_function_name", defaults.ShowFunctionName)
	v.SetDefault("debounce_ms", defaults.DebounceMs)
	v.SetDefault("max_file_size", defaults.MaxFileSize)
	v.SetDefault("include", defaults.Include)
	v.SetDefault("ignore", defaults.Ignore)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
