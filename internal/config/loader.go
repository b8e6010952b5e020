package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// envConfigPath is the environment variable naming an explicit config file.
const envConfigPath = "SEQPLAN_CONFIG_PATH"

// Loader handles Viper-based configuration loading.
//
// Create with [NewLoader], then call [Loader.Load] for the standard search
// path or [Loader.LoadFromFile] for an explicit file. File settings are
// merged over [DefaultConfig]; absent keys keep their defaults.
type Loader struct{}

// NewLoader creates a new [Loader].
func NewLoader() *Loader {
	return &Loader{}
}

// Load loads configuration from the standard search locations.
//
// Search order: SEQPLAN_CONFIG_PATH, the user config directory
// (e.g. ~/.config/seqplan/config.yaml), then ./seqplan.yaml. A missing
// config file is not an error; defaults apply. An unreadable or invalid
// file is an error.
func (l *Loader) Load() (*Config, error) {
	if envPath := os.Getenv(envConfigPath); envPath != "" {
		return l.LoadFromFile(envPath)
	}

	for _, path := range searchPaths() {
		if _, err := os.Stat(path); err == nil {
			return l.LoadFromFile(path)
		}
	}

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from the given YAML file, merged over
// the defaults.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Unmarshal over the defaults so absent keys keep their default values.
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// searchPaths returns the config file locations to probe, in priority order.
func searchPaths() []string {
	var paths []string

	if userDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(userDir, "seqplan", "config.yaml"))
	}

	paths = append(paths, "seqplan.yaml")
	return paths
}
