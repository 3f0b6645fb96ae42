// Package config holds the application configuration, loaded from an
// optional YAML file with environment-variable overrides.
package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Seed    SeedConfig    `yaml:"seed"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects and locates the persistence backend.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"GOPREP_STORAGE_BACKEND" env-default:"file"`
	Path    string `yaml:"path"    env:"GOPREP_STORAGE_PATH"    env-default:"goprep.json"`
}

// SeedConfig points at the remote sheet used on first run.
type SeedConfig struct {
	URL     string        `yaml:"url"     env:"GOPREP_SEED_URL"`
	Timeout time.Duration `yaml:"timeout" env:"GOPREP_SEED_TIMEOUT" env-default:"10s"`
}

// HistoryConfig bounds the undo depth.
type HistoryConfig struct {
	Capacity int `yaml:"capacity" env:"GOPREP_HISTORY_CAPACITY" env-default:"20"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"GOPREP_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"GOPREP_LOG_FORMAT" env-default:"text"`
}

// Load reads the configuration. When path is empty only environment
// variables and defaults apply.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
