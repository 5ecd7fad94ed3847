// Package config loads the optional console configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPollInterval is the watch poll interval used when none is
	// configured.
	DefaultPollInterval = 3 * time.Second
	// DefaultPerPage is the article page size used when none is configured.
	DefaultPerPage = 20
	// DefaultMaxWorkers is the bulk download worker count used when none is
	// configured.
	DefaultMaxWorkers = 3
)

// Config is the console configuration file model.
type Config struct {
	ServerURL      string        `yaml:"server_url"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	PerPage        int           `yaml:"per_page"`
	MaxWorkers     int           `yaml:"max_workers"`
	Keywords       []string      `yaml:"keywords"`
	LiteratureType string        `yaml:"literature_type"`
}

func (c *Config) defaults() error {
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	if c.PerPage == 0 {
		c.PerPage = DefaultPerPage
	}
	if c.PerPage < 1 {
		return fmt.Errorf("per page must be positive")
	}

	if c.MaxWorkers == 0 {
		c.MaxWorkers = DefaultMaxWorkers
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max workers must be positive")
	}

	return nil
}

// Load reads the configuration file at path. A missing file is not an
// error, the defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Config file is optional.
	case err != nil:
		return nil, fmt.Errorf("could not read config file: %w", err)
	default:
		err := yaml.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("could not parse config file: %w", err)
		}
	}

	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
