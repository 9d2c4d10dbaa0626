package gently

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/viant/gently/service/mempool"
	"github.com/viant/gently/service/scheduler"
)

// Config is a serialisable representation of the runtime configuration. It
// can be populated from YAML or JSON; zero-value fields inherit their
// package defaults.
type Config struct {
	Scheduler scheduler.Config `json:"scheduler" yaml:"scheduler"`

	// Pool, when present, makes the facade construct a memory pool.
	Pool *mempool.Config `json:"pool,omitempty" yaml:"pool,omitempty"`

	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// JournalConfig configures the optional lifecycle journal.
type JournalConfig struct {
	// BaseURL is where journal documents are flushed (file://, mem://,
	// s3://, ...). Empty disables the journal.
	BaseURL string `json:"baseURL" yaml:"baseURL"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: scheduler.DefaultConfig(),
	}
}

// ParseConfig decodes YAML (or JSON, a YAML subset) over the defaults.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate returns an aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if c.Pool != nil && c.Pool.BlockSize <= 0 {
		// Slab geometry defaults are filled in by mempool.New; only the
		// block size has no sensible default.
		return fmt.Errorf("pool.blockSize must be > 0, got %d", c.Pool.BlockSize)
	}
	return nil
}
