// Package config loads the small YAML document the cmd/ tools use to
// parameterize the table file path, buffer pool size, and replacement
// strategy. The page size is not configurable; it is storage.PageSize.
// Library packages never read configuration directly; it is resolved once
// in main and passed down as plain struct fields.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coredbms/pagestore/internal/bufferpool"
)

// defaultPoolSize matches the record manager's legacy default pool size
// for a table's buffer pool.
const defaultPoolSize = 100

// Config is the decoded form of a pagestore configuration file.
type Config struct {
	PageFile string `yaml:"page_file"`
	PoolSize int    `yaml:"pool_size"`
	Strategy string `yaml:"strategy"`
}

// StrategyValue resolves the configured strategy name to a bufferpool.Strategy,
// defaulting to LRU when unset.
func (c Config) StrategyValue() (bufferpool.Strategy, error) {
	switch c.Strategy {
	case "", "LRU":
		return bufferpool.LRU, nil
	case "FIFO":
		return bufferpool.FIFO, nil
	case "CLOCK":
		return bufferpool.CLOCK, nil
	case "LFU":
		return bufferpool.LFU, nil
	default:
		return 0, fmt.Errorf("config: unknown strategy %q", c.Strategy)
	}
}

// Load reads and decodes the YAML config file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if c.PoolSize <= 0 {
		c.PoolSize = defaultPoolSize
	}
	return &c, nil
}
