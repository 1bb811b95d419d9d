package pipeline

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes a pipeline's runs and their idle-shutdown behavior,
// loaded from a YAML document (config.go's struct tags mirror the style
// internal/harness/scenario.go uses for its own YAML fixtures).
type Config struct {
	// LedgerPath is the SQLite file the pipeline's single Ledger opens.
	LedgerPath string `yaml:"ledger_path"`

	// SchemaDir is the directory the schema registry resolves documents from.
	SchemaDir string `yaml:"schema_dir"`

	// IdleTimeoutMS is how long the pipeline waits with no published
	// activity before shutting down all reactors. Zero means use the
	// default (5000ms, or IDLE_TIMEOUT_MS if set).
	IdleTimeoutMS int `yaml:"idle_timeout_ms,omitempty"`

	// Runs lists the run_id values this pipeline's reactors operate on.
	Runs []string `yaml:"runs,omitempty"`
}

// LoadConfig reads and parses a pipeline Config from a YAML file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse pipeline config %s: %w", path, err)
	}
	return &cfg, nil
}

// IdleTimeout resolves the configured idle timeout, falling back to
// IDLE_TIMEOUT_MS and then to the 5-second default.
func (c *Config) IdleTimeout() time.Duration {
	if c != nil && c.IdleTimeoutMS > 0 {
		return time.Duration(c.IdleTimeoutMS) * time.Millisecond
	}
	return idleTimeoutFromEnv(defaultIdleTimeout)
}

func idleTimeoutFromEnv(def time.Duration) time.Duration {
	raw := os.Getenv("IDLE_TIMEOUT_MS")
	if raw == "" {
		return def
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

const defaultIdleTimeout = 5 * time.Second
