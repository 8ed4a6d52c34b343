// Package config loads gauntlet configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all gauntlet configuration.
type Config struct {
	// Batch run settings
	Run RunConfig `yaml:"run"`

	// Agent under test
	Agent AgentConfig `yaml:"agent"`

	// Results persistence
	Results ResultsConfig `yaml:"results"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// RunConfig configures instance resolution and scheduling.
type RunConfig struct {
	// Base seed; sample N of a run resolves with seed+N.
	Seed int64 `yaml:"seed"`

	// Directory that holds per-run artifact directories.
	Workdir string `yaml:"workdir"`

	// How many instances resolve and execute at once.
	Concurrency int `yaml:"concurrency"`

	// Keep artifact directories of passed samples.
	KeepWork bool `yaml:"keep_work"`
}

// AgentConfig configures the external agent command.
type AgentConfig struct {
	// Command and arguments; the question arrives on stdin.
	Command []string `yaml:"command"`

	// Per-question timeout
	Timeout string `yaml:"timeout"`
}

// ResultsConfig configures result persistence.
type ResultsConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			Seed:        1,
			Workdir:     ".gauntlet/work",
			Concurrency: 4,
		},
		Agent: AgentConfig{
			Timeout: "120s",
		},
		Results: ResultsConfig{
			DatabasePath: ".gauntlet/results.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies GAUNTLET_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GAUNTLET_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Run.Seed = seed
		}
	}
	if v := os.Getenv("GAUNTLET_WORKDIR"); v != "" {
		c.Run.Workdir = v
	}
	if v := os.Getenv("GAUNTLET_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Run.Concurrency = n
		}
	}
	if v := os.Getenv("GAUNTLET_AGENT"); v != "" {
		c.Agent.Command = strings.Fields(v)
	}
	if v := os.Getenv("GAUNTLET_AGENT_TIMEOUT"); v != "" {
		c.Agent.Timeout = v
	}
	if v := os.Getenv("GAUNTLET_DB"); v != "" {
		c.Results.DatabasePath = v
	}
	if v := os.Getenv("GAUNTLET_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// GetAgentTimeout returns the agent timeout as a duration.
func (c *Config) GetAgentTimeout() time.Duration {
	d, err := time.ParseDuration(c.Agent.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for values the runner cannot work with.
func (c *Config) Validate() error {
	if c.Run.Concurrency < 1 {
		return fmt.Errorf("run.concurrency must be at least 1, got %d", c.Run.Concurrency)
	}
	if c.Run.Workdir == "" {
		return fmt.Errorf("run.workdir must not be empty")
	}
	if c.Agent.Timeout != "" {
		if _, err := time.ParseDuration(c.Agent.Timeout); err != nil {
			return fmt.Errorf("invalid agent.timeout: %w", err)
		}
	}
	valid := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	return nil
}
