// Package config holds todosync configuration: what to scan, how to reach
// the tracker, and how issue text gets generated.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all todosync configuration.
type Config struct {
	// What to scan
	Scan ScanConfig `yaml:"scan"`

	// Tracker connection
	Tracker TrackerConfig `yaml:"tracker"`

	// Issue text generation
	Generator GeneratorConfig `yaml:"generator"`

	// Run execution settings
	Execution ExecutionConfig `yaml:"execution"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ScanConfig configures annotation extraction.
type ScanConfig struct {
	Root       string   `yaml:"root"`
	Prefixes   []string `yaml:"prefixes"`
	Extensions []string `yaml:"extensions"` // empty = every file
}

// TrackerConfig configures the issue tracker gateway.
type TrackerConfig struct {
	Provider string `yaml:"provider"` // github
	BaseURL  string `yaml:"base_url"`
	Token    string `yaml:"token"`
	Owner    string `yaml:"owner"`
	Repo     string `yaml:"repo"`
	Label    string `yaml:"label"`
	Timeout  string `yaml:"timeout"`
}

// GeneratorConfig configures issue title/body generation.
type GeneratorConfig struct {
	Mode    string `yaml:"mode"` // template, gemini
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// ExecutionConfig configures run concurrency and watch behavior.
type ExecutionConfig struct {
	Workers  int    `yaml:"workers"`
	Debounce string `yaml:"debounce"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Root:     ".",
			Prefixes: []string{"TODO", "FIXME", "BUG", "HACK"},
		},
		Tracker: TrackerConfig{
			Provider: "github",
			BaseURL:  "https://api.github.com",
			Label:    "todosync",
			Timeout:  "30s",
		},
		Generator: GeneratorConfig{
			Mode:    "template",
			Model:   "gemini-2.0-flash",
			Timeout: "60s",
		},
		Execution: ExecutionConfig{
			Workers:  8,
			Debounce: "2s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist. Environment overrides are applied last.
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

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides. Env vars win
// over file values so tokens can stay out of checked-in configs.
func (c *Config) applyEnvOverrides() {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		c.Tracker.Token = token
	}
	if token := os.Getenv("TODOSYNC_TOKEN"); token != "" {
		c.Tracker.Token = token
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Generator.APIKey = key
	}
	if root := os.Getenv("TODOSYNC_ROOT"); root != "" {
		c.Scan.Root = root
	}
}

// Validate checks that a full reconciliation run can proceed.
func (c *Config) Validate() error {
	if err := c.ValidateScan(); err != nil {
		return err
	}
	switch c.Tracker.Provider {
	case "github":
	default:
		return fmt.Errorf("unknown tracker provider: %q", c.Tracker.Provider)
	}
	if c.Tracker.Owner == "" || c.Tracker.Repo == "" {
		return fmt.Errorf("tracker owner and repo are required")
	}
	if c.Tracker.Token == "" {
		return fmt.Errorf("tracker token is required (set GITHUB_TOKEN)")
	}
	switch c.Generator.Mode {
	case "template":
	case "gemini":
		if c.Generator.APIKey == "" {
			return fmt.Errorf("generator mode gemini requires an API key (set GEMINI_API_KEY)")
		}
	default:
		return fmt.Errorf("unknown generator mode: %q", c.Generator.Mode)
	}
	return nil
}

// ValidateScan checks only what extraction needs, so scan-only commands
// work without tracker credentials.
func (c *Config) ValidateScan() error {
	if c.Scan.Root == "" {
		return fmt.Errorf("scan root is required")
	}
	if len(c.Scan.Prefixes) == 0 {
		return fmt.Errorf("at least one annotation prefix is required")
	}
	return nil
}

// GetTrackerTimeout returns the per-call tracker timeout.
func (c *Config) GetTrackerTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Tracker.Timeout); err == nil {
		return d
	}
	return 30 * time.Second
}

// GetGeneratorTimeout returns the per-call generation timeout.
func (c *Config) GetGeneratorTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Generator.Timeout); err == nil {
		return d
	}
	return 60 * time.Second
}

// GetDebounce returns the watch-mode debounce interval.
func (c *Config) GetDebounce() time.Duration {
	if d, err := time.ParseDuration(c.Execution.Debounce); err == nil && d > 0 {
		return d
	}
	return 2 * time.Second
}

// GetWorkers returns the bounded worker-pool size.
func (c *Config) GetWorkers() int {
	if c.Execution.Workers > 0 {
		return c.Execution.Workers
	}
	return 8
}
