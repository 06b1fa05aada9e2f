// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/debaite/debaite/internal/core"
	"github.com/debaite/debaite/provider"
	"github.com/debaite/debaite/provider/gemini"
	"github.com/debaite/debaite/provider/generic"
	"github.com/debaite/debaite/provider/openai"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Defaults  DefaultsConfig            `yaml:"defaults"`
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Domains maps participant roles to knowledge domains, consulted
	// before the built-in keyword fallback.
	Domains map[string]string `yaml:"domains,omitempty"`

	// Knowledge is the directory holding per-domain passage files.
	Knowledge string `yaml:"knowledge,omitempty"`

	// Templates is an optional JSON file with custom persona templates.
	Templates string `yaml:"templates,omitempty"`

	Server ServerConfig `yaml:"server,omitempty"`
}

// ServerConfig holds server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DefaultsConfig holds default debate settings.
type DefaultsConfig struct {
	Mode           string `yaml:"mode"`
	MaxRounds      int    `yaml:"max_rounds"`
	WindowSize     int    `yaml:"window_size"`
	SummarizeEvery int    `yaml:"summarize_every"`
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	Batched        bool   `yaml:"batched"`
}

// ProviderConfig holds provider-specific settings.
type ProviderConfig struct {
	// Type selects the implementation: cli, gemini, openai or mock.
	// Empty defaults to the provider's name.
	Type         string        `yaml:"type,omitempty"`
	Command      string        `yaml:"command,omitempty"`
	Args         []string      `yaml:"args,omitempty"`
	APIKey       string        `yaml:"api_key,omitempty"`
	BaseURL      string        `yaml:"base_url,omitempty"`
	DefaultModel string        `yaml:"default_model,omitempty"`
	Models       []string      `yaml:"models,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	MaxRetries   int           `yaml:"max_retries,omitempty"`
	Enabled      bool          `yaml:"enabled"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Mode:           core.ModeHybrid.String(),
			MaxRounds:      3,
			WindowSize:     3,
			SummarizeEvery: 6,
			Provider:       "gemini",
			Model:          "",
		},
		Providers: map[string]ProviderConfig{
			"gemini": {
				Type:       "gemini",
				Command:    "gemini",
				Timeout:    5 * time.Minute,
				MaxRetries: 2,
				Enabled:    true,
			},
			"openai": {
				Type:         "openai",
				DefaultModel: "gpt-4o-mini",
				Timeout:      2 * time.Minute,
				MaxRetries:   2,
				Enabled:      true,
			},
			"mock": {
				Type:    "mock",
				Timeout: 1 * time.Minute,
				Enabled: true,
			},
		},
		Server: ServerConfig{
			Port: 8184,
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from a specific path. A missing file is not
// an error; defaults apply. A .env file in the working directory overrides
// both.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Merge with defaults for any missing providers
	defaultCfg := Default()
	for name, defaultProvider := range defaultCfg.Providers {
		if _, exists := cfg.Providers[name]; !exists {
			cfg.Providers[name] = defaultProvider
		}
	}

	if env, err := LoadEnv(".env"); err == nil {
		ApplyEnvOverrides(cfg, env)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo saves the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
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

// GetProvider returns the configuration for a provider.
func (c *Config) GetProvider(name string) (ProviderConfig, bool) {
	p, ok := c.Providers[name]
	return p, ok
}

// ToProviderConfig converts a ProviderConfig to provider.Config.
func (p ProviderConfig) ToProviderConfig(name string) provider.Config {
	return provider.Config{
		Name:         name,
		Command:      p.Command,
		Args:         p.Args,
		APIKey:       p.APIKey,
		BaseURL:      p.BaseURL,
		DefaultModel: p.DefaultModel,
		Models:       p.Models,
		Timeout:      p.Timeout,
		MaxRetries:   p.MaxRetries,
	}
}

// createProviderFromType creates a provider instance for the config.
func createProviderFromType(typ string, cfg provider.Config) (provider.Provider, error) {
	switch typ {
	case "gemini":
		return gemini.New(cfg), nil
	case "openai":
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		return openai.New(cfg), nil
	case "mock":
		return provider.NewMock(cfg.Name), nil
	case "cli", "":
		return generic.New(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", typ)
	}
}

// CreateProvider creates a provider instance from this configuration.
func (c *Config) CreateProvider(name string) (provider.Provider, error) {
	provCfg, ok := c.GetProvider(name)
	if !ok {
		return nil, fmt.Errorf("provider %s not found in config", name)
	}
	if !provCfg.Enabled {
		return nil, fmt.Errorf("provider %s is disabled", name)
	}
	typ := provCfg.Type
	if typ == "" {
		typ = name
	}
	return createProviderFromType(typ, provCfg.ToProviderConfig(name))
}

// CreateRegistry creates a provider registry from this configuration.
func (c *Config) CreateRegistry() (*provider.Registry, error) {
	registry := provider.NewRegistry()

	for name, provCfg := range c.Providers {
		if !provCfg.Enabled {
			continue
		}
		typ := provCfg.Type
		if typ == "" {
			typ = name
		}
		p, err := createProviderFromType(typ, provCfg.ToProviderConfig(name))
		if err != nil {
			return nil, fmt.Errorf("failed to create provider %s: %w", name, err)
		}
		registry.Register(p)
	}

	return registry, nil
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "debaite.yaml"
	}
	return filepath.Join(home, ".debaite", "config.yaml")
}

// GenerateExample generates an example configuration file.
func GenerateExample() string {
	return `# debaite configuration file
# Place this file at ~/.debaite/config.yaml

defaults:
  mode: hybrid              # Context mode: full, summarized, hybrid
  max_rounds: 3             # Stages: opening + rebuttals + closing
  window_size: 3            # Sliding window, in rounds
  summarize_every: 6        # Compact after this many response turns
  provider: gemini          # Default provider
  model: ""                 # Default model (empty = provider default)
  batched: false            # One call per stage instead of per participant

providers:
  gemini:
    type: gemini
    command: gemini
    timeout: 5m
    max_retries: 2
    enabled: true
  openai:
    type: openai
    default_model: gpt-4o-mini
    # api_key: ...          # Or set OPENAI_API_KEY in the environment
    timeout: 2m
    enabled: true
  mock:
    type: mock
    enabled: true

# Map participant roles to knowledge domains (overrides keyword matching).
domains:
  climate scientist: medical

# Directory with <domain>.json passage files for knowledge augmentation.
knowledge: ""

# JSON file with custom persona templates.
templates: ""

server:
  port: 8184
`
}
