package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file and returns a map of key-value pairs.
func LoadEnv(path string) (map[string]string, error) {
	return godotenv.Read(path)
}

// ApplyEnvOverrides updates the configuration from .env values.
func ApplyEnvOverrides(cfg *Config, env map[string]string) {
	// Server
	if val, ok := env["SERVER_PORT"]; ok {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}

	// Defaults
	if val, ok := env["DEFAULT_MODE"]; ok {
		cfg.Defaults.Mode = val
	}
	if val, ok := env["DEFAULT_PROVIDER"]; ok {
		cfg.Defaults.Provider = val
	}
	if val, ok := env["DEFAULT_MODEL"]; ok {
		cfg.Defaults.Model = val
	}
	if val, ok := env["DEFAULT_MAX_ROUNDS"]; ok {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Defaults.MaxRounds = n
		}
	}
	if val, ok := env["DEFAULT_BATCHED"]; ok {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Defaults.Batched = b
		}
	}

	// Knowledge directory
	if val, ok := env["KNOWLEDGE_DIR"]; ok {
		cfg.Knowledge = val
	}

	// Per-provider settings
	for name, p := range cfg.Providers {
		upper := strings.ToUpper(name)

		if val, ok := env[fmt.Sprintf("PROVIDER_%s_ENABLED", upper)]; ok {
			if b, err := strconv.ParseBool(val); err == nil {
				p.Enabled = b
			}
		}
		if val, ok := env[fmt.Sprintf("PROVIDER_%s_API_KEY", upper)]; ok {
			p.APIKey = val
		}
		if val, ok := env[fmt.Sprintf("PROVIDER_%s_MODEL", upper)]; ok {
			p.DefaultModel = val
		}
		cfg.Providers[name] = p
	}
}
