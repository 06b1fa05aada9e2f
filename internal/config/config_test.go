package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Defaults.Mode != "hybrid" {
		t.Errorf("default mode = %q, want hybrid", cfg.Defaults.Mode)
	}
	if cfg.Defaults.MaxRounds != 3 {
		t.Errorf("default max rounds = %d, want 3", cfg.Defaults.MaxRounds)
	}
	if cfg.Defaults.SummarizeEvery != 6 {
		t.Errorf("default summarize_every = %d, want 6", cfg.Defaults.SummarizeEvery)
	}
	for _, name := range []string{"gemini", "openai", "mock"} {
		p, ok := cfg.GetProvider(name)
		if !ok {
			t.Fatalf("default config missing provider %s", name)
		}
		if !p.Enabled {
			t.Errorf("provider %s disabled by default", name)
		}
	}
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom on missing file: %v", err)
	}
	if cfg.Defaults.Provider != "gemini" {
		t.Errorf("provider = %q, want default gemini", cfg.Defaults.Provider)
	}
}

func TestLoadFromMergesProviders(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	content := `
defaults:
  mode: summarized
  max_rounds: 5
  provider: mycli
providers:
  mycli:
    type: cli
    command: mycli
    args: ["--quiet"]
    timeout: 30s
    enabled: true
domains:
  climate scientist: medical
knowledge: /var/lib/debaite/knowledge
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Defaults.Mode != "summarized" {
		t.Errorf("mode = %q, want summarized", cfg.Defaults.Mode)
	}
	if cfg.Defaults.MaxRounds != 5 {
		t.Errorf("max rounds = %d, want 5", cfg.Defaults.MaxRounds)
	}

	mycli, ok := cfg.GetProvider("mycli")
	if !ok {
		t.Fatal("custom provider missing after load")
	}
	if mycli.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", mycli.Timeout)
	}

	// Default providers survive the merge.
	if _, ok := cfg.GetProvider("gemini"); !ok {
		t.Error("default gemini provider dropped by merge")
	}

	if cfg.Domains["climate scientist"] != "medical" {
		t.Errorf("domains = %v", cfg.Domains)
	}
	if cfg.Knowledge != "/var/lib/debaite/knowledge" {
		t.Errorf("knowledge dir = %q", cfg.Knowledge)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.Defaults.Provider = "mock"
	cfg.Server.Port = 9999
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Defaults.Provider != "mock" {
		t.Errorf("provider = %q, want mock", loaded.Defaults.Provider)
	}
	if loaded.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", loaded.Server.Port)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	env := map[string]string{
		"DEFAULT_MODE":            "full",
		"DEFAULT_PROVIDER":        "openai",
		"DEFAULT_MAX_ROUNDS":      "4",
		"DEFAULT_BATCHED":         "true",
		"SERVER_PORT":             "9090",
		"PROVIDER_GEMINI_ENABLED": "false",
		"PROVIDER_OPENAI_API_KEY": "sk-test",
		"KNOWLEDGE_DIR":           "/tmp/knowledge",
	}
	ApplyEnvOverrides(cfg, env)

	if cfg.Defaults.Mode != "full" {
		t.Errorf("mode = %q, want full", cfg.Defaults.Mode)
	}
	if cfg.Defaults.Provider != "openai" {
		t.Errorf("provider = %q, want openai", cfg.Defaults.Provider)
	}
	if cfg.Defaults.MaxRounds != 4 {
		t.Errorf("max rounds = %d, want 4", cfg.Defaults.MaxRounds)
	}
	if !cfg.Defaults.Batched {
		t.Error("batched override not applied")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if p, _ := cfg.GetProvider("gemini"); p.Enabled {
		t.Error("gemini should be disabled")
	}
	if p, _ := cfg.GetProvider("openai"); p.APIKey != "sk-test" {
		t.Errorf("openai api key = %q", p.APIKey)
	}
	if cfg.Knowledge != "/tmp/knowledge" {
		t.Errorf("knowledge dir = %q", cfg.Knowledge)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nDEFAULT_PROVIDER=mock\nSERVER_PORT=7777\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	env, err := LoadEnv(path)
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if env["DEFAULT_PROVIDER"] != "mock" {
		t.Errorf("DEFAULT_PROVIDER = %q", env["DEFAULT_PROVIDER"])
	}
	if env["SERVER_PORT"] != "7777" {
		t.Errorf("SERVER_PORT = %q", env["SERVER_PORT"])
	}
}

func TestCreateRegistry(t *testing.T) {
	cfg := Default()
	p := cfg.Providers["gemini"]
	p.Enabled = false
	cfg.Providers["gemini"] = p

	reg, err := cfg.CreateRegistry()
	if err != nil {
		t.Fatalf("CreateRegistry failed: %v", err)
	}
	if reg.Has("gemini") {
		t.Error("disabled provider registered")
	}
	for _, name := range []string{"openai", "mock"} {
		if !reg.Has(name) {
			t.Errorf("provider %s not registered", name)
		}
	}
}

func TestCreateProviderUnknownType(t *testing.T) {
	cfg := Default()
	cfg.Providers["weird"] = ProviderConfig{Type: "quantum", Enabled: true}

	if _, err := cfg.CreateProvider("weird"); err == nil {
		t.Fatal("expected error for unknown provider type")
	}
	if _, err := cfg.CreateProvider("ghost"); err == nil {
		t.Fatal("expected error for unconfigured provider")
	}
}
