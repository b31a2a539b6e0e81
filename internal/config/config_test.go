package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parley.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
default_provider: local
history_path: /tmp/parley.db
providers:
  local:
    kind: ollama
    base_url: http://localhost:11434
    model: llama3
    max_history_pairs: 8
  cloud:
    kind: anthropic
    api_key: sk-test
    model: claude-test
    reasoning_header: "<scratch>"
    visible_models:
      - claude-test
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultProvider != "local" {
		t.Errorf("default_provider = %q", cfg.DefaultProvider)
	}
	if cfg.HistoryPath != "/tmp/parley.db" {
		t.Errorf("history_path = %q", cfg.HistoryPath)
	}

	local, err := cfg.Provider("")
	if err != nil {
		t.Fatalf("Provider: %v", err)
	}
	if local.Kind != "ollama" || local.Model != "llama3" || local.MaxHistoryPairs != 8 {
		t.Errorf("local = %+v", local)
	}

	cloud, err := cfg.Provider("cloud")
	if err != nil {
		t.Fatalf("Provider: %v", err)
	}
	if cloud.APIKey != "sk-test" || cloud.ReasoningHeader != "<scratch>" {
		t.Errorf("cloud = %+v", cloud)
	}
	if len(cloud.VisibleModels) != 1 {
		t.Errorf("visible_models = %v", cloud.VisibleModels)
	}
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Providers) != 0 {
		t.Errorf("providers = %v", cfg.Providers)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
default_provider: local
providers:
  local:
    kind: ollama
    model: llama3
`)
	t.Setenv("PARLEY_PROVIDERS__LOCAL__MODEL", "mistral")
	t.Setenv("PARLEY_PROVIDERS__LOCAL__API_KEY", "sk-from-env")
	t.Setenv("PARLEY_PROVIDERS__LOCAL__BASE_URL", "http://10.0.0.2:11434")
	t.Setenv("PARLEY_HISTORY_PATH", "/tmp/override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	local, err := cfg.Provider("local")
	if err != nil {
		t.Fatalf("Provider: %v", err)
	}
	if local.Model != "mistral" {
		t.Errorf("model = %q, want env override", local.Model)
	}
	if local.APIKey != "sk-from-env" {
		t.Errorf("api_key = %q, want env override", local.APIKey)
	}
	if local.BaseURL != "http://10.0.0.2:11434" {
		t.Errorf("base_url = %q, want env override", local.BaseURL)
	}
	if cfg.HistoryPath != "/tmp/override.db" {
		t.Errorf("history_path = %q, want env override", cfg.HistoryPath)
	}
}

func TestEnvOnlyCredential(t *testing.T) {
	t.Setenv("PARLEY_DEFAULT_PROVIDER", "cloud")
	t.Setenv("PARLEY_PROVIDERS__CLOUD__KIND", "anthropic")
	t.Setenv("PARLEY_PROVIDERS__CLOUD__API_KEY", "sk-env-only")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cloud, err := cfg.Provider("")
	if err != nil {
		t.Fatalf("Provider: %v", err)
	}
	if cloud.Kind != "anthropic" || cloud.APIKey != "sk-env-only" {
		t.Errorf("cloud = %+v, want env-supplied kind and credential", cloud)
	}
}

func TestProviderUnknownName(t *testing.T) {
	cfg := &Config{Providers: map[string]ProviderConfig{}}
	if _, err := cfg.Provider("ghost"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestProviderNoDefault(t *testing.T) {
	cfg := &Config{}
	if _, err := cfg.Provider(""); err == nil {
		t.Error("expected error when no default is configured")
	}
}
