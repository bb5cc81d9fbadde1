package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperifyio/termsense/internal/settings"
)

func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	t.Setenv("FOO", "")
	t.Setenv("BAR", "")
	t.Setenv("BAZ", "")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "\n# sample dotenv file\nFOO=alpha\nexport BAR=\"beta gamma\"\nBAZ=delta # trailing\nnot a pair\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	if err := LoadEnvFiles(envPath, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	for k, want := range map[string]string{"FOO": "alpha", "BAR": "beta gamma", "BAZ": "delta"} {
		if got := os.Getenv(k); got != want {
			t.Fatalf("%s=%q, want %q", k, got, want)
		}
	}
}

func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
	t.Setenv("K", "")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	if err := os.WriteFile(a, []byte("K=first\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}
	if err := LoadEnvFiles(a, b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
}

func TestConfigPrecedence_FlagsEnvSettingsDefaults(t *testing.T) {
	t.Setenv("TERMSENSE_API_KEY", "sk-env")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("TERMSENSE_DATA_DIR", "/tmp/termsense-env")
	t.Setenv("TERMSENSE_CONTENT_LIMIT", "2000")
	t.Setenv("VERBOSE", "yes")

	cfg := Config{LLMModel: "flag-model"}
	ApplyEnvToConfig(&cfg)
	ApplySettings(&cfg, settings.Settings{
		APIKey:        "sk-file",
		Model:         "file-model",
		BaseURL:       "http://file.example/v1",
		ShowRationale: true,
		ContentLimit:  100,
		Style:         "narrative",
	})
	ApplyDefaults(&cfg)

	if cfg.LLMModel != "flag-model" {
		t.Fatalf("model = %q, flag should win", cfg.LLMModel)
	}
	if cfg.LLMAPIKey != "sk-env" {
		t.Fatalf("key = %q, env should be used and settings key never copied", cfg.LLMAPIKey)
	}
	if cfg.LLMBaseURL != "http://file.example/v1" || !cfg.ShowRationale || cfg.Style != "narrative" {
		t.Fatalf("settings overlay missing: %+v", cfg)
	}
	if cfg.ContentLimit != 2000 || cfg.DataDir != "/tmp/termsense-env" || !cfg.Verbose {
		t.Fatalf("env values missing: %+v", cfg)
	}
	if cfg.StoreKind != "sqlite" || cfg.SettingsPath == "" || cfg.UserAgent == "" {
		t.Fatalf("defaults missing: %+v", cfg)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	bad := []Config{
		{StoreKind: "redis"},
		{ExtractMode: "ocr"},
		{Style: "haiku"},
		{ContentLimit: -1},
	}
	for _, c := range bad {
		if err := ValidateConfig(c); err == nil {
			t.Fatalf("expected error for %+v", c)
		}
	}
}
