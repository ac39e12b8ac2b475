package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leofalp/geniusengine/providers/ai"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := env[name]
		return value, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(WithoutEnvFiles(), WithLookup(lookupFrom(nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DefaultProvider != ai.ProviderClaude {
		t.Errorf("DefaultProvider = %q", cfg.DefaultProvider)
	}
	if cfg.RequestTimeout != 60*time.Second || cfg.StreamTimeout != 120*time.Second || cfg.StallTimeout != 30*time.Second {
		t.Errorf("unexpected timeouts %+v", cfg)
	}
	for _, id := range ai.Providers {
		provider := cfg.Provider(id)
		if provider.ID != id || provider.HasCredential() {
			t.Errorf("%s: unexpected config %+v", id, provider)
		}
		if provider.MaxTokens != 1024 || provider.Temperature != 0.7 {
			t.Errorf("%s: MaxTokens=%d Temperature=%v", id, provider.MaxTokens, provider.Temperature)
		}
	}
}

func TestLoad_Credentials(t *testing.T) {
	cfg, err := Load(WithoutEnvFiles(), WithLookup(lookupFrom(map[string]string{
		"ANTHROPIC_API_KEY":   " sk-ant ",
		"OPENAI_API_KEY":      "sk-openai",
		"PERPLEXITY_API_KEY":  "   ",
		"OPENAI_API_BASE_URL": "http://localhost:8080/v1/",
	})))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.Provider(ai.ProviderClaude).APIKey; got != "sk-ant" {
		t.Errorf("claude APIKey = %q", got)
	}
	if got := cfg.Provider(ai.ProviderGPT4); got.APIKey != "sk-openai" || got.BaseURL != "http://localhost:8080/v1" {
		t.Errorf("gpt4 config = %+v", got)
	}
	if cfg.Provider(ai.ProviderPerplexity).HasCredential() {
		t.Error("blank credential must count as missing")
	}
	if cfg.Provider(ai.ProviderGemini).HasCredential() {
		t.Error("gemini should have no credential")
	}
}

func TestLoad_GeminiCredentialFallbacks(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"primary", map[string]string{"GOOGLE_AI_API_KEY": "a", "GEMINI_API_KEY": "b", "GOOGLE_API_KEY": "c"}, "a"},
		{"second", map[string]string{"GEMINI_API_KEY": "b", "GOOGLE_API_KEY": "c"}, "b"},
		{"third", map[string]string{"GOOGLE_API_KEY": "c"}, "c"},
		{"blank primary", map[string]string{"GOOGLE_AI_API_KEY": " ", "GOOGLE_API_KEY": "c"}, "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(WithoutEnvFiles(), WithLookup(lookupFrom(tt.env)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := cfg.Provider(ai.ProviderGemini).APIKey; got != tt.want {
				t.Errorf("APIKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "geniusengine.yaml", `
version: v1
defaultProvider: gpt4
timeouts:
  request: 45s
  stall: 5s
providers:
  claude:
    model: claude-3-5-haiku-latest
    maxTokens: 2048
    temperature: 0
  perplexity:
    baseURL: http://proxy.internal/
`)

	cfg, err := Load(WithoutEnvFiles(), WithFile(path), WithLookup(lookupFrom(map[string]string{
		"PERPLEXITY_API_BASE_URL": "http://env.internal",
	})))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DefaultProvider != ai.ProviderGPT4 {
		t.Errorf("DefaultProvider = %q", cfg.DefaultProvider)
	}
	if cfg.RequestTimeout != 45*time.Second || cfg.StallTimeout != 5*time.Second || cfg.StreamTimeout != 120*time.Second {
		t.Errorf("unexpected timeouts %v %v %v", cfg.RequestTimeout, cfg.StreamTimeout, cfg.StallTimeout)
	}

	claude := cfg.Provider(ai.ProviderClaude)
	if claude.Model != "claude-3-5-haiku-latest" || claude.MaxTokens != 2048 || claude.Temperature != 0 {
		t.Errorf("claude config = %+v", claude)
	}
	if got := cfg.Provider(ai.ProviderPerplexity).BaseURL; got != "http://env.internal" {
		t.Errorf("environment should win over the file, got %q", got)
	}
	if got := cfg.Provider(ai.ProviderGPT4).Temperature; got != 0.7 {
		t.Errorf("untouched provider Temperature = %v", got)
	}
}

func TestLoad_FileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing version", "defaultProvider: gpt4\n", "missing 'version'"},
		{"wrong version", "version: v2\n", "unsupported config version"},
		{"unknown default", "version: v1\ndefaultProvider: llama\n", "unknown default provider"},
		{"unknown provider", "version: v1\nproviders:\n  mistral:\n    model: x\n", "unknown provider"},
		{"negative max tokens", "version: v1\nproviders:\n  gpt4:\n    maxTokens: -1\n", "must not be negative"},
		{"invalid yaml", "version: [v1\n", "parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "config.yaml", tt.content)
			_, err := Load(WithoutEnvFiles(), WithFile(path), WithLookup(lookupFrom(nil)))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}

	if _, err := Load(WithoutEnvFiles(), WithFile(filepath.Join(t.TempDir(), "absent.yaml"))); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestLoad_EnvFilesNeverOverride(t *testing.T) {
	for _, name := range []string{"OPENAI_API_KEY", "PERPLEXITY_API_KEY"} {
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
	t.Setenv("ANTHROPIC_API_KEY", "from-process")

	local := writeFile(t, ".env.local", "OPENAI_API_KEY=from-local\nANTHROPIC_API_KEY=from-local\n")
	shared := writeFile(t, ".env", "OPENAI_API_KEY=from-shared\nPERPLEXITY_API_KEY=from-shared\n")
	missing := filepath.Join(t.TempDir(), "absent.env")

	cfg, err := Load(WithEnvFiles(missing, local, shared))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.Provider(ai.ProviderClaude).APIKey; got != "from-process" {
		t.Errorf("claude APIKey = %q", got)
	}
	if got := cfg.Provider(ai.ProviderGPT4).APIKey; got != "from-local" {
		t.Errorf("gpt4 APIKey = %q", got)
	}
	if got := cfg.Provider(ai.ProviderPerplexity).APIKey; got != "from-shared" {
		t.Errorf("perplexity APIKey = %q", got)
	}
}

func TestDispatchOptions(t *testing.T) {
	cfg := Default()
	if got := len(cfg.DispatchOptions()); got != 4 {
		t.Errorf("DispatchOptions() returned %d options", got)
	}
}
