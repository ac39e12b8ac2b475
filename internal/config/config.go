package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/geniusengine/core/dispatch"
	"github.com/leofalp/geniusengine/providers/ai"
	"github.com/leofalp/geniusengine/providers/ai/anthropic"
	"github.com/leofalp/geniusengine/providers/ai/gemini"
	"github.com/leofalp/geniusengine/providers/ai/openai"
	"github.com/leofalp/geniusengine/providers/ai/perplexity"
)

// FileVersion is the only supported config file schema version.
const FileVersion = "v1"

const (
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.7
)

// DefaultEnvFiles are loaded in order; the first file to set a variable wins.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Config is the immutable result of Load.
type Config struct {
	Providers       map[ai.ProviderID]ai.ProviderConfig
	DefaultProvider ai.ProviderID
	RequestTimeout  time.Duration
	StreamTimeout   time.Duration
	StallTimeout    time.Duration
}

// Provider returns the configuration of id.
func (c *Config) Provider(id ai.ProviderID) ai.ProviderConfig {
	return c.Providers[id]
}

// DispatchOptions translates the configuration into dispatcher options.
func (c *Config) DispatchOptions() []dispatch.Option {
	return []dispatch.Option{
		dispatch.WithDefaultProvider(c.DefaultProvider),
		dispatch.WithRequestTimeout(c.RequestTimeout),
		dispatch.WithStreamTimeout(c.StreamTimeout),
		dispatch.WithStallTimeout(c.StallTimeout),
	}
}

// File is the YAML configuration file.
//
//	version: v1
//	defaultProvider: gpt4
//	timeouts:
//	  request: 45s
//	  stall: 10s
//	providers:
//	  claude:
//	    model: claude-3-5-haiku-latest
//	    maxTokens: 2048
type File struct {
	Version         string                  `yaml:"version"`
	DefaultProvider string                  `yaml:"defaultProvider"`
	Timeouts        TimeoutsFile            `yaml:"timeouts"`
	Providers       map[string]ProviderFile `yaml:"providers"`
}

// TimeoutsFile holds Go duration strings ("30s", "2m").
type TimeoutsFile struct {
	Request *time.Duration `yaml:"request"`
	Stream  *time.Duration `yaml:"stream"`
	Stall   *time.Duration `yaml:"stall"`
}

// ProviderFile overrides the non-secret settings of one provider.
type ProviderFile struct {
	BaseURL     string   `yaml:"baseURL"`
	Model       string   `yaml:"model"`
	MaxTokens   int      `yaml:"maxTokens"`
	Temperature *float64 `yaml:"temperature"`
}

// providerEnv names the variables read for each provider.
type providerEnv struct {
	credentials []string
	baseURL     string
}

var providerEnvs = map[ai.ProviderID]providerEnv{
	ai.ProviderClaude:     {credentials: []string{anthropic.CredentialName}, baseURL: "ANTHROPIC_API_BASE_URL"},
	ai.ProviderGPT4:       {credentials: []string{openai.CredentialName}, baseURL: "OPENAI_API_BASE_URL"},
	ai.ProviderGemini:     {credentials: gemini.CredentialNames, baseURL: "GEMINI_API_BASE_URL"},
	ai.ProviderPerplexity: {credentials: []string{perplexity.CredentialName}, baseURL: "PERPLEXITY_API_BASE_URL"},
}

// Default returns the configuration used when nothing else is set. No
// provider has a credential.
func Default() *Config {
	cfg := &Config{
		Providers:       make(map[ai.ProviderID]ai.ProviderConfig, len(ai.Providers)),
		DefaultProvider: ai.DefaultProvider,
		RequestTimeout:  dispatch.DefaultRequestTimeout,
		StreamTimeout:   dispatch.DefaultStreamTimeout,
		StallTimeout:    dispatch.DefaultStallTimeout,
	}
	for _, id := range ai.Providers {
		cfg.Providers[id] = ai.ProviderConfig{
			ID:              id,
			CredentialNames: providerEnvs[id].credentials,
			MaxTokens:       DefaultMaxTokens,
			Temperature:     DefaultTemperature,
		}
	}
	return cfg
}

// Load builds the configuration. It is meant to run once, in main.
func Load(opts ...Option) (*Config, error) {
	o := applyOptions(opts...)

	if o.loadEnvFiles {
		if err := loadEnvFiles(o.envFiles); err != nil {
			return nil, err
		}
	}

	cfg := Default()

	if o.file != "" {
		file, err := ReadFile(o.file)
		if err != nil {
			return nil, err
		}
		if err := cfg.apply(file); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv(o.lookup)
	return cfg, nil
}

// ReadFile parses and validates a YAML configuration file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := validateVersion(file.Version); err != nil {
		return nil, err
	}
	return &file, nil
}

func validateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("config file missing 'version' field (expected: %s)", FileVersion)
	}
	if version != FileVersion {
		return fmt.Errorf("unsupported config version %q (supported: %s)", version, FileVersion)
	}
	return nil
}

func (c *Config) apply(file *File) error {
	if file.DefaultProvider != "" {
		id, ok := ai.ParseProviderID(file.DefaultProvider)
		if !ok {
			return fmt.Errorf("config file: unknown default provider %q", file.DefaultProvider)
		}
		c.DefaultProvider = id
	}

	if file.Timeouts.Request != nil {
		c.RequestTimeout = *file.Timeouts.Request
	}
	if file.Timeouts.Stream != nil {
		c.StreamTimeout = *file.Timeouts.Stream
	}
	if file.Timeouts.Stall != nil {
		c.StallTimeout = *file.Timeouts.Stall
	}

	for name, override := range file.Providers {
		id, ok := ai.ParseProviderID(name)
		if !ok {
			return fmt.Errorf("config file: unknown provider %q", name)
		}
		if override.MaxTokens < 0 {
			return fmt.Errorf("config file: %s maxTokens must not be negative", name)
		}

		provider := c.Providers[id]
		if override.BaseURL != "" {
			provider.BaseURL = strings.TrimRight(override.BaseURL, "/")
		}
		if override.Model != "" {
			provider.Model = override.Model
		}
		if override.MaxTokens > 0 {
			provider.MaxTokens = override.MaxTokens
		}
		if override.Temperature != nil {
			provider.Temperature = *override.Temperature
		}
		c.Providers[id] = provider
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	for id, env := range providerEnvs {
		provider := c.Providers[id]
		provider.APIKey = firstSet(lookup, env.credentials...)
		if baseURL := firstSet(lookup, env.baseURL); baseURL != "" {
			provider.BaseURL = strings.TrimRight(baseURL, "/")
		}
		c.Providers[id] = provider
	}
}

// firstSet returns the first non-blank value among names.
func firstSet(lookup func(string) (string, bool), names ...string) string {
	for _, name := range names {
		if value, ok := lookup(name); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// loadEnvFiles loads each existing file without overriding variables
// already present. Missing files are skipped.
func loadEnvFiles(paths []string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}
