package dispatch

import (
	"fmt"
	"net/http"

	"github.com/leofalp/geniusengine/providers/ai"
	"github.com/leofalp/geniusengine/providers/ai/anthropic"
	"github.com/leofalp/geniusengine/providers/ai/gemini"
	"github.com/leofalp/geniusengine/providers/ai/openai"
	"github.com/leofalp/geniusengine/providers/ai/perplexity"
)

// Registry maps each provider identifier to its adapter. It is built once
// at startup and read-only afterwards.
type Registry struct {
	providers map[ai.ProviderID]ai.Provider
}

// NewRegistry indexes providers by ID. Registering an identifier twice or
// one outside the known set is an error.
func NewRegistry(providers ...ai.Provider) (*Registry, error) {
	registry := &Registry{providers: make(map[ai.ProviderID]ai.Provider, len(providers))}
	for _, provider := range providers {
		id := provider.ID()
		if _, ok := ai.ParseProviderID(string(id)); !ok {
			return nil, fmt.Errorf("unknown provider %q", id)
		}
		if _, exists := registry.providers[id]; exists {
			return nil, fmt.Errorf("provider %q registered twice", id)
		}
		registry.providers[id] = provider
	}
	return registry, nil
}

// DefaultRegistry builds the four adapters from configs. A provider missing
// from configs is still registered, without credential, so that requests
// for it fail with a configuration error. A nil httpClient keeps each
// adapter's own client.
func DefaultRegistry(configs map[ai.ProviderID]ai.ProviderConfig, httpClient *http.Client) *Registry {
	providers := []ai.Provider{
		anthropic.New(configs[ai.ProviderClaude]),
		openai.New(configs[ai.ProviderGPT4]),
		gemini.New(configs[ai.ProviderGemini]),
		perplexity.New(configs[ai.ProviderPerplexity]),
	}

	registry := &Registry{providers: make(map[ai.ProviderID]ai.Provider, len(providers))}
	for _, provider := range providers {
		if httpClient != nil {
			provider.WithHttpClient(httpClient)
		}
		registry.providers[provider.ID()] = provider
	}
	return registry
}

// Lookup returns the adapter registered for id.
func (r *Registry) Lookup(id ai.ProviderID) (ai.Provider, bool) {
	provider, ok := r.providers[id]
	return provider, ok
}

// Providers returns the registered adapters in [ai.Providers] order.
func (r *Registry) Providers() []ai.Provider {
	providers := make([]ai.Provider, 0, len(r.providers))
	for _, id := range ai.Providers {
		if provider, ok := r.providers[id]; ok {
			providers = append(providers, provider)
		}
	}
	return providers
}
