package perplexity

import (
	"context"
	"net/http"

	"github.com/leofalp/geniusengine/internal/utils"
	"github.com/leofalp/geniusengine/providers/ai"
	"github.com/leofalp/geniusengine/providers/ai/internal/chatcompletion"
	"github.com/leofalp/geniusengine/providers/ai/internal/upstream"
)

const (
	// DefaultBaseURL is Perplexity's API root.
	DefaultBaseURL = "https://api.perplexity.ai"

	// DefaultModel is used when the configuration names none.
	DefaultModel = "sonar"

	// CredentialName is the environment variable holding the API key.
	CredentialName = "PERPLEXITY_API_KEY"
)

type PerplexityProvider struct {
	config ai.ProviderConfig
	client *http.Client
}

var _ ai.Provider = (*PerplexityProvider)(nil)

// New returns a provider for config, filling blank base URL, model and
// credential names with the Perplexity defaults.
func New(config ai.ProviderConfig) *PerplexityProvider {
	config.ID = ai.ProviderPerplexity
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if len(config.CredentialNames) == 0 {
		config.CredentialNames = []string{CredentialName}
	}

	return &PerplexityProvider{
		config: config,
		client: &http.Client{},
	}
}

func (p *PerplexityProvider) ID() ai.ProviderID {
	return ai.ProviderPerplexity
}

func (p *PerplexityProvider) Config() ai.ProviderConfig {
	return p.config
}

func (p *PerplexityProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// SendMessage implements [ai.Provider]. Citations are returned alongside the
// content, which is left exactly as the model wrote it apart from trimming.
func (p *PerplexityProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.Result, error) {
	if !p.config.HasCredential() {
		return nil, ai.MissingCredentialError(p.config)
	}

	end := upstream.Begin(ctx, p.config, request, false)

	_, response, err := utils.DoPostSync[chatcompletion.Response](
		ctx,
		p.client,
		p.config.BaseURL+chatcompletion.Endpoint,
		p.config.APIKey,
		chatcompletion.NewRequest(p.config, request, false),
	)
	if err != nil {
		classified := upstream.Failure(p.config, err, p.fromStatus)
		end(classified)
		return nil, classified
	}

	content := response.Text()
	if content == "" {
		classified := ai.EmptyResponseError(ai.ProviderPerplexity)
		end(classified)
		return nil, classified
	}

	end(nil)
	return &ai.Result{
		Content:      content,
		ProviderUsed: ai.ProviderPerplexity,
		Citations:    response.Citations,
	}, nil
}

func (p *PerplexityProvider) fromStatus(statusCode int, statusText string, body []byte) *ai.Error {
	return errorFromStatus(p.config, statusCode, statusText, body)
}

// errorFromStatus maps a non-2xx answer. Perplexity uses the OpenAI envelope
// for most failures and {"detail":...} for request validation errors.
func errorFromStatus(config ai.ProviderConfig, statusCode int, statusText string, body []byte) *ai.Error {
	return chatcompletion.StatusError(config, statusCode, statusText, body)
}
