package openai

import (
	"context"
	"net/http"

	"github.com/leofalp/geniusengine/internal/utils"
	"github.com/leofalp/geniusengine/providers/ai"
	"github.com/leofalp/geniusengine/providers/ai/internal/chatcompletion"
	"github.com/leofalp/geniusengine/providers/ai/internal/upstream"
)

const (
	// DefaultBaseURL is OpenAI's public API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when the configuration names none.
	DefaultModel = "gpt-4o"

	// CredentialName is the environment variable holding the API key.
	CredentialName = "OPENAI_API_KEY"
)

// OpenAIProvider talks to the Chat Completions endpoint.
type OpenAIProvider struct {
	config ai.ProviderConfig
	client *http.Client
}

var _ ai.StreamProvider = (*OpenAIProvider)(nil)

// New returns a provider for config. Blank base URL, model and credential
// names are filled with the OpenAI defaults; the key itself is never read
// from the environment here.
func New(config ai.ProviderConfig) *OpenAIProvider {
	config.ID = ai.ProviderGPT4
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if len(config.CredentialNames) == 0 {
		config.CredentialNames = []string{CredentialName}
	}

	return &OpenAIProvider{
		config: config,
		client: &http.Client{},
	}
}

func (p *OpenAIProvider) ID() ai.ProviderID {
	return ai.ProviderGPT4
}

func (p *OpenAIProvider) Config() ai.ProviderConfig {
	return p.config
}

// WithHttpClient sets a custom HTTP client
func (p *OpenAIProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// SendMessage implements [ai.Provider].
func (p *OpenAIProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.Result, error) {
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
		classified := ai.EmptyResponseError(ai.ProviderGPT4)
		end(classified)
		return nil, classified
	}

	end(nil)
	return &ai.Result{Content: content, ProviderUsed: ai.ProviderGPT4}, nil
}

// OpenStream implements [ai.StreamProvider].
func (p *OpenAIProvider) OpenStream(ctx context.Context, request ai.ChatRequest) (*ai.RawStream, error) {
	if !p.config.HasCredential() {
		return nil, ai.MissingCredentialError(p.config)
	}

	end := upstream.Begin(ctx, p.config, request, true)

	response, err := utils.DoPostStream(
		ctx,
		p.client,
		p.config.BaseURL+chatcompletion.Endpoint,
		p.config.APIKey,
		chatcompletion.NewRequest(p.config, request, true),
	)
	if err != nil {
		classified := upstream.Failure(p.config, err, p.fromStatus)
		end(classified)
		return nil, classified
	}

	end(nil)
	return &ai.RawStream{Body: response.Body, Decoder: chatcompletion.Decoder{}}, nil
}

func (p *OpenAIProvider) fromStatus(statusCode int, statusText string, body []byte) *ai.Error {
	return errorFromStatus(p.config, statusCode, statusText, body)
}

// errorFromStatus maps a non-2xx answer; OpenAI reports failures as
// {"error":{"message":...}}.
func errorFromStatus(config ai.ProviderConfig, statusCode int, statusText string, body []byte) *ai.Error {
	return chatcompletion.StatusError(config, statusCode, statusText, body)
}
