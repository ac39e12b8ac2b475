package gemini

import (
	"context"
	"net/http"
	"net/url"

	"github.com/leofalp/geniusengine/internal/utils"
	"github.com/leofalp/geniusengine/providers/ai"
	"github.com/leofalp/geniusengine/providers/ai/internal/upstream"
)

const (
	// DefaultBaseURL is the v1beta root of the Generative Language API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is used when the configuration names none.
	DefaultModel = "gemini-2.0-flash"

	roleModel = "model"
)

// CredentialNames are the environment variables that may hold the key, in
// lookup order.
var CredentialNames = []string{"GOOGLE_AI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"}

// GeminiProvider implements the ai.Provider interface for Google's Gemini API.
type GeminiProvider struct {
	config ai.ProviderConfig
	client *http.Client
}

var _ ai.Provider = (*GeminiProvider)(nil)

// New returns a provider for config, filling blank base URL, model and
// credential names with the Gemini defaults.
func New(config ai.ProviderConfig) *GeminiProvider {
	config.ID = ai.ProviderGemini
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if len(config.CredentialNames) == 0 {
		config.CredentialNames = CredentialNames
	}

	return &GeminiProvider{
		config: config,
		client: &http.Client{},
	}
}

func (p *GeminiProvider) ID() ai.ProviderID {
	return ai.ProviderGemini
}

func (p *GeminiProvider) Config() ai.ProviderConfig {
	return p.config
}

// WithHttpClient sets a custom HTTP client.
func (p *GeminiProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// endpoint builds .../models/{model}:generateContent?key={credential}.
func (p *GeminiProvider) endpoint() (string, error) {
	endpoint, err := url.Parse(p.config.BaseURL + "/models/" + url.PathEscape(p.config.Model) + ":generateContent")
	if err != nil {
		return "", err
	}
	query := endpoint.Query()
	query.Set("key", p.config.APIKey)
	endpoint.RawQuery = query.Encode()
	return endpoint.String(), nil
}

// buildRequest renames the assistant role to "model" and moves the system
// instruction into its own field.
func (p *GeminiProvider) buildRequest(request ai.ChatRequest) generateContentRequest {
	turns := ai.ConversationTurns(request.History)
	contents := make([]content, 0, len(turns)+1)
	for _, turn := range turns {
		role := string(ai.RoleUser)
		if turn.Role == ai.RoleAssistant {
			role = roleModel
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: turn.Content}}})
	}
	contents = append(contents, content{Role: string(ai.RoleUser), Parts: []part{{Text: request.Message}}})

	return generateContentRequest{
		Contents:          contents,
		SystemInstruction: &content{Parts: []part{{Text: request.SystemInstruction}}},
		GenerationConfig: &generationConfig{
			MaxOutputTokens: p.config.MaxTokens,
			Temperature:     utils.Ptr(p.config.Temperature),
		},
	}
}

// SendMessage implements the ai.Provider interface.
func (p *GeminiProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.Result, error) {
	if !p.config.HasCredential() {
		return nil, ai.MissingCredentialError(p.config)
	}

	endpoint, err := p.endpoint()
	if err != nil {
		return nil, &ai.Error{Kind: ai.KindTransport, Provider: ai.ProviderGemini, Message: "Invalid Gemini endpoint", Cause: err}
	}

	end := upstream.Begin(ctx, p.config, request, false)

	// The credential is in the query string, so no bearer token.
	_, response, err := utils.DoPostSync[generateContentResponse](ctx, p.client, endpoint, "", p.buildRequest(request))
	if err != nil {
		classified := upstream.Failure(p.config, err, p.fromStatus)
		end(classified)
		return nil, classified
	}

	text := response.text()
	if text == "" {
		classified := ai.EmptyResponseError(ai.ProviderGemini)
		if response != nil && response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
			classified.Message += " (blocked: " + response.PromptFeedback.BlockReason + ")"
		}
		end(classified)
		return nil, classified
	}

	end(nil)
	return &ai.Result{Content: text, ProviderUsed: ai.ProviderGemini}, nil
}

func (p *GeminiProvider) fromStatus(statusCode int, statusText string, body []byte) *ai.Error {
	return errorFromStatus(p.config, statusCode, statusText, body)
}

// errorFromStatus maps a non-2xx answer carrying a Google API error envelope.
func errorFromStatus(config ai.ProviderConfig, statusCode int, statusText string, body []byte) *ai.Error {
	message := ""
	if len(body) > 0 {
		if envelope, err := utils.DecodeLenient[errorEnvelope](body); err == nil && envelope.Error != nil {
			message = envelope.Error.Message
		}
	}
	return ai.StatusError(config, statusCode, statusText, message)
}
