package anthropic

import (
	"context"
	"net/http"
	"strings"

	"github.com/leofalp/geniusengine/internal/utils"
	"github.com/leofalp/geniusengine/providers/ai"
	"github.com/leofalp/geniusengine/providers/ai/internal/upstream"
)

const (
	// DefaultBaseURL is the canonical base URL for Anthropic's Messages API.
	DefaultBaseURL = "https://api.anthropic.com/v1"

	// DefaultModel is used when the configuration names none.
	DefaultModel = "claude-sonnet-4-20250514"

	// CredentialName is the environment variable holding the API key.
	CredentialName = "ANTHROPIC_API_KEY"

	messagesEndpoint = "/messages"

	// anthropicVersion pins the wire format independently of the URL.
	anthropicVersion = "2023-06-01"
)

// AnthropicProvider talks to the Messages endpoint.
type AnthropicProvider struct {
	config ai.ProviderConfig
	client *http.Client
}

var _ ai.StreamProvider = (*AnthropicProvider)(nil)

// New returns a provider for config, filling blank base URL, model and
// credential names with the Anthropic defaults.
func New(config ai.ProviderConfig) *AnthropicProvider {
	config.ID = ai.ProviderClaude
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if len(config.CredentialNames) == 0 {
		config.CredentialNames = []string{CredentialName}
	}

	return &AnthropicProvider{
		config: config,
		client: &http.Client{},
	}
}

func (p *AnthropicProvider) ID() ai.ProviderID {
	return ai.ProviderClaude
}

func (p *AnthropicProvider) Config() ai.ProviderConfig {
	return p.config
}

// WithHttpClient replaces the default [http.Client] used for API calls.
func (p *AnthropicProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// buildHeaders returns the x-api-key credential and the version pin.
// Anthropic does not use bearer tokens, so DoPostSync gets an empty key.
func (p *AnthropicProvider) buildHeaders() []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-api-key", Value: p.config.APIKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}
}

// buildRequest converts the normalized request. History roles map one to one.
func (p *AnthropicProvider) buildRequest(request ai.ChatRequest, stream bool) messagesRequest {
	turns := ai.ConversationTurns(request.History)
	messages := make([]message, 0, len(turns)+1)
	for _, turn := range turns {
		messages = append(messages, message{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, message{Role: string(ai.RoleUser), Content: request.Message})

	return messagesRequest{
		Model:       p.config.Model,
		MaxTokens:   p.config.MaxTokens,
		System:      request.SystemInstruction,
		Messages:    messages,
		Temperature: utils.Ptr(p.config.Temperature),
		Stream:      stream,
	}
}

// SendMessage implements [ai.Provider].
func (p *AnthropicProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.Result, error) {
	if !p.config.HasCredential() {
		return nil, ai.MissingCredentialError(p.config)
	}

	end := upstream.Begin(ctx, p.config, request, false)

	_, response, err := utils.DoPostSync[messagesResponse](
		ctx,
		p.client,
		p.config.BaseURL+messagesEndpoint,
		"",
		p.buildRequest(request, false),
		p.buildHeaders()...,
	)
	if err != nil {
		classified := upstream.Failure(p.config, err, p.fromStatus)
		end(classified)
		return nil, classified
	}

	content := response.text()
	if content == "" {
		classified := ai.EmptyResponseError(ai.ProviderClaude)
		end(classified)
		return nil, classified
	}

	end(nil)
	return &ai.Result{Content: content, ProviderUsed: ai.ProviderClaude}, nil
}

// OpenStream implements [ai.StreamProvider].
//
// Anthropic SSE lifecycle:
//
//	message_start -> content_block_start -> content_block_delta(s) ->
//	content_block_stop -> message_delta -> message_stop
func (p *AnthropicProvider) OpenStream(ctx context.Context, request ai.ChatRequest) (*ai.RawStream, error) {
	if !p.config.HasCredential() {
		return nil, ai.MissingCredentialError(p.config)
	}

	end := upstream.Begin(ctx, p.config, request, true)

	response, err := utils.DoPostStream(
		ctx,
		p.client,
		p.config.BaseURL+messagesEndpoint,
		"",
		p.buildRequest(request, true),
		p.buildHeaders()...,
	)
	if err != nil {
		classified := upstream.Failure(p.config, err, p.fromStatus)
		end(classified)
		return nil, classified
	}

	end(nil)
	return &ai.RawStream{Body: response.Body, Decoder: lineDecoder{config: p.config}}, nil
}

func (p *AnthropicProvider) fromStatus(statusCode int, statusText string, body []byte) *ai.Error {
	return errorFromStatus(p.config, statusCode, statusText, body)
}

// errorFromStatus maps a non-2xx answer carrying an Anthropic error envelope.
func errorFromStatus(config ai.ProviderConfig, statusCode int, statusText string, body []byte) *ai.Error {
	return ai.StatusError(config, statusCode, statusText, errorMessage(body))
}

func errorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	envelope, err := utils.DecodeLenient[errorEnvelope](body)
	if err != nil || envelope.Error == nil {
		return ""
	}
	return envelope.Error.Message
}

// lineDecoder extracts text from content_block_delta/text_delta events.
type lineDecoder struct {
	config ai.ProviderConfig
}

func (lineDecoder) Prefix() string { return "data: " }

func (d lineDecoder) Decode(payload []byte) (string, error) {
	event, err := decodeStreamEvent(payload)
	if err != nil {
		return "", err
	}

	switch event.Type {
	case "content_block_delta":
		if event.Delta != nil && event.Delta.Type == "text_delta" {
			return event.Delta.Text, nil
		}
	case "error":
		return "", streamError(d.config, event)
	}
	return "", nil
}

// streamError classifies an in-band error event. A rate_limit_error maps to
// KindRateLimited, everything else to KindUpstream.
func streamError(config ai.ProviderConfig, event streamEvent) *ai.Error {
	errorType, message := "", ""
	if event.Error != nil {
		errorType, message = event.Error.Type, strings.TrimSpace(event.Error.Message)
	}

	if errorType == "rate_limit_error" {
		return ai.StatusError(config, http.StatusTooManyRequests, "", message)
	}
	if message == "" {
		message = config.ID.DisplayName() + " stream failed"
		if errorType != "" {
			message += ": " + errorType
		}
	}
	return &ai.Error{Kind: ai.KindUpstream, Provider: config.ID, Message: message}
}
