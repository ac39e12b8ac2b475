package ai

import (
	"strings"
)

/*
	##### PROVIDER IDENTIFIERS #####
*/

// ProviderID identifies one of the upstream LLM services. The set is closed:
// use [ParseProviderID] or [ResolveProviderID] to turn caller input into one.
type ProviderID string

const (
	// ProviderClaude is Anthropic's Messages API (streaming capable).
	ProviderClaude ProviderID = "claude"
	// ProviderGPT4 is OpenAI's Chat Completions API (streaming capable).
	ProviderGPT4 ProviderID = "gpt4"
	// ProviderGemini is Google's Generative Language API.
	ProviderGemini ProviderID = "gemini"
	// ProviderPerplexity is Perplexity's search-augmented chat API.
	ProviderPerplexity ProviderID = "perplexity"
)

// DefaultProvider is substituted when the caller names an unknown provider.
const DefaultProvider = ProviderClaude

// Providers lists every known provider in a stable order.
var Providers = []ProviderID{ProviderClaude, ProviderGPT4, ProviderGemini, ProviderPerplexity}

// ParseProviderID reports whether raw names a known provider. The match is
// exact: surrounding whitespace or a different case makes the id unknown.
func ParseProviderID(raw string) (ProviderID, bool) {
	id := ProviderID(raw)
	for _, known := range Providers {
		if id == known {
			return id, true
		}
	}
	return "", false
}

// ResolveProviderID returns the provider named by raw, or fallback when raw
// is not one of the known identifiers.
func ResolveProviderID(raw string, fallback ProviderID) ProviderID {
	if id, ok := ParseProviderID(raw); ok {
		return id
	}
	return fallback
}

// String implements fmt.Stringer.
func (id ProviderID) String() string {
	return string(id)
}

// DisplayName returns the vendor name used in user-facing messages.
func (id ProviderID) DisplayName() string {
	switch id {
	case ProviderClaude:
		return "Claude"
	case ProviderGPT4:
		return "OpenAI"
	case ProviderGemini:
		return "Gemini"
	case ProviderPerplexity:
		return "Perplexity"
	default:
		return string(id)
	}
}

/*
	##### CONVERSATION #####
*/

// MessageRole is the author of a conversation turn.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single turn of the caller-owned conversation history.
type Message struct {
	Role         MessageRole `json:"role"`
	Content      string      `json:"content"`
	ProviderUsed ProviderID  `json:"providerUsed,omitempty"`
}

// ConversationTurns returns the user and assistant turns of history in
// their original order. Turns with any other role are dropped.
func ConversationTurns(history []Message) []Message {
	turns := make([]Message, 0, len(history))
	for _, message := range history {
		if message.Role == RoleUser || message.Role == RoleAssistant {
			turns = append(turns, message)
		}
	}
	return turns
}

/*
	##### REQUESTS #####
*/

// GenerationRequest is the caller-facing request accepted by the dispatcher.
// Provider is the raw identifier as received; the dispatcher resolves it.
type GenerationRequest struct {
	Provider     string    `json:"provider"`
	Message      string    `json:"message"`
	History      []Message `json:"history,omitempty"`
	MindsetLabel string    `json:"mindsetLabel,omitempty"`
	Stream       bool      `json:"stream,omitempty"`
}

// ChatRequest is the normalized request handed to an adapter.
type ChatRequest struct {
	Message           string    // Latest user message, already trimmed
	History           []Message // Prior turns, unfiltered
	SystemInstruction string    // Output of the prompt compiler
}

/*
	##### RESULTS #####
*/

// Result is the terminal success value of a blocking generation.
type Result struct {
	Content      string     `json:"content"`
	ProviderUsed ProviderID `json:"providerUsed"`
	Citations    []string   `json:"citations,omitempty"` // Search sources (perplexity only)
}

/*
	##### CONFIGURATION #####
*/

// ProviderConfig is the per-provider configuration assembled at startup.
type ProviderConfig struct {
	ID              ProviderID
	APIKey          string
	CredentialNames []string // Environment variables that may carry APIKey
	BaseURL         string
	Model           string
	MaxTokens       int
	Temperature     float64
}

// HasCredential reports whether a non-blank credential is configured.
func (c ProviderConfig) HasCredential() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// CredentialLabel names the credential variables in user-facing messages,
// e.g. "GOOGLE_AI_API_KEY, GEMINI_API_KEY, or GOOGLE_API_KEY".
func (c ProviderConfig) CredentialLabel() string {
	switch len(c.CredentialNames) {
	case 0:
		return strings.ToUpper(string(c.ID)) + "_API_KEY"
	case 1:
		return c.CredentialNames[0]
	case 2:
		return c.CredentialNames[0] + " or " + c.CredentialNames[1]
	default:
		last := len(c.CredentialNames) - 1
		return strings.Join(c.CredentialNames[:last], ", ") + ", or " + c.CredentialNames[last]
	}
}
