// Package chatcompletion contains the OpenAI-compatible Chat Completions wire
// format shared by the openai and perplexity adapters: a flat message array
// with an embedded system turn, bearer authentication and
// choices[0].message.content answers.
package chatcompletion

import (
	"encoding/json"
	"strings"

	"github.com/leofalp/geniusengine/internal/utils"
	"github.com/leofalp/geniusengine/providers/ai"
)

// Endpoint is appended to the provider base URL.
const Endpoint = "/chat/completions"

const roleSystem = "system"

// Message is one entry of the messages array.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the Chat Completions request body.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// Response is the subset of the Chat Completions answer the gateway reads.
type Response struct {
	ID      string   `json:"id,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
	// Citations is only sent by search-augmented providers.
	Citations []string `json:"citations,omitempty"`
}

// Choice is one completion alternative.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Chunk is one streamed event.
type Chunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ErrorEnvelope covers both {"error":{"message":...}} and the
// {"detail":...} shape some compatible servers return.
type ErrorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type,omitempty"`
	} `json:"error,omitempty"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

// NewRequest builds the request body: system instruction first, then the
// user/assistant history, then the new user message.
func NewRequest(cfg ai.ProviderConfig, request ai.ChatRequest, stream bool) Request {
	turns := ai.ConversationTurns(request.History)
	messages := make([]Message, 0, len(turns)+2)

	messages = append(messages, Message{Role: roleSystem, Content: request.SystemInstruction})
	for _, turn := range turns {
		messages = append(messages, Message{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, Message{Role: string(ai.RoleUser), Content: request.Message})

	return Request{
		Model:       cfg.Model,
		Messages:    messages,
		MaxTokens:   cfg.MaxTokens,
		Temperature: utils.Ptr(cfg.Temperature),
		Stream:      stream,
	}
}

// Text returns the trimmed content of the first choice.
func (r *Response) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Choices[0].Message.Content)
}

// ErrorMessage extracts the provider's own error text from a non-2xx body.
// It returns "" when the body carries none.
func ErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	envelope, err := utils.DecodeLenient[ErrorEnvelope](body)
	if err != nil {
		return ""
	}
	if envelope.Error != nil && strings.TrimSpace(envelope.Error.Message) != "" {
		return envelope.Error.Message
	}
	return detailMessage(envelope.Detail)
}

// detailMessage accepts "detail" as a plain string or as an object with a
// "message" or "msg" field.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var object struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &object); err == nil {
		if object.Message != "" {
			return object.Message
		}
		return object.Msg
	}
	return ""
}

// StatusError maps a non-2xx answer using the shared envelope.
func StatusError(cfg ai.ProviderConfig, statusCode int, statusText string, body []byte) *ai.Error {
	return ai.StatusError(cfg, statusCode, statusText, ErrorMessage(body))
}

// Decoder reads "data: " lines carrying Chunk payloads. The "[DONE]"
// sentinel is a no-op.
type Decoder struct{}

var _ ai.LineDecoder = Decoder{}

func (Decoder) Prefix() string { return "data: " }

func (Decoder) Decode(payload []byte) (string, error) {
	if string(payload) == "[DONE]" {
		return "", nil
	}
	var chunk Chunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return "", err
	}
	if len(chunk.Choices) == 0 {
		return "", nil
	}
	return chunk.Choices[0].Delta.Content, nil
}
