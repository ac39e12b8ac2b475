package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/geniusengine/providers/ai"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := New(ai.ProviderConfig{
		APIKey:      "AIza test/key",
		BaseURL:     server.URL,
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	provider.WithHttpClient(server.Client())
	return provider
}

func TestSendMessage_RequestShape(t *testing.T) {
	var received generateContentRequest
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.0-flash:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "AIza test/key" {
			t.Errorf("key = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"thinking","thought":true},{"text":"**Role:** "},{"text":"Analyst\n"}]}}]}`)
	})

	result, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Message:           "quarterly report",
		SystemInstruction: "system text",
		History: []ai.Message{
			{Role: ai.RoleUser, Content: "earlier"},
			{Role: ai.RoleAssistant, Content: "reply"},
			{Role: "system", Content: "dropped"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Content != "**Role:** Analyst" || result.ProviderUsed != ai.ProviderGemini {
		t.Errorf("unexpected result %+v", result)
	}
	if received.SystemInstruction == nil || received.SystemInstruction.Parts[0].Text != "system text" {
		t.Errorf("SystemInstruction = %+v", received.SystemInstruction)
	}
	if received.GenerationConfig == nil || received.GenerationConfig.MaxOutputTokens != 1024 {
		t.Errorf("GenerationConfig = %+v", received.GenerationConfig)
	}
	wantRoles := []string{"user", "model", "user"}
	if len(received.Contents) != len(wantRoles) {
		t.Fatalf("contents = %+v", received.Contents)
	}
	for i, role := range wantRoles {
		if received.Contents[i].Role != role {
			t.Errorf("content %d role = %q, want %q", i, received.Contents[i].Role, role)
		}
	}
}

func TestSendMessage_Blocked(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
	})

	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{Message: "hi"})
	if !errors.Is(err, ai.ErrEmptyResponse) {
		t.Fatalf("expected empty response, got %v", err)
	}
	if err.Error() != "Empty response from Gemini (blocked: SAFETY)" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestErrorFromStatus(t *testing.T) {
	config := New(ai.ProviderConfig{}).Config()

	tests := []struct {
		name    string
		status  int
		body    string
		kind    ai.ErrorKind
		message string
	}{
		{"invalid argument", 400, `{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT"}}`, ai.KindUpstream, "API key not valid."},
		{"permission", 403, `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`, ai.KindInvalidCredential, "Invalid or expired API key. Check GOOGLE_AI_API_KEY, GEMINI_API_KEY, or GOOGLE_API_KEY in .env.local."},
		{"quota", 429, `{"error":{"code":429,"status":"RESOURCE_EXHAUSTED"}}`, ai.KindRateLimited, "Rate limit exceeded. Try again shortly."},
		{"no body", 500, ``, ai.KindUpstream, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errorFromStatus(config, tt.status, http.StatusText(tt.status), []byte(tt.body))
			if err.Kind != tt.kind || err.Message != tt.message {
				t.Errorf("got %q %q, want %q %q", err.Kind, err.Message, tt.kind, tt.message)
			}
		})
	}
}

func TestSendMessage_TransportErrorHidesKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	provider := New(ai.ProviderConfig{APIKey: "secret-key", BaseURL: server.URL})
	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{Message: "hi"})
	if !errors.Is(err, ai.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}

	var chain strings.Builder
	for e := error(err); e != nil; e = errors.Unwrap(e) {
		chain.WriteString(e.Error())
	}
	if strings.Contains(chain.String(), "secret-key") {
		t.Errorf("credential leaked in error chain: %s", chain.String())
	}
}

func TestGeminiIsBlockingOnly(t *testing.T) {
	var provider ai.Provider = New(ai.ProviderConfig{})
	if _, ok := provider.(ai.StreamProvider); ok {
		t.Error("gemini must not advertise streaming")
	}
}
