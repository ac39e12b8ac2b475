package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/leofalp/geniusengine/internal/utils"
	"github.com/leofalp/geniusengine/providers/ai"
)

var testConfig = ai.ProviderConfig{ID: ai.ProviderGPT4, CredentialNames: []string{"OPENAI_API_KEY"}}

func TestFailure_StatusErrorUsesMapper(t *testing.T) {
	var gotStatus int
	var gotText string
	mapper := func(statusCode int, statusText string, body []byte) *ai.Error {
		gotStatus, gotText = statusCode, statusText
		return ai.StatusError(testConfig, statusCode, statusText, string(body))
	}

	err := fmt.Errorf("wrapped: %w", &utils.StatusError{StatusCode: http.StatusTooManyRequests, Status: "429 Too Many Requests"})
	classified := Failure(testConfig, err, mapper)

	if classified.Kind != ai.KindRateLimited {
		t.Errorf("Kind = %q", classified.Kind)
	}
	if gotStatus != 429 || gotText != "Too Many Requests" {
		t.Errorf("mapper called with %d %q", gotStatus, gotText)
	}
}

func TestFailure_InvalidResponse(t *testing.T) {
	err := fmt.Errorf("%w (status 200): unexpected EOF", utils.ErrInvalidResponse)
	classified := Failure(testConfig, err, nil)

	if classified.Kind != ai.KindUpstream || classified.Message != "Invalid response from OpenAI" {
		t.Errorf("unexpected classification %+v", classified)
	}
}

func TestFailure_Transport(t *testing.T) {
	classified := Failure(testConfig, fmt.Errorf("error sending request: %w", context.Canceled), nil)
	if classified.Kind != ai.KindCanceled {
		t.Errorf("Kind = %q, want canceled", classified.Kind)
	}

	classified = Failure(testConfig, errors.New("dial tcp: connection refused"), nil)
	if classified.Kind != ai.KindTransport {
		t.Errorf("Kind = %q, want transport", classified.Kind)
	}
}

func TestBegin_WithoutObservability(t *testing.T) {
	end := Begin(context.Background(), testConfig, ai.ChatRequest{Message: "hi"}, false)
	end(nil)
	end(errors.New("boom"))
}
