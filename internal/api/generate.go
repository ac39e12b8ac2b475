package api

import (
	"net/http"
	"strings"

	"github.com/leofalp/geniusengine/providers/ai"
)

// generateRequest is the body of the legacy single-turn route, which only
// knows two vendors by their company names.
type generateRequest struct {
	Input    looseString `json:"input"`
	Mindset  looseString `json:"mindset"`
	Provider looseString `json:"provider"`
}

type generateResponse struct {
	Content string `json:"content"`
}

// legacyProvider maps the legacy vendor names; anything else is OpenAI.
func legacyProvider(name string) ai.ProviderID {
	if strings.TrimSpace(name) == "anthropic" {
		return ai.ProviderClaude
	}
	return ai.ProviderGPT4
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := strings.TrimSpace(string(body.Input))
	if input == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Missing or invalid input")
		return
	}

	result, err := s.dispatcher.Generate(r.Context(), ai.GenerationRequest{
		Provider:     string(legacyProvider(string(body.Provider))),
		Message:      input,
		MindsetLabel: string(body.Mindset),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Content: result.Content})
}
