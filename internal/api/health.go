package api

import (
	"net/http"

	"github.com/leofalp/geniusengine/providers/ai"
)

type healthResponse struct {
	Status    string           `json:"status"`
	Providers []providerHealth `json:"providers"`
}

// providerHealth never carries the credential, only whether one is set.
type providerHealth struct {
	ID         ai.ProviderID `json:"id"`
	Name       string        `json:"name"`
	Model      string        `json:"model"`
	Configured bool          `json:"configured"`
	Streaming  bool          `json:"streaming"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{Status: "ok"}
	for _, provider := range s.dispatcher.Registry().Providers() {
		_, streaming := provider.(ai.StreamProvider)
		config := provider.Config()
		response.Providers = append(response.Providers, providerHealth{
			ID:         provider.ID(),
			Name:       provider.ID().DisplayName(),
			Model:      config.Model,
			Configured: config.HasCredential(),
			Streaming:  streaming,
		})
	}
	writeJSON(w, http.StatusOK, response)
}
