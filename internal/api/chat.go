package api

import (
	"encoding/json"
	"net/http"

	"github.com/leofalp/geniusengine/core/dispatch"
	"github.com/leofalp/geniusengine/providers/ai"
	"github.com/leofalp/geniusengine/providers/observability"
)

// chatRequest uses the field names of the web client.
type chatRequest struct {
	Model               looseString  `json:"model"`
	Message             looseString  `json:"message"`
	ConversationHistory looseHistory `json:"conversationHistory"`
	SelectedMindset     looseString  `json:"selectedMindset"`
	Stream              looseBool    `json:"stream"`
}

type chatResponse struct {
	Content      string        `json:"content"`
	ProviderUsed ai.ProviderID `json:"providerUsed"`
	Citations    []string      `json:"citations,omitempty"`
}

// streamLine is one NDJSON line: a fragment, the completion marker or a
// terminal error.
type streamLine struct {
	Text         string        `json:"text,omitempty"`
	Done         bool          `json:"done,omitempty"`
	ProviderUsed ai.ProviderID `json:"providerUsed,omitempty"`
	Error        string        `json:"error,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	outcome, err := s.dispatcher.Dispatch(r.Context(), ai.GenerationRequest{
		Provider:     string(body.Model),
		Message:      string(body.Message),
		History:      body.ConversationHistory,
		MindsetLabel: string(body.SelectedMindset),
		Stream:       bool(body.Stream),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if !outcome.Streaming() {
		writeJSON(w, http.StatusOK, chatResponse{
			Content:      outcome.Result.Content,
			ProviderUsed: outcome.Result.ProviderUsed,
			Citations:    outcome.Result.Citations,
		})
		return
	}

	s.writeStream(w, r, outcome.Stream)
}

// writeStream relays the event stream as NDJSON, flushing after every
// line. A failed write means the client is gone and ends the relay, which
// releases the upstream.
func (s *Server) writeStream(w http.ResponseWriter, r *http.Request, events *ai.EventStream) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	controller := http.NewResponseController(w)
	encoder := json.NewEncoder(w)

	for event, err := range events.Iter() {
		var line streamLine
		switch {
		case err != nil:
			line.Error = err.Error()
		case event.Type == ai.StreamEventText:
			line.Text = event.Text
		case event.Type == ai.StreamEventDone:
			line.Done = true
			line.ProviderUsed = event.ProviderUsed
		default:
			continue
		}

		if writeErr := encoder.Encode(line); writeErr != nil {
			s.clientGone(r, writeErr)
			return
		}
		if flushErr := controller.Flush(); flushErr != nil {
			s.clientGone(r, flushErr)
			return
		}
	}
}

func (s *Server) clientGone(r *http.Request, err error) {
	if s.observer == nil {
		return
	}
	s.observer.Debug(r.Context(), "stream client disconnected",
		observability.String(observability.AttrRequestID, dispatch.RequestIDFromContext(r.Context())),
		observability.Error(err),
	)
}
