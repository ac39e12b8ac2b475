package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leofalp/geniusengine/providers/ai"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError reports err with the status class of its kind. Unclassified
// errors are internal failures.
func writeError(w http.ResponseWriter, err error) {
	if classified, ok := ai.AsError(err); ok {
		writeErrorMessage(w, classified.HTTPStatus(), classified.Error())
		return
	}
	writeErrorMessage(w, http.StatusInternalServerError, "Generation failed")
}

// decodeBody decodes a size-limited JSON body into target.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("unexpected data after the JSON body")
	}
	return nil
}
