package api

import (
	"encoding/json"

	"github.com/leofalp/geniusengine/providers/ai"
)

// looseString accepts a JSON string; any other JSON value decodes as "".
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		*s = ""
		return nil
	}
	*s = looseString(value)
	return nil
}

// looseBool is true only for the JSON literal true.
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	*b = looseBool(string(data) == "true")
	return nil
}

// looseHistory accepts an array of {role, content} turns. A non-array
// value is an empty history and undecodable entries are skipped.
type looseHistory []ai.Message

func (h *looseHistory) UnmarshalJSON(data []byte) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		*h = nil
		return nil
	}

	history := make([]ai.Message, 0, len(entries))
	for _, entry := range entries {
		var message ai.Message
		if err := json.Unmarshal(entry, &message); err != nil {
			continue
		}
		history = append(history, message)
	}
	*h = history
	return nil
}
