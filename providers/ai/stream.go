package ai

import (
	"iter"
	"strings"
)

// StreamEventType identifies the kind of a StreamEvent.
type StreamEventType string

const (
	// StreamEventText carries one incremental text fragment.
	StreamEventText StreamEventType = "text"
	// StreamEventDone is the single completion marker that ends a stream.
	StreamEventDone StreamEventType = "done"
)

// StreamEvent is one element of a normalized stream: either a text fragment
// or the completion marker carrying the provider that produced the stream.
type StreamEvent struct {
	Type         StreamEventType `json:"type"`
	Text         string          `json:"text,omitempty"`
	ProviderUsed ProviderID      `json:"providerUsed,omitempty"`
}

// TextFragment builds a text event.
func TextFragment(text string) StreamEvent {
	return StreamEvent{Type: StreamEventText, Text: text}
}

// Completion builds the completion event.
func Completion(provider ProviderID) StreamEvent {
	return StreamEvent{Type: StreamEventDone, ProviderUsed: provider}
}

// EventStream wraps a single-use, pull-based event sequence.
//
// Callers must consume the stream, either by ranging over Iter() (breaking
// out early is fine) or by calling Collect(). The producer holds the
// upstream HTTP body open until the iterator returns; a stream that is
// never iterated leaks that connection.
type EventStream struct {
	provider ProviderID
	iterator iter.Seq2[StreamEvent, error]
}

// NewEventStream wraps iterator. The iterator yields events with a nil error
// and ends either after exactly one StreamEventDone or after yielding one
// non-nil error.
func NewEventStream(provider ProviderID, iterator iter.Seq2[StreamEvent, error]) *EventStream {
	return &EventStream{provider: provider, iterator: iterator}
}

// Provider returns the provider serving the stream.
func (stream *EventStream) Provider() ProviderID {
	return stream.provider
}

// Iter returns the underlying iterator for use with range-over-func loops.
//
//	for event, err := range stream.Iter() {
//	    if err != nil { handle error }
//	    fmt.Print(event.Text)
//	}
func (stream *EventStream) Iter() iter.Seq2[StreamEvent, error] {
	return stream.iterator
}

// Collect drains the stream and concatenates its fragments into a Result.
// A mid-stream error returns the partial result alongside the error.
func (stream *EventStream) Collect() (*Result, error) {
	var content strings.Builder
	result := &Result{ProviderUsed: stream.provider}

	for event, err := range stream.iterator {
		if err != nil {
			result.Content = content.String()
			return result, err
		}
		switch event.Type {
		case StreamEventText:
			content.WriteString(event.Text)
		case StreamEventDone:
			result.ProviderUsed = event.ProviderUsed
		}
	}

	result.Content = content.String()
	return result, nil
}
