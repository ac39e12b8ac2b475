package observability

import (
	"context"
	"testing"
)

type recordingSpan struct {
	events []string
}

func (s *recordingSpan) End() {}
func (s *recordingSpan) SetAttributes(...Attribute) {}
func (s *recordingSpan) SetStatus(StatusCode, string) {}
func (s *recordingSpan) RecordError(error) {}
func (s *recordingSpan) AddEvent(name string, _ ...Attribute) { s.events = append(s.events, name) }

func TestSpanFromContext_Empty(t *testing.T) {
	if span := SpanFromContext(context.Background()); span != nil {
		t.Errorf("expected nil span, got %v", span)
	}
	//nolint:staticcheck // nil context is tolerated on purpose
	if span := SpanFromContext(nil); span != nil {
		t.Errorf("expected nil span for nil context, got %v", span)
	}
}

func TestContextWithSpan_RoundTrip(t *testing.T) {
	span := &recordingSpan{}
	ctx := ContextWithSpan(context.Background(), span)

	got := SpanFromContext(ctx)
	if got != span {
		t.Fatalf("expected stored span, got %v", got)
	}
	got.AddEvent(EventLLMRequestStart)
	if len(span.events) != 1 || span.events[0] != EventLLMRequestStart {
		t.Errorf("unexpected events: %v", span.events)
	}
}

func TestObserverFromContext_Empty(t *testing.T) {
	if observer := ObserverFromContext(context.Background()); observer != nil {
		t.Errorf("expected nil observer, got %v", observer)
	}
}

func TestError_Attribute(t *testing.T) {
	attr := Error(nil)
	if attr.Key != AttrError || attr.Value != "" {
		t.Errorf("Error(nil) = %+v", attr)
	}
	attr = Error(context.Canceled)
	if attr.Value != "context canceled" {
		t.Errorf("Error(context.Canceled).Value = %v", attr.Value)
	}
}
