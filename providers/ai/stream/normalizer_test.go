package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/leofalp/geniusengine/providers/ai"
)

// deltaDecoder mimics the chat-completions framing: data: {"delta":"..."}.
type deltaDecoder struct{}

func (deltaDecoder) Prefix() string { return "data: " }

func (deltaDecoder) Decode(payload []byte) (string, error) {
	var event struct {
		Delta string `json:"delta"`
		Fatal string `json:"fatal"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return "", err
	}
	if event.Fatal != "" {
		return "", &ai.Error{Kind: ai.KindUpstream, Message: event.Fatal}
	}
	return event.Delta, nil
}

// splitReader returns the input in pieces cut at the given offsets.
type splitReader struct {
	data []byte
	cuts []int
	pos  int
}

func (r *splitReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := len(r.data)
	for len(r.cuts) > 0 {
		cut := r.cuts[0]
		r.cuts = r.cuts[1:]
		if cut > r.pos && cut < end {
			end = cut
			break
		}
	}
	if end-r.pos > len(p) {
		end = r.pos + len(p)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

func collect(t *testing.T, n *Normalizer) ([]ai.StreamEvent, error) {
	t.Helper()
	var events []ai.StreamEvent
	for event, err := range n.Events() {
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
	return events, nil
}

func sseBody(fragments ...string) string {
	var b strings.Builder
	for _, f := range fragments {
		payload, _ := json.Marshal(map[string]string{"delta": f})
		fmt.Fprintf(&b, "data: %s\n\n", payload)
	}
	b.WriteString("data: [DONE]\n\n")
	return b.String()
}

func assertFragments(t *testing.T, events []ai.StreamEvent, want []string) {
	t.Helper()
	if len(events) != len(want)+1 {
		t.Fatalf("got %d events, want %d fragments plus completion: %+v", len(events), len(want), events)
	}
	for i, text := range want {
		if events[i].Type != ai.StreamEventText || events[i].Text != text {
			t.Errorf("event %d = %+v, want text %q", i, events[i], text)
		}
	}
	last := events[len(events)-1]
	if last.Type != ai.StreamEventDone || last.ProviderUsed != ai.ProviderGPT4 {
		t.Errorf("last event = %+v, want completion from gpt4", last)
	}
}

func TestNormalizer_RoundTripAcrossChunkSplits(t *testing.T) {
	fragments := []string{"**Role:** ", "Senior photographer", "\n", "ünïcode ✓", "**Quality Score: 88/100**"}
	body := sseBody(fragments...)

	tests := []struct {
		name   string
		reader func() io.Reader
	}{
		{"single read", func() io.Reader { return strings.NewReader(body) }},
		{"one byte at a time", func() io.Reader { return iotest.OneByteReader(strings.NewReader(body)) }},
		{"half reads", func() io.Reader { return iotest.HalfReader(strings.NewReader(body)) }},
		{"mid-line cuts", func() io.Reader {
			return &splitReader{data: []byte(body), cuts: []int{3, 7, 20, 21, 45, 46, 90}}
		}},
		{"data err on last read", func() io.Reader { return iotest.DataErrReader(strings.NewReader(body)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := collect(t, NewNormalizer(tt.reader(), deltaDecoder{}, ai.ProviderGPT4))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertFragments(t, events, fragments)
		})
	}
}

func TestNormalizer_EveryCutPosition(t *testing.T) {
	fragments := []string{"alpha", "beta", "gamma"}
	body := sseBody(fragments...)

	for cut := 1; cut < len(body); cut++ {
		reader := &splitReader{data: []byte(body), cuts: []int{cut}}
		events, err := collect(t, NewNormalizer(reader, deltaDecoder{}, ai.ProviderGPT4))
		if err != nil {
			t.Fatalf("cut %d: unexpected error: %v", cut, err)
		}
		assertFragments(t, events, fragments)
	}
}

func TestNormalizer_MalformedLineIsSkipped(t *testing.T) {
	body := "data: {\"delta\":\"first\"}\n" +
		"data: {not json\n" +
		"data: {\"delta\":\"second\"}\n"

	events, err := collect(t, NewNormalizer(strings.NewReader(body), deltaDecoder{}, ai.ProviderGPT4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertFragments(t, events, []string{"first", "second"})
}

func TestNormalizer_IgnoresNonPrefixedLinesAndCRLF(t *testing.T) {
	body := ": keep-alive\r\n" +
		"event: message\r\n" +
		"data: {\"delta\":\"ok\"}\r\n" +
		"\r\n" +
		"data: {\"delta\":\"\"}\r\n"

	events, err := collect(t, NewNormalizer(strings.NewReader(body), deltaDecoder{}, ai.ProviderGPT4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertFragments(t, events, []string{"ok"})
}

func TestNormalizer_DiscardsTrailingPartialLine(t *testing.T) {
	body := "data: {\"delta\":\"kept\"}\ndata: {\"delta\":\"lost\"}"

	events, err := collect(t, NewNormalizer(strings.NewReader(body), deltaDecoder{}, ai.ProviderGPT4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertFragments(t, events, []string{"kept"})
}

func TestNormalizer_EmptyBodyCompletesOnce(t *testing.T) {
	n := NewNormalizer(strings.NewReader(""), deltaDecoder{}, ai.ProviderGPT4)

	events, err := n.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Type != ai.StreamEventDone {
		t.Fatalf("expected a single completion, got %+v", events)
	}
	for range 3 {
		if events, err := n.Next(); !errors.Is(err, io.EOF) || len(events) != 0 {
			t.Fatalf("expected io.EOF after completion, got %+v, %v", events, err)
		}
	}
}

func TestNormalizer_TerminalDecoderError(t *testing.T) {
	body := "data: {\"delta\":\"partial\"}\n" +
		"data: {\"fatal\":\"Overloaded\"}\n" +
		"data: {\"delta\":\"never\"}\n"

	events, err := collect(t, NewNormalizer(strings.NewReader(body), deltaDecoder{}, ai.ProviderClaude))
	if len(events) != 1 || events[0].Text != "partial" {
		t.Errorf("expected the fragment before the error, got %+v", events)
	}
	classified, ok := ai.AsError(err)
	if !ok {
		t.Fatalf("expected *ai.Error, got %v", err)
	}
	if classified.Kind != ai.KindUpstream || classified.Message != "Overloaded" {
		t.Errorf("unexpected error %+v", classified)
	}
	if classified.Provider != ai.ProviderClaude {
		t.Errorf("expected provider to be filled in, got %q", classified.Provider)
	}
}

func TestNormalizer_ReadErrorStopsWithoutCompletion(t *testing.T) {
	boom := errors.New("connection reset")
	reader := io.MultiReader(
		strings.NewReader("data: {\"delta\":\"one\"}\n"),
		iotest.ErrReader(boom),
	)

	events, err := collect(t, NewNormalizer(reader, deltaDecoder{}, ai.ProviderGPT4))
	if !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
	for _, event := range events {
		if event.Type == ai.StreamEventDone {
			t.Fatalf("completion must not follow a read error: %+v", events)
		}
	}
	if len(events) != 1 {
		t.Errorf("expected the fragment read before the failure, got %+v", events)
	}
}

func TestNormalizer_EarlyBreak(t *testing.T) {
	n := NewNormalizer(strings.NewReader(sseBody("a", "b", "c")), deltaDecoder{}, ai.ProviderGPT4)
	seen := 0
	for range n.Events() {
		seen++
		break
	}
	if seen != 1 {
		t.Errorf("expected to stop after one event, saw %d", seen)
	}
}

// endlessReader never produces a line terminator.
type endlessReader struct{}

func (endlessReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'a'
	}
	return len(p), nil
}

func TestNormalizer_OversizedLineEndsStream(t *testing.T) {
	reader := io.MultiReader(
		strings.NewReader("data: {\"delta\":\"first\"}\ndata: "),
		endlessReader{},
	)
	n := NewNormalizer(reader, deltaDecoder{}, ai.ProviderGPT4)

	var (
		events []ai.StreamEvent
		errs   []error
	)
	for event, err := range n.Events() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, event)
	}

	if len(errs) != 1 {
		t.Fatalf("expected exactly one terminal error, got %v", errs)
	}
	if !errors.Is(errs[0], ErrLineTooLong) {
		t.Errorf("expected ErrLineTooLong, got %v", errs[0])
	}
	classified, ok := ai.AsError(errs[0])
	if !ok || classified.Kind != ai.KindUpstream || classified.Provider != ai.ProviderGPT4 {
		t.Errorf("unexpected classification %+v", classified)
	}
	if len(events) != 1 || events[0].Text != "first" {
		t.Errorf("expected only the fragment before the long line, got %+v", events)
	}
	if len(n.buffer) != 0 {
		t.Errorf("buffer not released, holds %d bytes", len(n.buffer))
	}
	if _, err := n.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after the terminal error, got %v", err)
	}
}

func TestNormalizer_LongLineWithinLimit(t *testing.T) {
	long := strings.Repeat("x", maxLineSize/2)
	events, err := collect(t, NewNormalizer(strings.NewReader(sseBody(long)), deltaDecoder{}, ai.ProviderGPT4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertFragments(t, events, []string{long})
}
