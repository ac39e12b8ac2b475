package stream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/leofalp/geniusengine/providers/ai"
)

// readChunkSize is the size of a single read from the upstream body.
const readChunkSize = 4 * 1024

// maxLineSize is the longest line the normalizer buffers while waiting for
// its terminator (1 MB).
const maxLineSize = 1 * 1024 * 1024

// ErrLineTooLong is the cause of the error that ends a stream whose line
// grew past maxLineSize without a terminator.
var ErrLineTooLong = fmt.Errorf("stream line exceeds %d bytes", maxLineSize)

// Normalizer is a single-consumer, pull-based parser over one upstream body.
// It is not safe for concurrent use.
type Normalizer struct {
	reader   io.Reader
	decoder  ai.LineDecoder
	provider ai.ProviderID
	prefix   []byte

	buffer []byte
	chunk  []byte
	done   bool
}

// NewNormalizer creates a normalizer reading from r. The caller keeps
// ownership of r and closes it.
func NewNormalizer(r io.Reader, decoder ai.LineDecoder, provider ai.ProviderID) *Normalizer {
	return &Normalizer{
		reader:   r,
		decoder:  decoder,
		provider: provider,
		prefix:   []byte(decoder.Prefix()),
		chunk:    make([]byte, readChunkSize),
	}
}

// Next reads one chunk and returns the events framed by it, possibly none.
// When the body ends it returns the final events followed by exactly one
// completion event; every later call returns io.EOF. A read failure or a
// terminal decoder error is returned as is, and the normalizer stops. A line
// longer than maxLineSize ends the stream with an upstream error.
func (n *Normalizer) Next() ([]ai.StreamEvent, error) {
	if n.done {
		return nil, io.EOF
	}

	read, err := n.reader.Read(n.chunk)
	if read > 0 {
		n.buffer = append(n.buffer, n.chunk[:read]...)
	}

	events, decodeErr := n.drainLines()
	if decodeErr != nil {
		n.done = true
		return events, decodeErr
	}
	if len(n.buffer) > maxLineSize {
		n.buffer = nil
		n.done = true
		return events, &ai.Error{
			Kind:     ai.KindUpstream,
			Provider: n.provider,
			Message:  fmt.Sprintf("%s sent a malformed stream", n.provider.DisplayName()),
			Cause:    ErrLineTooLong,
		}
	}

	switch {
	case errors.Is(err, io.EOF):
		// A trailing line without its terminator cannot be framed reliably.
		n.buffer = nil
		n.done = true
		return append(events, ai.Completion(n.provider)), nil
	case err != nil:
		n.done = true
		return events, err
	}
	return events, nil
}

// drainLines consumes every complete line in the buffer and keeps the
// trailing partial line for the next read.
func (n *Normalizer) drainLines() ([]ai.StreamEvent, error) {
	var events []ai.StreamEvent
	consumed := 0

	for {
		end := bytes.IndexByte(n.buffer[consumed:], '\n')
		if end < 0 {
			break
		}
		line := n.buffer[consumed : consumed+end]
		consumed += end + 1

		text, err := n.decodeLine(line)
		if err != nil {
			n.compact(consumed)
			return events, err
		}
		if text != "" {
			events = append(events, ai.TextFragment(text))
		}
	}

	n.compact(consumed)
	return events, nil
}

func (n *Normalizer) decodeLine(line []byte) (string, error) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	payload, ok := bytes.CutPrefix(line, n.prefix)
	if !ok {
		return "", nil
	}

	text, err := n.decoder.Decode(payload)
	if err != nil {
		if classified, ok := ai.AsError(err); ok {
			if classified.Provider == "" {
				classified.Provider = n.provider
			}
			return "", classified
		}
		// Malformed payload, skip the line.
		return "", nil
	}
	return text, nil
}

// compact drops the first consumed bytes, reusing the buffer's storage.
func (n *Normalizer) compact(consumed int) {
	if consumed == 0 {
		return
	}
	remaining := copy(n.buffer, n.buffer[consumed:])
	n.buffer = n.buffer[:remaining]
}

// Events adapts the normalizer to a range-over-func sequence. The sequence
// yields at most one error and stops after it. Breaking out of the loop early
// leaves the body unread; the caller still closes it.
func (n *Normalizer) Events() iter.Seq2[ai.StreamEvent, error] {
	return func(yield func(ai.StreamEvent, error) bool) {
		for {
			events, err := n.Next()
			for _, event := range events {
				if !yield(event, nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(ai.StreamEvent{}, err)
				return
			}
		}
	}
}
