package ai

import (
	"context"
	"io"
	"net/http"
)

// Provider is the capability every upstream adapter implements: a blocking
// generation against one fixed provider.
type Provider interface {
	// ID returns the provider this adapter talks to.
	ID() ProviderID

	// Config returns the configuration the adapter was built with.
	Config() ProviderConfig

	// SendMessage performs one blocking call and returns the trimmed,
	// non-empty text produced by the model. Every returned error is an
	// [*Error]; a missing credential fails with [KindMissingCredential]
	// before any network activity.
	SendMessage(ctx context.Context, request ChatRequest) (*Result, error)

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}

// StreamProvider is implemented by adapters whose upstream can stream.
// Callers detect streaming support via type assertion: provider.(StreamProvider).
type StreamProvider interface {
	Provider

	// OpenStream sends the request with the provider's streaming flag set
	// and returns the open body once the upstream has answered 2xx. Status
	// errors are classified exactly like SendMessage before any byte of the
	// body is consumed. The caller owns RawStream.Body and must close it.
	OpenStream(ctx context.Context, request ChatRequest) (*RawStream, error)
}

// RawStream is a live upstream event stream that has not been parsed yet.
type RawStream struct {
	Body    io.ReadCloser
	Decoder LineDecoder
}

// LineDecoder understands one provider's Server-Sent-Events framing.
type LineDecoder interface {
	// Prefix is the line prefix that marks an event payload, e.g. "data: ".
	// Lines without it are ignored.
	Prefix() string

	// Decode extracts the text fragment carried by one payload. An empty
	// string with a nil error means the event carries no text. An [*Error]
	// terminates the stream; any other error marks the payload as malformed
	// and the line is skipped.
	Decode(payload []byte) (string, error)
}
