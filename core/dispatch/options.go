package dispatch

import (
	"time"

	"github.com/leofalp/geniusengine/providers/ai"
	"github.com/leofalp/geniusengine/providers/observability"
)

// Default timeouts, overridable through the configuration file or CLI flags.
const (
	DefaultRequestTimeout = 60 * time.Second
	DefaultStreamTimeout  = 120 * time.Second
	DefaultStallTimeout   = 30 * time.Second
)

// Option is a functional option for configuring the Dispatcher.
type Option func(*Dispatcher)

// WithDefaultProvider sets the provider substituted for unknown identifiers.
// Identifiers outside the known set are ignored.
func WithDefaultProvider(id ai.ProviderID) Option {
	return func(d *Dispatcher) {
		if _, ok := ai.ParseProviderID(string(id)); ok {
			d.defaultProvider = id
		}
	}
}

// WithRequestTimeout bounds a blocking call. Zero disables the bound.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.requestTimeout = timeout
	}
}

// WithStreamTimeout bounds a whole stream from the request start. Zero
// disables the bound.
func WithStreamTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.streamTimeout = timeout
	}
}

// WithStallTimeout bounds the silence between two chunks of a stream. Zero
// disables the bound.
func WithStallTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.stallTimeout = timeout
	}
}

// WithObserver enables spans, metrics and logs for every request.
func WithObserver(observer observability.Provider) Option {
	return func(d *Dispatcher) {
		d.observer = observer
	}
}
