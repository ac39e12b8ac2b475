package main

import (
	"github.com/leofalp/geniusengine/providers/observability/slogobs"
)

// newObserver builds the slog observer. Unset flags fall back to the
// environment variables read by slogobs.
func (cli *CLI) newObserver() *slogobs.Observer {
	opts := []slogobs.Option{slogobs.WithColors(cli.LogColors)}
	if cli.LogLevel != "" {
		opts = append(opts, slogobs.WithLevel(slogobs.ParseLogLevel(cli.LogLevel)))
	}
	if cli.LogFormat != "" {
		opts = append(opts, slogobs.WithFormat(slogobs.ParseFormat(cli.LogFormat)))
	}
	return slogobs.New(opts...)
}
