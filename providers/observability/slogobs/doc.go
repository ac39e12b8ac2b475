// Package slogobs provides an observability.Provider implementation backed by
// the standard library log/slog package.
//
// Spans, counters and histograms are reported as DEBUG records, so a gateway
// running at INFO only prints request summaries and failures. The output
// format (compact, pretty, json) and the minimum level are read from
// GENIUSENGINE_LOG_FORMAT and GENIUSENGINE_LOG_LEVEL unless overridden with
// [WithFormat] and [WithLevel].
package slogobs
