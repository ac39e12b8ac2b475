// Package utils provides shared low-level helpers used by the provider
// adapters: HTTP round-trips for blocking and streaming calls with a typed
// [StatusError] for non-2xx answers, lenient JSON decoding for upstream
// error bodies, string truncation for logs, a pointer helper and a simple
// elapsed-time timer.
//
// Key entry points: [DoPostSync] for synchronous JSON round-trips,
// [DoPostStream] for Server-Sent-Events responses, and [DecodeLenient] for
// payloads that may have been truncated.
package utils
