// Package dispatch is the single entry point for generation requests.
//
// A [Dispatcher] validates the request, resolves the provider (unknown
// identifiers fall back to the configured default), refuses to touch the
// network when the provider has no credential, compiles the system
// instruction and then takes either the blocking or the streaming path.
// Streaming is only used when the caller asked for it and the provider
// implements [ai.StreamProvider].
//
// Every error returned, or yielded by a stream, is an [*ai.Error]. Nothing
// is retried. Blocking calls run under the request timeout; streams run
// under an overall timeout plus a stall timeout that is reset by every
// chunk read from the upstream body.
package dispatch
