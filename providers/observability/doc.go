// Package observability defines the interfaces and semantic conventions used
// for tracing, metrics and structured logging across the gateway.
//
// The central entry point is [Provider], which composes [Tracer], [Metrics]
// and [Logger] into a single injectable dependency. The dispatcher attaches
// the active [Provider] and the request [Span] to the [context.Context] with
// [ContextWithObserver] and [ContextWithSpan]; adapters and HTTP helpers
// retrieve them with [ObserverFromContext] and [SpanFromContext] and simply
// skip instrumentation when none is present.
package observability
