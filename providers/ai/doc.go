// Package ai defines the shared, provider-agnostic types and interfaces used
// by every upstream LLM adapter (OpenAI, Anthropic, Gemini, Perplexity).
// Each adapter's conversion layer maps these types to its own wire format,
// keeping the dispatcher decoupled from provider-specific details.
//
// The two central interfaces are [Provider] for blocking generations and
// [StreamProvider] for adapters that can open a Server-Sent-Events stream.
// A streaming adapter does not parse events itself: it returns a [RawStream]
// holding the open body and the [LineDecoder] that understands the
// provider's event shape, and the stream normalizer turns it into
// [StreamEvent] values.
//
// Every failure that crosses a package boundary is an [*Error] classified
// by [ErrorKind].
package ai
