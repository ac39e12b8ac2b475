// Package stream turns a provider's raw Server-Sent-Events body into the
// uniform [ai.StreamEvent] sequence.
//
// A [Normalizer] keeps one rolling buffer across reads. Each call to
// [Normalizer.Next] performs exactly one read on the underlying body, frames
// the complete lines it now holds, and hands every line that carries the
// decoder's prefix to the provider's [ai.LineDecoder]. The provider-specific
// knowledge (event shapes, sub-type tags, error events) lives entirely in the
// decoder; the normalizer only deals with bytes and lines.
package stream
