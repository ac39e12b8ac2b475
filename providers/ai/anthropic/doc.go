// Package anthropic implements [ai.Provider] and [ai.StreamProvider] for
// Anthropic's Messages API, the gateway's "claude" provider.
//
// The system instruction travels in the dedicated "system" field rather than
// in the messages array, and the credential is sent in the x-api-key header
// together with a pinned anthropic-version. Streamed text only counts when a
// content_block_delta event carries a text_delta; an "error" event ends the
// stream with a classified error.
package anthropic
