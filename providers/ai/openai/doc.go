// Package openai implements [ai.Provider] and [ai.StreamProvider] for the
// OpenAI Chat Completions API, the gateway's "gpt4" provider.
//
// Requests use the shared chat-completions wire format (system turn embedded
// in the messages array, bearer authentication). Streaming sets "stream":
// true and hands the raw Server-Sent-Events body to the caller together with
// a decoder for choices[0].delta.content.
package openai
