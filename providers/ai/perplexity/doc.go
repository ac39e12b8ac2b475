// Package perplexity implements [ai.Provider] for Perplexity's
// search-augmented chat API, the gateway's "perplexity" provider.
//
// The wire format is OpenAI compatible. Perplexity is blocking only; the
// search sources it returns are exposed as [ai.Result.Citations].
package perplexity
