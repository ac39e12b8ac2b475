// Package gemini implements [ai.Provider] for Google's Generative Language
// API (generateContent), the gateway's "gemini" provider.
//
// Gemini is blocking only. The credential travels in the "key" query
// parameter, the assistant role is called "model", and the system
// instruction has its own systemInstruction field.
package gemini
