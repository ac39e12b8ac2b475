// Package api exposes the dispatcher over HTTP.
//
// Routes:
//
//	POST /api/chat      blocking JSON or NDJSON stream
//	POST /api/generate  legacy single-turn route
//	GET  /healthz       configured providers
//
// Every error body is {"error": "<message>"} with the status class of the
// classified error. A failure after a stream has started is written as a
// final NDJSON line instead, since the status line is already gone.
package api
