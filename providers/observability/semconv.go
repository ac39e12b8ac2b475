package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across the dispatcher, the adapters and the HTTP boundary.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the provider identifier (e.g., "gpt4", "claude")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier (e.g., "gpt-4o", "sonar")
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API base URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMMaxTokens is the maximum output tokens requested
	AttrLLMMaxTokens = "llm.max_tokens" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMStreaming reports whether the streaming path was taken
	AttrLLMStreaming = "llm.streaming"
)

// --- Request Attributes ---

const (
	// AttrRequestID is the gateway-assigned request identifier
	AttrRequestID = "request.id"

	// AttrRequestProvider is the provider identifier as sent by the caller
	AttrRequestProvider = "request.provider"

	// AttrRequestHistoryCount is the number of history turns kept for the upstream
	AttrRequestHistoryCount = "request.history_count"

	// AttrRequestMindset is the mindset label used for the system instruction
	AttrRequestMindset = "request.mindset"

	// AttrRequestMessage is the (truncated) user message, logged at TRACE only
	AttrRequestMessage = "request.message"

	// AttrResponseLength is the length in bytes of the produced content
	AttrResponseLength = "response.length"

	// AttrStreamFragments is the number of text fragments emitted by a stream
	AttrStreamFragments = "stream.fragments"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPRoute is the gateway route that received the request
	AttrHTTPRoute = "http.route"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is the error classification (ai.ErrorKind)
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanDispatchGenerate is the span for a blocking generation
	SpanDispatchGenerate = "dispatch.generate"

	// SpanDispatchStream is the span for a streaming generation
	SpanDispatchStream = "dispatch.stream"
)

// --- Event Names ---

const (
	// EventLLMRequestStart marks the start of an upstream request
	EventLLMRequestStart = "llm.request.start"

	// EventLLMRequestEnd marks the end of an upstream request
	EventLLMRequestEnd = "llm.request.end"

	// EventStreamOpened marks the moment the upstream accepted a stream
	EventStreamOpened = "llm.stream.opened"

	// EventStreamCompleted marks the emission of the completion event
	EventStreamCompleted = "llm.stream.completed"
)

// --- Metric Names ---

const (
	// MetricRequestCount counts dispatched generation requests
	MetricRequestCount = "geniusengine.requests"

	// MetricErrorCount counts failed generation requests
	MetricErrorCount = "geniusengine.errors"

	// MetricRequestDuration is the histogram of request durations in milliseconds
	MetricRequestDuration = "geniusengine.request.duration_ms"
)
