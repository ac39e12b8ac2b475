package api

import (
	"net/http"
	"time"

	"github.com/leofalp/geniusengine/core/dispatch"
	"github.com/leofalp/geniusengine/providers/observability"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes int64 = 1 << 20

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// Server holds the HTTP handlers. Build it with New and mount Handler().
type Server struct {
	dispatcher   *dispatch.Dispatcher
	observer     observability.Provider
	maxBodyBytes int64
}

// Option is a functional option for configuring the Server.
type Option func(*Server)

// WithObserver enables access logs.
func WithObserver(observer observability.Provider) Option {
	return func(s *Server) {
		s.observer = observer
	}
}

// WithMaxBodyBytes overrides [DefaultMaxBodyBytes].
func WithMaxBodyBytes(limit int64) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxBodyBytes = limit
		}
	}
}

// New creates a Server routing requests to dispatcher.
func New(dispatcher *dispatch.Dispatcher, opts ...Option) *Server {
	s := &Server{
		dispatcher:   dispatcher,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped with request ids and access
// logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.withRequestID(s.withAccessLog(mux))
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = dispatch.NewRequestID()
		}
		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(dispatch.ContextWithRequestID(r.Context(), requestID)))
	})
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	if s.observer == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := r.Pattern
		if route == "" {
			route = r.URL.Path
		}
		s.observer.Info(r.Context(), "http request",
			observability.String(observability.AttrRequestID, dispatch.RequestIDFromContext(r.Context())),
			observability.String(observability.AttrHTTPMethod, r.Method),
			observability.String(observability.AttrHTTPRoute, route),
			observability.Int(observability.AttrHTTPStatusCode, recorder.status),
			observability.Int64(observability.AttrHTTPResponseBodySize, recorder.written),
			observability.Duration(observability.AttrDuration, time.Since(start)),
		)
	})
}

// statusRecorder remembers the status and size written through it. Unwrap
// keeps http.ResponseController able to flush the underlying writer.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	written     int64
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(p)
	r.written += int64(n)
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
