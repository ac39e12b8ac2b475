package dispatch

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// ContextWithRequestID attaches a caller-chosen request id.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id carried by ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}

// NewRequestID returns a fresh random request id.
func NewRequestID() string {
	return uuid.NewString()
}

func ensureRequestID(ctx context.Context) (context.Context, string) {
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		return ctx, requestID
	}
	requestID := NewRequestID()
	return ContextWithRequestID(ctx, requestID), requestID
}
