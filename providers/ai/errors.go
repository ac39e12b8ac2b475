package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a failure. The classification decides the HTTP status
// class reported to callers and whether the caller may suggest another
// provider; it never triggers a retry inside this module.
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "invalid_input"
	KindMissingCredential ErrorKind = "missing_credential"
	KindRateLimited       ErrorKind = "rate_limited"
	KindInvalidCredential ErrorKind = "invalid_credential"
	KindUpstream          ErrorKind = "upstream_error"
	KindEmptyResponse     ErrorKind = "empty_response"
	KindTransport         ErrorKind = "transport_error"
	KindTimeout           ErrorKind = "timeout"
	KindCanceled          ErrorKind = "canceled"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrMissingCredential = &Error{Kind: KindMissingCredential}
	ErrRateLimited       = &Error{Kind: KindRateLimited}
	ErrInvalidCredential = &Error{Kind: KindInvalidCredential}
	ErrUpstream          = &Error{Kind: KindUpstream}
	ErrEmptyResponse     = &Error{Kind: KindEmptyResponse}
	ErrTransport         = &Error{Kind: KindTransport}
	ErrTimeout           = &Error{Kind: KindTimeout}
	ErrCanceled          = &Error{Kind: KindCanceled}
)

// Context causes installed by the dispatcher on streaming requests.
var (
	ErrStreamStalled   = errors.New("stream stalled: no data received within the stall timeout")
	ErrDeadlineReached = errors.New("request exceeded its overall timeout")
)

// Error is the classified error returned by adapters and the dispatcher.
type Error struct {
	Kind       ErrorKind
	Provider   ProviderID
	StatusCode int    // Upstream HTTP status, zero when no response was received
	Message    string // User-facing message
	Cause      error
}

// Error returns the user-facing message.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches the kind-only sentinels declared in this package.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*Error)
	if !ok || sentinel.Message != "" || sentinel.Provider != "" || sentinel.StatusCode != 0 {
		return false
	}
	return sentinel.Kind == e.Kind
}

// HTTPStatus maps the kind onto the status class reported to callers.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindMissingCredential:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// IsTransport reports whether the failure happened below the upstream
// application layer (network, timeout, cancellation).
func (e *Error) IsTransport() bool {
	return e.Kind == KindTransport || e.Kind == KindTimeout || e.Kind == KindCanceled
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var classified *Error
	if errors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// KindOf returns the kind of err, or the empty kind when err is nil or
// unclassified.
func KindOf(err error) ErrorKind {
	if classified, ok := AsError(err); ok {
		return classified.Kind
	}
	return ""
}

// InvalidInputError rejects caller input before any network activity.
func InvalidInputError(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// MissingCredentialError reports that cfg has no credential configured.
func MissingCredentialError(cfg ProviderConfig) *Error {
	return &Error{
		Kind:     KindMissingCredential,
		Provider: cfg.ID,
		Message:  fmt.Sprintf("Configure %s in .env.local", cfg.CredentialLabel()),
	}
}

// EmptyResponseError reports a 2xx answer without usable text.
func EmptyResponseError(provider ProviderID) *Error {
	return &Error{
		Kind:     KindEmptyResponse,
		Provider: provider,
		Message:  "Empty response from " + provider.DisplayName(),
	}
}

// StatusError applies the uniform non-2xx mapping: 429 is rate limiting,
// 401/403 an invalid credential naming the variable to fix, anything else
// an upstream error carrying upstreamMessage or, failing that, statusText.
func StatusError(cfg ProviderConfig, statusCode int, statusText string, upstreamMessage string) *Error {
	classified := &Error{Provider: cfg.ID, StatusCode: statusCode}

	switch statusCode {
	case http.StatusTooManyRequests:
		classified.Kind = KindRateLimited
		classified.Message = "Rate limit exceeded. Try again shortly."
	case http.StatusUnauthorized, http.StatusForbidden:
		classified.Kind = KindInvalidCredential
		classified.Message = fmt.Sprintf("Invalid or expired API key. Check %s in .env.local.", cfg.CredentialLabel())
	default:
		classified.Kind = KindUpstream
		classified.Message = strings.TrimSpace(upstreamMessage)
		if classified.Message == "" {
			classified.Message = strings.TrimSpace(statusText)
		}
		if classified.Message == "" {
			classified.Message = fmt.Sprintf("%s returned HTTP %d", cfg.ID.DisplayName(), statusCode)
		}
	}

	return classified
}

// TransportError classifies a failure that prevented a complete exchange
// with the upstream. Deadline causes become timeouts and cancellations stay
// distinguishable from network faults.
func TransportError(provider ProviderID, err error) *Error {
	classified := &Error{Provider: provider, Cause: err}
	name := provider.DisplayName()

	switch {
	case errors.Is(err, ErrStreamStalled):
		classified.Kind = KindTimeout
		classified.Message = fmt.Sprintf("%s stopped sending data. Try again or switch provider.", name)
	case errors.Is(err, ErrDeadlineReached), errors.Is(err, context.DeadlineExceeded):
		classified.Kind = KindTimeout
		classified.Message = fmt.Sprintf("Request to %s timed out. Try again or switch provider.", name)
	case errors.Is(err, context.Canceled):
		classified.Kind = KindCanceled
		classified.Message = fmt.Sprintf("Request to %s was canceled", name)
	default:
		classified.Kind = KindTransport
		classified.Message = fmt.Sprintf("Could not reach %s. Try again or switch provider.", name)
	}

	return classified
}

// Classify guarantees an *Error: classified errors pass through, anything
// else is treated as a transport failure.
func Classify(provider ProviderID, err error) *Error {
	if err == nil {
		return nil
	}
	if classified, ok := AsError(err); ok {
		return classified
	}
	return TransportError(provider, err)
}
