// Package upstream holds the request plumbing shared by every adapter:
// span instrumentation around the outbound call and the translation of
// utils HTTP errors into classified [ai.Error] values.
package upstream

import (
	"context"
	"errors"

	"github.com/leofalp/geniusengine/internal/utils"
	"github.com/leofalp/geniusengine/providers/ai"
	"github.com/leofalp/geniusengine/providers/observability"
)

// StatusMapper turns a non-2xx answer into a classified error. Each adapter
// provides one that knows its provider's error envelope.
type StatusMapper func(statusCode int, statusText string, body []byte) *ai.Error

// Failure classifies an error returned by utils.DoPostSync or
// utils.DoPostStream.
func Failure(cfg ai.ProviderConfig, err error, fromStatus StatusMapper) *ai.Error {
	var statusErr *utils.StatusError
	switch {
	case errors.As(err, &statusErr):
		return fromStatus(statusErr.StatusCode, statusErr.StatusText(), statusErr.Body)
	case errors.Is(err, utils.ErrInvalidResponse):
		return &ai.Error{
			Kind:     ai.KindUpstream,
			Provider: cfg.ID,
			Message:  "Invalid response from " + cfg.ID.DisplayName(),
			Cause:    err,
		}
	default:
		return ai.TransportError(cfg.ID, err)
	}
}

// Begin records the start of an outbound call on the span and observer found
// in ctx. The returned function records its end; it is safe to call when
// neither is present.
func Begin(ctx context.Context, cfg ai.ProviderConfig, request ai.ChatRequest, streaming bool) func(err error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, cfg.ID.String()),
			observability.String(observability.AttrLLMEndpoint, cfg.BaseURL),
			observability.String(observability.AttrLLMModel, cfg.Model),
			observability.Int(observability.AttrLLMMaxTokens, cfg.MaxTokens),
			observability.Bool(observability.AttrLLMStreaming, streaming),
		)
	}

	if observer != nil {
		observer.Trace(ctx, cfg.ID.DisplayName()+" provider preparing request",
			observability.String(observability.AttrLLMProvider, cfg.ID.String()),
			observability.String(observability.AttrLLMModel, cfg.Model),
			observability.Int(observability.AttrRequestHistoryCount, len(request.History)),
			observability.String(observability.AttrRequestMessage, utils.TruncateStringDefault(request.Message)),
		)
	}

	return func(err error) {
		if span != nil {
			if err != nil {
				span.AddEvent(observability.EventLLMRequestEnd, observability.Error(err))
			} else {
				span.AddEvent(observability.EventLLMRequestEnd)
			}
		}
		if observer != nil && err != nil {
			observer.Trace(ctx, "HTTP request failed",
				observability.String(observability.AttrLLMProvider, cfg.ID.String()),
				observability.Error(err),
			)
		}
	}
}
