package dispatch

import (
	"context"

	"github.com/leofalp/geniusengine/internal/utils"
	"github.com/leofalp/geniusengine/providers/ai"
	"github.com/leofalp/geniusengine/providers/observability"
)

// observation tracks one dispatched request from provider resolution to its
// outcome. Every method is a no-op when the dispatcher has no observer.
type observation struct {
	observer  observability.Provider
	span      observability.Span
	timer     *utils.Timer
	requestID string
	attrs     []observability.Attribute
}

// observe starts the request span and enriches ctx with the span and the
// observer so that adapters can attach their own events.
func (d *Dispatcher) observe(ctx context.Context, spanName string, requestID string, provider ai.ProviderID, streaming bool) (context.Context, *observation) {
	o := &observation{
		observer:  d.observer,
		timer:     utils.NewTimer(),
		requestID: requestID,
		attrs: []observability.Attribute{
			observability.String(observability.AttrRequestID, requestID),
			observability.String(observability.AttrLLMProvider, provider.String()),
			observability.Bool(observability.AttrLLMStreaming, streaming),
		},
	}
	if o.observer == nil {
		return ctx, o
	}

	ctx, o.span = o.observer.StartSpan(ctx, spanName, o.attrs...)
	ctx = observability.ContextWithSpan(ctx, o.span)
	ctx = observability.ContextWithObserver(ctx, o.observer)

	o.observer.Debug(ctx, "dispatch start", o.attrs...)
	return ctx, o
}

// fragment logs one stream fragment at trace level.
func (o *observation) fragment(ctx context.Context, index int, text string) {
	if o.observer == nil {
		return
	}
	o.observer.Trace(ctx, "stream fragment",
		observability.String(observability.AttrRequestID, o.requestID),
		observability.Int(observability.AttrStreamFragments, index),
		observability.String("text", utils.TruncateString(text, 80)),
	)
}

func (o *observation) succeed(ctx context.Context, contentLength int) {
	if o.observer == nil {
		return
	}
	elapsed := o.timer.Stop()

	o.span.SetAttributes(observability.Int(observability.AttrResponseLength, contentLength))
	o.span.SetStatus(observability.StatusOK, "")
	o.span.End()

	o.observer.Info(ctx, "dispatch completed", o.with(
		observability.Int(observability.AttrResponseLength, contentLength),
		observability.Duration(observability.AttrDuration, elapsed),
	)...)
	o.observer.Counter(observability.MetricRequestCount).Add(ctx, 1,
		o.with(observability.String(observability.AttrStatus, "success"))...)
	o.observer.Histogram(observability.MetricRequestDuration).Record(ctx, float64(elapsed.Milliseconds()), o.attrs...)
}

// abandon closes the books on a stream the caller stopped reading before
// its completion marker.
func (o *observation) abandon(ctx context.Context, fragments int) {
	if o.observer == nil {
		return
	}
	elapsed := o.timer.Stop()

	o.span.SetAttributes(observability.Int(observability.AttrStreamFragments, fragments))
	o.span.SetStatus(observability.StatusOK, "stream abandoned")
	o.span.End()

	o.observer.Debug(ctx, "stream abandoned by caller", o.with(
		observability.Int(observability.AttrStreamFragments, fragments),
		observability.Duration(observability.AttrDuration, elapsed),
	)...)
	o.observer.Counter(observability.MetricRequestCount).Add(ctx, 1,
		o.with(observability.String(observability.AttrStatus, "abandoned"))...)
}

func (o *observation) fail(ctx context.Context, err *ai.Error) {
	if o.observer == nil {
		return
	}
	elapsed := o.timer.Stop()

	o.span.RecordError(err)
	o.span.SetAttributes(observability.String(observability.AttrErrorType, string(err.Kind)))
	o.span.SetStatus(observability.StatusError, "dispatch failed")
	o.span.End()

	o.observer.Error(ctx, "dispatch failed", o.with(
		observability.Error(err),
		observability.String(observability.AttrErrorType, string(err.Kind)),
		observability.Duration(observability.AttrDuration, elapsed),
	)...)
	o.observer.Counter(observability.MetricRequestCount).Add(ctx, 1,
		o.with(observability.String(observability.AttrStatus, "error"))...)
	o.observer.Counter(observability.MetricErrorCount).Add(ctx, 1,
		o.with(observability.String(observability.AttrErrorType, string(err.Kind)))...)
	o.observer.Histogram(observability.MetricRequestDuration).Record(ctx, float64(elapsed.Milliseconds()), o.attrs...)
}

func (o *observation) with(extra ...observability.Attribute) []observability.Attribute {
	attrs := make([]observability.Attribute, 0, len(o.attrs)+len(extra))
	attrs = append(attrs, o.attrs...)
	return append(attrs, extra...)
}

// reject records a request refused before any provider was involved.
func (d *Dispatcher) reject(ctx context.Context, requestID string, err *ai.Error) {
	if d.observer == nil {
		return
	}
	attrs := []observability.Attribute{
		observability.String(observability.AttrRequestID, requestID),
		observability.String(observability.AttrErrorType, string(err.Kind)),
	}
	if err.Provider != "" {
		attrs = append(attrs, observability.String(observability.AttrLLMProvider, err.Provider.String()))
	}

	d.observer.Warn(ctx, "request rejected", append(attrs, observability.Error(err))...)
	d.observer.Counter(observability.MetricRequestCount).Add(ctx, 1,
		append(attrs, observability.String(observability.AttrStatus, "rejected"))...)
	d.observer.Counter(observability.MetricErrorCount).Add(ctx, 1, attrs...)
}
