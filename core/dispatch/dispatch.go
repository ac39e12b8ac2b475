package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/leofalp/geniusengine/core/prompt"
	"github.com/leofalp/geniusengine/internal/utils"
	"github.com/leofalp/geniusengine/providers/ai"
	"github.com/leofalp/geniusengine/providers/ai/stream"
	"github.com/leofalp/geniusengine/providers/observability"
)

// Dispatcher routes generation requests to the registered adapters. It is
// safe for concurrent use; requests share nothing but the registry.
type Dispatcher struct {
	registry        *Registry
	defaultProvider ai.ProviderID
	requestTimeout  time.Duration
	streamTimeout   time.Duration
	stallTimeout    time.Duration
	observer        observability.Provider
}

// New creates a Dispatcher over registry.
func New(registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:        registry,
		defaultProvider: ai.DefaultProvider,
		requestTimeout:  DefaultRequestTimeout,
		streamTimeout:   DefaultStreamTimeout,
		stallTimeout:    DefaultStallTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry the dispatcher routes to.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Outcome is the result of a dispatched request: exactly one of Result and
// Stream is set.
type Outcome struct {
	RequestID string
	Provider  ai.ProviderID
	Result    *ai.Result
	Stream    *ai.EventStream
}

// Streaming reports whether the outcome carries a live stream.
func (o *Outcome) Streaming() bool {
	return o.Stream != nil
}

// Dispatch validates request, resolves its provider and performs the call.
//
// The streaming path is taken only when request.Stream is set and the
// provider can stream; otherwise the call is blocking even if a stream was
// asked for. A returned stream must be consumed by the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, request ai.GenerationRequest) (*Outcome, error) {
	ctx, requestID := ensureRequestID(ctx)

	message := strings.TrimSpace(request.Message)
	if message == "" {
		err := ai.InvalidInputError("Missing or invalid message")
		d.reject(ctx, requestID, err)
		return nil, err
	}

	id := d.resolve(ctx, requestID, request.Provider)

	provider, ok := d.registry.Lookup(id)
	if !ok || !provider.Config().HasCredential() {
		cfg := ai.ProviderConfig{ID: id}
		if ok {
			cfg = provider.Config()
		}
		err := ai.MissingCredentialError(cfg)
		d.reject(ctx, requestID, err)
		return nil, err
	}

	chat := ai.ChatRequest{
		Message:           message,
		History:           request.History,
		SystemInstruction: prompt.Compile(request.MindsetLabel),
	}
	if d.observer != nil {
		d.observer.Debug(ctx, "request accepted",
			observability.String(observability.AttrRequestID, requestID),
			observability.String(observability.AttrLLMProvider, id.String()),
			observability.String(observability.AttrRequestMindset, prompt.DisplayName(request.MindsetLabel)),
			observability.Int(observability.AttrRequestHistoryCount, len(request.History)),
		)
	}

	if streamer, ok := provider.(ai.StreamProvider); ok && request.Stream {
		events, err := d.openStream(ctx, requestID, streamer, chat)
		if err != nil {
			return nil, err
		}
		return &Outcome{RequestID: requestID, Provider: id, Stream: events}, nil
	}

	result, err := d.send(ctx, requestID, provider, chat)
	if err != nil {
		return nil, err
	}
	return &Outcome{RequestID: requestID, Provider: id, Result: result}, nil
}

// Generate dispatches request and always returns a complete result,
// draining the stream when one was opened.
func (d *Dispatcher) Generate(ctx context.Context, request ai.GenerationRequest) (*ai.Result, error) {
	outcome, err := d.Dispatch(ctx, request)
	if err != nil {
		return nil, err
	}
	if outcome.Streaming() {
		return outcome.Stream.Collect()
	}
	return outcome.Result, nil
}

func (d *Dispatcher) resolve(ctx context.Context, requestID string, raw string) ai.ProviderID {
	id := ai.ResolveProviderID(raw, d.defaultProvider)
	if strings.TrimSpace(raw) != "" && string(id) != raw && d.observer != nil {
		d.observer.Warn(ctx, "unknown provider, using default",
			observability.String(observability.AttrRequestID, requestID),
			observability.String(observability.AttrRequestProvider, raw),
			observability.String(observability.AttrLLMProvider, id.String()),
		)
	}
	return id
}

func (d *Dispatcher) send(ctx context.Context, requestID string, provider ai.Provider, chat ai.ChatRequest) (*ai.Result, error) {
	id := provider.ID()
	ctx, obs := d.observe(ctx, observability.SpanDispatchGenerate, requestID, id, false)

	callCtx, cancel := withTimeout(ctx, d.requestTimeout)
	defer cancel()

	result, err := provider.SendMessage(callCtx, chat)
	if err != nil {
		classified := classify(callCtx, id, err)
		obs.fail(ctx, classified)
		return nil, classified
	}
	if result == nil || strings.TrimSpace(result.Content) == "" {
		classified := ai.EmptyResponseError(id)
		obs.fail(ctx, classified)
		return nil, classified
	}

	result.ProviderUsed = id
	obs.succeed(ctx, len(result.Content))
	return result, nil
}

// openStream opens the upstream stream and wraps it into an EventStream. The
// stall timer only starts once the caller begins iterating.
func (d *Dispatcher) openStream(ctx context.Context, requestID string, provider ai.StreamProvider, chat ai.ChatRequest) (*ai.EventStream, error) {
	id := provider.ID()
	ctx, obs := d.observe(ctx, observability.SpanDispatchStream, requestID, id, true)

	streamCtx, cancelCause := context.WithCancelCause(ctx)
	streamCtx, cancelTimeout := withTimeout(streamCtx, d.streamTimeout)
	release := func() {
		cancelTimeout()
		cancelCause(nil)
	}

	raw, err := provider.OpenStream(streamCtx, chat)
	if err != nil {
		classified := classify(streamCtx, id, err)
		release()
		obs.fail(ctx, classified)
		return nil, classified
	}
	if obs.span != nil {
		obs.span.AddEvent(observability.EventStreamOpened)
	}

	var consumed atomic.Bool
	iterator := func(yield func(ai.StreamEvent, error) bool) {
		if !consumed.CompareAndSwap(false, true) {
			return
		}

		guard := newStallGuard(raw.Body, d.stallTimeout, func() { cancelCause(ai.ErrStreamStalled) })
		defer func() {
			guard.Stop()
			utils.CloseWithLog(raw.Body)
			release()
		}()

		fragments, length := 0, 0
		for event, err := range stream.NewNormalizer(guard, raw.Decoder, id).Events() {
			if err != nil {
				classified := classify(streamCtx, id, err)
				obs.fail(ctx, classified)
				yield(ai.StreamEvent{}, classified)
				return
			}

			switch event.Type {
			case ai.StreamEventText:
				fragments++
				length += len(event.Text)
				obs.fragment(ctx, fragments, event.Text)
			case ai.StreamEventDone:
				if obs.span != nil {
					obs.span.AddEvent(observability.EventStreamCompleted,
						observability.Int(observability.AttrStreamFragments, fragments))
				}
				obs.succeed(ctx, length)
				yield(event, nil)
				return
			}

			if !yield(event, nil) {
				obs.abandon(ctx, fragments)
				return
			}
		}
	}

	return ai.NewEventStream(id, iterator), nil
}

// classify turns err into an *ai.Error. A transport-level failure raised
// after ctx was canceled is reported by the cancellation cause, so that a
// stalled stream, a deadline and a caller cancellation read differently
// from a plain network fault.
func classify(ctx context.Context, id ai.ProviderID, err error) *ai.Error {
	classified := ai.Classify(id, err)
	if !classified.IsTransport() {
		return classified
	}

	cause := context.Cause(ctx)
	if cause == nil {
		return classified
	}
	reclassified := ai.TransportError(id, cause)
	reclassified.Cause = errors.Join(cause, err)
	return reclassified
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeoutCause(ctx, timeout, ai.ErrDeadlineReached)
}
