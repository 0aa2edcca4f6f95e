// Package telemetry gives the lazy-fetch driver exactly the observability
// vocabulary it needs — one span per fixed-point iteration, one log
// line/event/counter set per scope download — instead of a generic
// Logger/Metrics/Tracer trio the driver would have to assemble into that
// shape at each call site. Adapted from runtime/agents/telemetry's
// Logger/Metrics/Tracer/Span split, collapsed here because this engine only
// ever records two things: an iteration of download_scope attempts, and the
// outcome of one of those attempts.
package telemetry

import "context"

// Recorder is the driver's observability sink. StartIteration opens one
// span for a round of the execute_fully loop (spec.md §4.6); LogFetch
// records zero or more scope downloads against that span; EndIteration
// closes it. Driver code never touches the returned Span directly — it is
// only ever threaded back into LogFetch and EndIteration.
type Recorder interface {
	StartIteration(ctx context.Context, missingScopeCount, downloadedScopeCount int) (context.Context, *Span)
	LogFetch(ctx context.Context, span *Span, scopeType string, ft FetchTelemetry, err error)
	EndIteration(span *Span, err error)
}

// Span is an opaque handle threaded from StartIteration through any number
// of LogFetch calls to EndIteration. Its fields are unexported:
// implementations populate it with whatever they need (a real
// trace.Span, nothing at all) and interpret it themselves.
type Span struct {
	traceSpan any
}

// FetchTelemetry captures observability metadata for one scope download
// (spec.md §4.6, Download-scope). The Extra map holds detail that doesn't
// warrant its own field (the driver sets "cache_hit" when a download is
// served from the payload cache).
type FetchTelemetry struct {
	// DurationMs is the wall-clock time the fetch_lazy call took.
	DurationMs int64
	// ObjectCount is the number of raw objects returned.
	ObjectCount int
	// Provider identifies the scope-provider handle the fetch targeted.
	Provider string
	// Error is the provider-reported error string, if any (spec.md §7,
	// ProviderError); empty on success.
	Error string
	// Extra holds provider-specific metadata not captured by the fields above.
	Extra map[string]any
}

// noopRecorder discards everything; it's the Driver's default when no
// Recorder is configured, and what tests run against when they don't care
// about observability output.
type noopRecorder struct{}

// NewNoopRecorder returns a Recorder that records nothing.
func NewNoopRecorder() Recorder { return noopRecorder{} }

func (noopRecorder) StartIteration(ctx context.Context, _, _ int) (context.Context, *Span) {
	return ctx, &Span{}
}

func (noopRecorder) LogFetch(context.Context, *Span, string, FetchTelemetry, error) {}

func (noopRecorder) EndIteration(*Span, error) {}
