package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"goa.design/clue/log"
)

// clueRecorder implements Recorder directly against goa.design/clue/log and
// an OpenTelemetry meter/tracer. There is no generic Logger/Metrics/Tracer
// layer in between: it only ever emits the two shapes this engine has,
// a "driver.iteration" span and a "scope download" log line/event/counter
// set, so every field name below is one spec.md §4.6 actually names.
type clueRecorder struct {
	tracer trace.Tracer
	meter  metric.Meter
}

// NewClueRecorder wires driver iteration/fetch telemetry to clue and the
// global OTEL providers. Configure those providers (via
// clue.ConfigureOpenTelemetry or similar) before running queries; this
// constructor only looks them up by instrumentation name.
func NewClueRecorder() Recorder {
	const instrumentation = "github.com/sebitommy123/sa/driver"
	return &clueRecorder{
		tracer: otel.Tracer(instrumentation),
		meter:  otel.Meter(instrumentation),
	}
}

func (r *clueRecorder) StartIteration(ctx context.Context, missingScopeCount, downloadedScopeCount int) (context.Context, *Span) {
	newCtx, span := r.tracer.Start(ctx, "driver.iteration", trace.WithAttributes(
		attribute.Int("missing_scope_count", missingScopeCount),
		attribute.Int("downloaded_scope_count", downloadedScopeCount),
	))
	r.bumpCounter(ctx, "driver.iteration", "")
	return newCtx, &Span{traceSpan: span}
}

func (r *clueRecorder) LogFetch(ctx context.Context, span *Span, scopeType string, ft FetchTelemetry, err error) {
	traceSpan, _ := span.traceSpan.(trace.Span)

	fields := []log.Fielder{
		log.KV{K: "provider", V: ft.Provider},
		log.KV{K: "type", V: scopeType},
		log.KV{K: "duration_ms", V: ft.DurationMs},
		log.KV{K: "object_count", V: ft.ObjectCount},
	}

	if err != nil || ft.Error != "" {
		msg := ft.Error
		if msg == "" && err != nil {
			msg = err.Error()
		}
		log.Warn(ctx, append(fields, log.KV{K: "error", V: msg})...)
		if traceSpan != nil {
			traceSpan.AddEvent("scope_download_error", trace.WithAttributes(
				attribute.String("provider", ft.Provider),
				attribute.String("scope_type", scopeType),
				attribute.String("error", msg),
			))
		}
		r.bumpCounter(ctx, "driver.scope_download.error", ft.Provider)
		return
	}

	log.Debug(ctx, fields...)
	r.bumpCounter(ctx, "driver.scope_download.success", ft.Provider)

	hist, histErr := r.meter.Float64Histogram("driver.scope_download.duration_seconds")
	if histErr == nil {
		hist.Record(ctx, time.Duration(ft.DurationMs*int64(time.Millisecond)).Seconds(),
			metric.WithAttributes(attribute.String("provider", ft.Provider), attribute.String("type", scopeType)))
	}
}

func (r *clueRecorder) EndIteration(span *Span, err error) {
	traceSpan, _ := span.traceSpan.(trace.Span)
	if traceSpan == nil {
		return
	}
	if err != nil {
		traceSpan.RecordError(err)
		traceSpan.SetStatus(codes.Error, err.Error())
	} else {
		traceSpan.SetStatus(codes.Ok, "")
	}
	traceSpan.End()
}

// bumpCounter increments a named counter, tagged by provider when one is
// given, swallowing the error a disabled/misconfigured meter returns rather
// than surfacing telemetry plumbing failures to query execution.
func (r *clueRecorder) bumpCounter(ctx context.Context, name, provider string) {
	counter, err := r.meter.Float64Counter(name)
	if err != nil {
		return
	}
	if provider == "" {
		counter.Add(ctx, 1)
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}
