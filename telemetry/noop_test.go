package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sebitommy123/sa/telemetry"
)

func TestNoopRecorderDiscardsEverything(t *testing.T) {
	ctx := context.Background()
	rec := telemetry.NewNoopRecorder()

	newCtx, span := rec.StartIteration(ctx, 2, 1)
	if newCtx != ctx {
		t.Error("noop StartIteration should not replace the context")
	}
	if span == nil {
		t.Fatal("noop StartIteration returned a nil span")
	}

	rec.LogFetch(ctx, span, "host", telemetry.FetchTelemetry{Provider: "p", ObjectCount: 3}, nil)
	rec.LogFetch(ctx, span, "host", telemetry.FetchTelemetry{Provider: "p", Error: "boom"}, errors.New("boom"))
	rec.EndIteration(span, nil)
	rec.EndIteration(span, errors.New("boom"))
}

func TestNoopRecorderImplementsRecorder(_ *testing.T) {
	var _ telemetry.Recorder = telemetry.NewNoopRecorder()
}
