package runner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/specialistvlad/scriptgrid/internal/node"
)

func TestTracing_RunAndNodeSpans(t *testing.T) {
	// --- Arrange ---
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	h := newHarness(t)
	h.r = New(h.launcher, WithPublisher(h.rec), WithProbe(h.tokens.probe), WithTracer(tp.Tracer("test")))
	a := h.node("A")
	b := h.node("B")
	h.join(b, "x", node.KindData, a, "x")

	// --- Act ---
	h.run()
	h.finish("A", nil)
	h.r.Tick(h.ctx)
	h.finish("B", errors.New("boom"))
	h.r.Tick(h.ctx)

	// --- Assert ---
	ended := spans.Ended()
	require.Len(t, ended, 3)

	byName := map[string][]sdktrace.ReadOnlySpan{}
	for _, s := range ended {
		byName[s.Name()] = append(byName[s.Name()], s)
	}
	require.Len(t, byName["scriptgrid.node"], 2)
	require.Len(t, byName["scriptgrid.run"], 1)

	run := byName["scriptgrid.run"][0]
	assert.Equal(t, codes.Error, run.Status().Code)
	assert.Equal(t, "boom", run.Status().Description)
	for _, s := range byName["scriptgrid.node"] {
		assert.Equal(t, run.SpanContext().TraceID(), s.SpanContext().TraceID())
		assert.Equal(t, run.SpanContext().SpanID(), s.Parent().SpanID())
	}
	assert.Equal(t, codes.Unset, byName["scriptgrid.node"][0].Status().Code)
	assert.Equal(t, codes.Error, byName["scriptgrid.node"][1].Status().Code)
}

func TestTracing_CompletedRunEndsSpan(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	h := newHarness(t)
	h.r = New(h.launcher, WithPublisher(h.rec), WithTracer(tp.Tracer("test")))
	h.node("A")

	h.run()
	h.finish("A", nil)
	h.r.Tick(h.ctx)

	require.Len(t, spans.Ended(), 2)
	assert.Equal(t, "scriptgrid.run", spans.Ended()[1].Name())
	assert.Equal(t, codes.Unset, spans.Ended()[1].Status().Code)
}
