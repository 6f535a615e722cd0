package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CheckMeta identifies a health view run, or one service check inside it.
type CheckMeta struct {
	View    string // liveness|readiness|monitor
	Service string // empty for the whole view
}

// SpanName returns the deterministic span name for this check.
// Format: run_<view>_route or check.<view>.<service>
func (m CheckMeta) SpanName() string {
	if m.Service != "" {
		return "check." + m.View + "." + m.Service
	}
	return "run_" + m.View + "_route"
}

func (m CheckMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("health.view", m.View),
	}
	if m.Service != "" {
		attrs = append(attrs, attribute.String("health.service", m.Service))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with health-check span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a view or a service check.
	StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span)

	// EndSpan records status and err, then ends the span.
	EndSpan(span trace.Span, status string, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with the check metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(meta.attributes()...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span, marking it failed when err is set.
func (t *tracerImpl) EndSpan(span trace.Span, status string, err error) {
	span.SetAttributes(attribute.String("health.status", status))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a no-op tracer.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, status string, err error) {
	span.End()
}
