package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestCheckMeta_SpanName(t *testing.T) {
	tests := []struct {
		meta CheckMeta
		want string
	}{
		{CheckMeta{View: "liveness"}, "run_liveness_route"},
		{CheckMeta{View: "monitor", Service: "postgres"}, "check.monitor.postgres"},
	}
	for _, tc := range tests {
		if got := tc.meta.SpanName(); got != tc.want {
			t.Errorf("SpanName() = %q, want %q", got, tc.want)
		}
	}
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestTracer_SpanAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tr := NewTracer(tp.Tracer("test"))

	_, span := tr.StartSpan(context.Background(), CheckMeta{View: "readiness", Service: "kafka"})
	tr.EndSpan(span, "Healthy", nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "check.readiness.kafka" {
		t.Errorf("span name = %q", s.Name())
	}
	attrs := attrMap(s.Attributes())
	if v := attrs["health.view"]; v.AsString() != "readiness" {
		t.Errorf("health.view = %v", v)
	}
	if v := attrs["health.service"]; v.AsString() != "kafka" {
		t.Errorf("health.service = %v", v)
	}
	if v := attrs["health.status"]; v.AsString() != "Healthy" {
		t.Errorf("health.status = %v", v)
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status code = %v, want Ok", s.Status().Code)
	}
}

func TestTracer_EndSpanWithError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tr := NewTracer(tp.Tracer("test"))

	_, span := tr.StartSpan(context.Background(), CheckMeta{View: "monitor", Service: "postgres"})
	tr.EndSpan(span, "Unhealthy", errors.New("connection refused"))

	s := recorder.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("status code = %v, want Error", s.Status().Code)
	}
	if s.Status().Description != "connection refused" {
		t.Errorf("status description = %q", s.Status().Description)
	}
	if len(s.Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestNoopTracer_NoPanic(t *testing.T) {
	tr := NewNoopTracer()
	_, span := tr.StartSpan(context.Background(), CheckMeta{View: "liveness"})
	tr.EndSpan(span, "Healthy", nil)
}
