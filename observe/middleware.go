package observe

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HTTPMiddleware wraps an HTTP handler with a server span and an access
// log entry per request.
//
// Contract:
//   - Concurrency: the returned handler is safe for concurrent use.
//   - Context: the span context is propagated to the wrapped handler.
//   - Ownership: requests and responses pass through unmodified.
type HTTPMiddleware struct {
	tracer     trace.Tracer
	logger     Logger
	propagator propagation.TextMapPropagator
}

// NewHTTPMiddleware creates an HTTPMiddleware. A nil logger disables
// access logging.
func NewHTTPMiddleware(tracer trace.Tracer, logger Logger) *HTTPMiddleware {
	if logger == nil {
		logger = NewNoopLogger()
	}
	return &HTTPMiddleware{
		tracer:     tracer,
		logger:     logger,
		propagator: otel.GetTextMapPropagator(),
	}
}

// Wrap returns next wrapped with tracing and access logging.
func (m *HTTPMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := m.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := m.tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
			),
		)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := time.Since(start)
		span.SetAttributes(attribute.Int("http.response.status_code", rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}

		fields := []Field{
			{Key: "method", Value: r.Method},
			{Key: "path", Value: r.URL.Path},
			{Key: "status", Value: rec.status},
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}
		if rec.status >= http.StatusInternalServerError {
			m.logger.Error(ctx, "request failed", fields...)
		} else {
			m.logger.Info(ctx, "request completed", fields...)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
