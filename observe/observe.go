package observe

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/svcscaffold/observe/exporters"
)

// Config describes the service identity and its telemetry sinks.
type Config struct {
	ServiceName string
	Version     string
	Namespace   string
	InstanceID  string
	Environment string
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled   bool
	Exporter  string  // otlp|jaeger|stdout|none
	SamplePct float64 // 0.0-1.0
	Endpoint  string  // collector host:port, optional
	Insecure  bool
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Enabled  bool
	Exporter string // otlp|prometheus|stdout|none
	Endpoint string
	Insecure bool
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Enabled bool
	Level   string // DEBUG|INFO|WARNING|ERROR|CRITICAL
	Format  string // json|plain
}

var (
	tracingExporters = []string{"otlp", "jaeger", "stdout", "none", ""}
	metricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}
	logFormats       = []string{FormatJSON, FormatPlain, ""}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Validate reports every invalid setting at once. Disabled sections are
// not checked.
func (c *Config) Validate() error {
	var errs []error
	if c.ServiceName == "" {
		errs = append(errs, ErrMissingServiceName)
	}
	if t := c.Tracing; t.Enabled {
		if !oneOf(t.Exporter, tracingExporters) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidTracingExporter, t.Exporter))
		}
		if t.SamplePct < MinSamplePct || t.SamplePct > MaxSamplePct {
			errs = append(errs, fmt.Errorf("%w, got: %v", ErrInvalidSamplePct, t.SamplePct))
		}
	}
	if m := c.Metrics; m.Enabled && !oneOf(m.Exporter, metricsExporters) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, m.Exporter))
	}
	if l := c.Logging; l.Enabled {
		if _, ok := parseLogLevel(l.Level); !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level))
		}
		if !oneOf(l.Format, logFormats) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogFormat, l.Format))
		}
	}
	return errors.Join(errs...)
}

// Observer provides access to telemetry primitives.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Shutdown must honor cancellation/deadlines.
// - Errors: Shutdown is idempotent; later calls return the first result.
type Observer interface {
	Tracer() trace.Tracer
	Meter() metric.Meter
	Logger() Logger

	// Shutdown flushes and stops the SDK providers.
	Shutdown(ctx context.Context) error
}

type observer struct {
	tracer trace.Tracer
	meter  metric.Meter
	logger Logger

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewObserver builds the providers for cfg and installs them as the
// global OpenTelemetry providers. Disabled sections fall back to no-ops.
func NewObserver(ctx context.Context, cfg Config) (Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}

	obs := &observer{
		tracer: tracenoop.NewTracerProvider().Tracer(cfg.ServiceName),
		meter:  metricnoop.NewMeterProvider().Meter(cfg.ServiceName),
		logger: NewNoopLogger(),
	}

	if cfg.Tracing.Enabled {
		obs.tp, err = newTracerProvider(ctx, cfg.Tracing, res)
		if err != nil {
			return nil, fmt.Errorf("observe: tracing: %w", err)
		}
		otel.SetTracerProvider(obs.tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		obs.tracer = obs.tp.Tracer(cfg.ServiceName)
	}

	if cfg.Metrics.Enabled {
		obs.mp, err = newMeterProvider(ctx, cfg.Metrics, res)
		if err != nil {
			_ = obs.Shutdown(ctx)
			return nil, fmt.Errorf("observe: metrics: %w", err)
		}
		otel.SetMeterProvider(obs.mp)
		obs.meter = obs.mp.Meter(cfg.ServiceName)
	}

	if cfg.Logging.Enabled {
		obs.logger = NewLogger(cfg.Logging.Level, cfg.Logging.Format).
			With(Field{Key: "service", Value: cfg.ServiceName})
	}

	return obs, nil
}

func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	}
	if cfg.Namespace != "" {
		attrs = append(attrs, semconv.ServiceNamespace(cfg.Namespace))
	}
	if cfg.InstanceID != "" {
		attrs = append(attrs, semconv.ServiceInstanceID(cfg.InstanceID))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}
	return resource.New(ctx, resource.WithAttributes(attrs...))
}

func newTracerProvider(ctx context.Context, cfg TracingConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exp, err := exporters.NewTracingExporter(ctx, cfg.Exporter, exporters.Options{
		Endpoint: cfg.Endpoint,
		Insecure: cfg.Insecure,
	})
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(samplerFor(cfg.SamplePct))),
		sdktrace.WithBatcher(exp),
	), nil
}

// samplerFor maps a sampling ratio onto the cheapest equivalent sampler.
func samplerFor(pct float64) sdktrace.Sampler {
	switch {
	case pct >= MaxSamplePct:
		return sdktrace.AlwaysSample()
	case pct <= MinSamplePct:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(pct)
	}
}

func newMeterProvider(ctx context.Context, cfg MetricsConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	reader, err := exporters.NewMetricsReader(ctx, cfg.Exporter, exporters.Options{
		Endpoint: cfg.Endpoint,
		Insecure: cfg.Insecure,
	})
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	), nil
}

func (o *observer) Tracer() trace.Tracer { return o.tracer }
func (o *observer) Meter() metric.Meter  { return o.meter }
func (o *observer) Logger() Logger       { return o.logger }

func (o *observer) Shutdown(ctx context.Context) error {
	o.shutdownOnce.Do(func() {
		var errs []error
		if o.tp != nil {
			if err := o.tp.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
			}
		}
		if o.mp != nil {
			if err := o.mp.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
			}
		}
		o.shutdownErr = errors.Join(errs...)
	})
	return o.shutdownErr
}

// Instruments bundles the health-specific wrappers the commander records
// through.
type Instruments struct {
	Tracer  Tracer
	Metrics Metrics
	Logger  Logger
}

// InstrumentsFromObserver builds Instruments over obs.
func InstrumentsFromObserver(obs Observer) (*Instruments, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return &Instruments{
		Tracer:  NewTracer(obs.Tracer()),
		Metrics: metrics,
		Logger:  obs.Logger(),
	}, nil
}
