package observe

import "errors"

// Config errors, reported by Config.Validate.
var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample percentage must be between 0.0 and 1.0")
	ErrInvalidTracingExporter = errors.New("observe: unknown tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: unknown metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: unknown log level")
	ErrInvalidLogFormat       = errors.New("observe: unknown log format")
)

// ErrNilObserver is returned by InstrumentsFromObserver for a nil Observer.
var ErrNilObserver = errors.New("observe: observer is nil")

// Bounds of TracingConfig.SamplePct.
const (
	MinSamplePct = 0.0
	MaxSamplePct = 1.0
)
