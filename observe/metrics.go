package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metrics records health-check measurements.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one view run or service check.
	RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, healthy bool)
}

type metricsImpl struct {
	totalCount     metric.Int64Counter
	unhealthyCount metric.Int64Counter
	durationHist   metric.Float64Histogram
}

// NewMetrics creates the health-check instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"health.check.total",
		metric.WithDescription("Total number of health checks run"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	unhealthyCount, err := meter.Int64Counter(
		"health.check.unhealthy",
		metric.WithDescription("Total number of unhealthy health check results"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"health.check.duration",
		metric.WithDescription("Health check duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:     totalCount,
		unhealthyCount: unhealthyCount,
		durationHist:   durationHist,
	}, nil
}

// RecordCheck records one measurement.
func (m *metricsImpl) RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, healthy bool) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.totalCount.Add(ctx, 1, opt)
	if !healthy {
		m.unhealthyCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, duration.Seconds(), opt)
}

type noopMetrics struct{}

// NewNoopMetrics returns a Metrics that records nothing.
func NewNoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, healthy bool) {
}

