package resilience

import (
	"context"
	"errors"
	"time"
)

// DefaultProbeTimeout bounds a single probe when no timeout is configured.
const DefaultProbeTimeout = 5 * time.Second

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for the operation.
	// Default: DefaultProbeTimeout
	Timeout time.Duration
}

// Timeout wraps operations with a deadline.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = DefaultProbeTimeout
	}
	return &Timeout{config: config}
}

// Execute runs op with a derived context that expires after the
// configured timeout. When the deadline passes first Execute returns a
// *TimeoutError without waiting for op to observe cancellation.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			return &TimeoutError{Timeout: t.config.Timeout}
		}
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{Timeout: t.config.Timeout}
		}
		return ctx.Err()
	}
}
