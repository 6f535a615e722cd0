package resilience

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// BackoffConfig configures Backoff.
type BackoffConfig struct {
	// MaxAttempts is the number of attempts including the first.
	// Default: 5
	MaxAttempts int

	// InitialDelay is the wait after the first failure.
	// Default: 200ms
	InitialDelay time.Duration

	// MaxDelay caps the wait between attempts.
	// Default: 5s
	MaxDelay time.Duration

	// Jitter adds up to 25% random delay to each wait.
	Jitter bool

	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Backoff retries an operation with doubling delays.
type Backoff struct {
	config BackoffConfig
}

// NewBackoff creates a Backoff.
func NewBackoff(config BackoffConfig) *Backoff {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 200 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	return &Backoff{config: config}
}

// Execute calls op until it succeeds, the attempts run out or ctx ends.
// Exhaustion returns ErrAttemptsExhausted wrapping the last error.
func (b *Backoff) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= b.config.MaxAttempts; attempt++ {
		if lastErr = op(ctx); lastErr == nil {
			return nil
		}
		if attempt == b.config.MaxAttempts {
			break
		}

		delay := b.delay(attempt)
		if b.config.OnRetry != nil {
			b.config.OnRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, b.config.MaxAttempts, lastErr)
}

func (b *Backoff) delay(attempt int) time.Duration {
	delay := b.config.InitialDelay << (attempt - 1)
	if delay <= 0 || delay > b.config.MaxDelay {
		delay = b.config.MaxDelay
	}
	if b.config.Jitter && delay >= 4 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}
	return delay
}
