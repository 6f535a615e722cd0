package resilience

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout is matched by every TimeoutError.
	ErrTimeout = errors.New("resilience: operation timed out")

	// ErrAttemptsExhausted is returned when Backoff gives up.
	ErrAttemptsExhausted = errors.New("resilience: attempts exhausted")
)

// TimeoutError reports an operation that exceeded its deadline.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation timed out after %s", e.Timeout)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
