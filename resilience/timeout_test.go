package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTimeout_Default(t *testing.T) {
	if got := NewTimeout(TimeoutConfig{}).config.Timeout; got != DefaultProbeTimeout {
		t.Errorf("Timeout = %v, want %v", got, DefaultProbeTimeout)
	}
}

func TestTimeout_Execute(t *testing.T) {
	opErr := errors.New("connection refused")

	tests := []struct {
		name    string
		timeout time.Duration
		op      func(ctx context.Context) error
		check   func(t *testing.T, err error)
	}{
		{
			name:    "success",
			timeout: time.Second,
			op:      func(ctx context.Context) error { return nil },
			check: func(t *testing.T, err error) {
				if err != nil {
					t.Errorf("Execute() error = %v", err)
				}
			},
		},
		{
			name:    "operation error passes through",
			timeout: time.Second,
			op:      func(ctx context.Context) error { return opErr },
			check: func(t *testing.T, err error) {
				if !errors.Is(err, opErr) {
					t.Errorf("Execute() error = %v, want %v", err, opErr)
				}
			},
		},
		{
			name:    "slow operation times out",
			timeout: 10 * time.Millisecond,
			op: func(ctx context.Context) error {
				time.Sleep(100 * time.Millisecond)
				return nil
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrTimeout) {
					t.Errorf("Execute() error = %v, want ErrTimeout", err)
				}
				var te *TimeoutError
				if !errors.As(err, &te) || te.Timeout != 10*time.Millisecond {
					t.Errorf("Execute() error = %#v, want *TimeoutError{10ms}", err)
				}
			},
		},
		{
			name:    "operation returning deadline exceeded is reported as timeout",
			timeout: 10 * time.Millisecond,
			op: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrTimeout) {
					t.Errorf("Execute() error = %v, want ErrTimeout", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTimeout(TimeoutConfig{Timeout: tt.timeout}).Execute(context.Background(), tt.op)
			tt.check(t, err)
		})
	}
}

func TestTimeout_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	err := NewTimeout(TimeoutConfig{Timeout: time.Second}).Execute(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("cancellation must not be reported as a timeout")
	}
}

func TestTimeoutError_Message(t *testing.T) {
	err := &TimeoutError{Timeout: 5 * time.Second}
	if err.Error() != "operation timed out after 5s" {
		t.Errorf("Error() = %q", err.Error())
	}
}
