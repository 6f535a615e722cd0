package probes

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/svcscaffold/health"
	"github.com/jonwraymond/svcscaffold/resilience"
)

// checkFunc performs one probe and returns data to attach to the result.
type checkFunc func(ctx context.Context) (map[string]string, error)

// timed runs check under timeout and converts its outcome into a
// CommandResult measured over the whole attempt.
//
// check runs on the goroutine resilience.Timeout starts. A panic there is
// recovered and re-raised on the caller's goroutine so it propagates out
// of the commander like any other command panic. A panic after the deadline
// has already produced a timeout result is dropped.
func timed(ctx context.Context, timeout time.Duration, check checkFunc) health.CommandResult {
	var (
		mu       sync.Mutex
		data     map[string]string
		panicked any
		err      error
	)
	t := resilience.NewTimeout(resilience.TimeoutConfig{Timeout: timeout})
	duration := health.Catch(func() {
		err = t.Execute(ctx, func(ctx context.Context) error {
			defer func() {
				if p := recover(); p != nil {
					mu.Lock()
					panicked = p
					mu.Unlock()
				}
			}()
			d, checkErr := check(ctx)
			mu.Lock()
			data = d
			mu.Unlock()
			return checkErr
		})
	})

	// A timed-out check may still be running; shared state is read under mu.
	mu.Lock()
	d, p := data, panicked
	mu.Unlock()

	if p != nil && err == nil {
		panic(p)
	}

	var result health.CommandResult
	if err != nil {
		result = health.Unhealthy(duration, err)
	} else {
		result = health.Healthy(duration)
	}
	if d != nil {
		result = result.WithData(d)
	}
	return result
}
