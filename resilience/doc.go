// Package resilience bounds how long and how often an operation against
// a dependency is attempted.
//
// Probes wrap their check in a Timeout so a hung dependency turns into an
// unhealthy result instead of a hung view:
//
//	t := resilience.NewTimeout(resilience.TimeoutConfig{Timeout: 5 * time.Second})
//	err := t.Execute(ctx, func(ctx context.Context) error {
//	    return db.PingContext(ctx)
//	})
//	if errors.Is(err, resilience.ErrTimeout) {
//	    // the dependency did not answer in time
//	}
//
// Startup code uses Backoff to wait for a dependency that is still
// coming up. Health views never retry.
package resilience
