package health

import "time"

// TimeCatcher measures the wall-clock duration of an operation.
// It is not safe for concurrent use.
type TimeCatcher struct {
	start   time.Time
	total   float64
	stopped bool
}

// StartTimeCatcher starts measuring.
func StartTimeCatcher() *TimeCatcher {
	return &TimeCatcher{start: time.Now()}
}

// Stop records the elapsed time and returns it in seconds.
// Calls after the first return the recorded value.
func (c *TimeCatcher) Stop() float64 {
	if !c.stopped {
		c.total = time.Since(c.start).Seconds()
		c.stopped = true
	}
	return c.total
}

// TotalDuration returns the recorded duration in seconds, or zero if
// Stop has not been called.
func (c *TimeCatcher) TotalDuration() float64 {
	return c.total
}

// Catch runs fn and returns its duration in seconds. The duration is
// recorded even if fn panics; the panic is not recovered.
func Catch(fn func()) (seconds float64) {
	c := StartTimeCatcher()
	defer func() { seconds = c.Stop() }()
	fn()
	return
}
