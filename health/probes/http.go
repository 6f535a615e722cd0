package probes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jonwraymond/svcscaffold/health"
)

// StatusError reports a downstream answer outside 2xx.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// HTTPCommandConfig configures HTTPCommand.
type HTTPCommandConfig struct {
	URL string

	// Client sends the request. Default: a client without its own timeout
	Client *http.Client

	// Timeout bounds one probe.
	// Default: resilience.DefaultProbeTimeout
	Timeout time.Duration
}

// HTTPCommand checks a downstream service by GETting a URL.
type HTTPCommand struct {
	config HTTPCommandConfig
}

// NewHTTPCommand creates an HTTP probe.
func NewHTTPCommand(config HTTPCommandConfig) *HTTPCommand {
	if config.Client == nil {
		config.Client = &http.Client{}
	}
	return &HTTPCommand{config: config}
}

// Execute issues the request; a 2xx answer is healthy.
func (c *HTTPCommand) Execute(ctx context.Context) health.CommandResult {
	return timed(ctx, c.config.Timeout, func(ctx context.Context) (map[string]string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.URL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.config.Client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		data := map[string]string{"status_code": strconv.Itoa(resp.StatusCode)}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return data, &StatusError{URL: c.config.URL, StatusCode: resp.StatusCode}
		}
		return data, nil
	})
}

var _ health.Command = (*HTTPCommand)(nil)
