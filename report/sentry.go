package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/jonwraymond/svcscaffold/observe"
)

// DefaultFlushTimeout bounds Flush when the context has no deadline.
const DefaultFlushTimeout = 2 * time.Second

// ErrNoDSN is returned by NewSentry when the DSN is empty.
var ErrNoDSN = errors.New("report: sentry DSN is empty")

// ErrFlushTimeout is returned when queued events were not delivered in time.
var ErrFlushTimeout = errors.New("report: sentry flush timed out")

// SentryConfig configures the Sentry client.
type SentryConfig struct {
	DSN string

	// Environment is the deployment stage reported with every event.
	Environment string

	Release string

	// BeforeSend may rewrite or drop (return nil) an event.
	BeforeSend func(*sentry.Event, *sentry.EventHint) *sentry.Event
}

// Sentry captures panics as Sentry events with stack traces attached.
type Sentry struct {
	hub *sentry.Hub
}

// NewSentry creates a reporter with its own hub. The global Sentry hub
// is left untouched.
func NewSentry(cfg SentryConfig) (*Sentry, error) {
	if cfg.DSN == "" {
		return nil, ErrNoDSN
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		AttachStacktrace: true,
		BeforeSend:       cfg.BeforeSend,
	})
	if err != nil {
		return nil, fmt.Errorf("report: sentry client: %w", err)
	}
	return &Sentry{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// CapturePanic reports a recovered panic value for request r.
func (s *Sentry) CapturePanic(ctx context.Context, r *http.Request, value any) {
	hub := s.hub.Clone()
	scope := hub.Scope()
	if r != nil {
		scope.SetRequest(r)
	}
	if id := observe.CorrelationID(ctx); id != "" {
		scope.SetTag("x_correlation_id", id)
	}
	hub.RecoverWithContext(ctx, value)
}

// Flush waits for queued events until ctx ends or DefaultFlushTimeout
// passes.
func (s *Sentry) Flush(ctx context.Context) error {
	timeout := DefaultFlushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !s.hub.Flush(timeout) {
		return ErrFlushTimeout
	}
	return nil
}
