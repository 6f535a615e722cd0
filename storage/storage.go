// Package storage opens the relational database shared by request
// handlers and the database health probe.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/jonwraymond/svcscaffold/observe"
	"github.com/jonwraymond/svcscaffold/resilience"
)

// Config selects the driver and connection.
type Config struct {
	// Driver is "pgx" or "sqlite".
	Driver string

	// DSN is passed to the driver unchanged.
	DSN string

	// ConnectAttempts bounds the startup ping. Default: 1
	ConnectAttempts int

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open opens the database and pings it, retrying with backoff while the
// server is still coming up.
func Open(ctx context.Context, cfg Config, logger observe.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = observe.NewNoopLogger()
	}
	switch cfg.Driver {
	case "pgx", "sqlite":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", cfg.Driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := resilience.NewBackoff(resilience.BackoffConfig{
		MaxAttempts: attempts,
		Jitter:      true,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.Warn(ctx, "database not ready",
				observe.Field{Key: "driver", Value: cfg.Driver},
				observe.Field{Key: "attempt", Value: attempt},
				observe.Field{Key: "retry_in", Value: delay.String()},
				observe.Field{Key: "error", Value: err},
			)
		},
	})
	if err := backoff.Execute(ctx, db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", cfg.Driver, err)
	}

	logger.Info(ctx, "database connected", observe.Field{Key: "driver", Value: cfg.Driver})
	return db, nil
}
