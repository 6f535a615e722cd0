package probes

import (
	"context"
	"database/sql"
	"time"

	"github.com/jonwraymond/svcscaffold/health"
)

// Querier is the part of *sql.DB the database probe needs.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DBCommandConfig configures DBCommand.
type DBCommandConfig struct {
	// Query is executed to prove the database answers.
	// Default: "SELECT 1"
	Query string

	// Timeout bounds one probe.
	// Default: resilience.DefaultProbeTimeout
	Timeout time.Duration
}

// DBCommand checks a database by issuing a trivial query.
type DBCommand struct {
	db     Querier
	config DBCommandConfig
}

// NewDBCommand creates a database probe over db.
func NewDBCommand(db Querier, config DBCommandConfig) *DBCommand {
	if config.Query == "" {
		config.Query = "SELECT 1"
	}
	return &DBCommand{db: db, config: config}
}

// Execute runs the query. Any driver error makes the result unhealthy.
func (c *DBCommand) Execute(ctx context.Context) health.CommandResult {
	return timed(ctx, c.config.Timeout, func(ctx context.Context) (map[string]string, error) {
		_, err := c.db.ExecContext(ctx, c.config.Query)
		return nil, err
	})
}

var _ health.Command = (*DBCommand)(nil)
