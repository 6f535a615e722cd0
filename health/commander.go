package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/svcscaffold/observe"
)

// View names one of the three health views.
type View string

const (
	ViewLiveness  View = "liveness"
	ViewReadiness View = "readiness"
	ViewMonitor   View = "monitor"
)

// ParseView parses a view name.
func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewLiveness, ViewReadiness, ViewMonitor:
		return View(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
	}
}

// Config holds the capacity thresholds, in percent.
type Config struct {
	// MinPercentageForWorkingCapacity is required by liveness and readiness.
	// Default: 80
	MinPercentageForWorkingCapacity float64

	// MaxPercentageForWorkingCapacity is required by monitor.
	// Default: 100
	MaxPercentageForWorkingCapacity float64
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		MinPercentageForWorkingCapacity: 80.0,
		MaxPercentageForWorkingCapacity: 100.0,
	}
}

// Validate checks that both thresholds are within [0, 100].
func (c Config) Validate() error {
	if c.MinPercentageForWorkingCapacity < 0 || c.MinPercentageForWorkingCapacity > 100 {
		return fmt.Errorf("%w: minimum %v", ErrInvalidPercentage, c.MinPercentageForWorkingCapacity)
	}
	if c.MaxPercentageForWorkingCapacity < 0 || c.MaxPercentageForWorkingCapacity > 100 {
		return fmt.Errorf("%w: maximum %v", ErrInvalidPercentage, c.MaxPercentageForWorkingCapacity)
	}
	return nil
}

// Entry is one service's result inside a WorkingCapacityResult.
type Entry struct {
	Name   string
	Result CommandResult
}

// Entries is an ordered set of results. It renders as a JSON object
// whose keys appear in registration order.
type Entries []Entry

// Get returns the result for name.
func (e Entries) Get(name string) (CommandResult, bool) {
	for _, entry := range e {
		if entry.Name == name {
			return entry.Result, true
		}
	}
	return CommandResult{}, false
}

// MarshalJSON renders the entries as an ordered JSON object.
func (e Entries) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, entry := range e {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(entry.Result)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// WorkingCapacityResult is the verdict of one view run.
type WorkingCapacityResult struct {
	Status        Status  `json:"status"`
	TotalDuration float64 `json:"totalDuration"`
	Entries       Entries `json:"entries"`
}

// CommanderOption configures a Commander.
type CommanderOption func(*Commander)

// WithParallel runs the commands of a view concurrently. Entries keep
// registration order and TotalDuration stays the batch wall time.
func WithParallel(parallel bool) CommanderOption {
	return func(c *Commander) { c.parallel = parallel }
}

// WithTracer wraps each view run and each command in a span.
func WithTracer(tracer observe.Tracer) CommanderOption {
	return func(c *Commander) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithMetrics records a measurement per command and per view.
func WithMetrics(metrics observe.Metrics) CommanderOption {
	return func(c *Commander) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// WithLogger logs unhealthy commands and verdicts.
func WithLogger(logger observe.Logger) CommanderOption {
	return func(c *Commander) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInstruments applies tracer, metrics and logger from inst.
func WithInstruments(inst *observe.Instruments) CommanderOption {
	return func(c *Commander) {
		if inst == nil {
			return
		}
		WithTracer(inst.Tracer)(c)
		WithMetrics(inst.Metrics)(c)
		WithLogger(inst.Logger)(c)
	}
}

// Commander runs the liveness, readiness and monitor views.
//
// Handlers and Config are read-only once the Commander is built, so
// concurrent runs need no locking.
type Commander struct {
	liveness  *CommandHandler
	readiness *CommandHandler
	monitor   *CommandHandler
	config    Config
	parallel  bool
	tracer    observe.Tracer
	metrics   observe.Metrics
	logger    observe.Logger
}

// NewCommander creates a Commander over three handlers. Nil handlers are
// treated as empty.
func NewCommander(liveness, readiness, monitor *CommandHandler, config Config, opts ...CommanderOption) *Commander {
	c := &Commander{
		liveness:  orEmpty(liveness),
		readiness: orEmpty(readiness),
		monitor:   orEmpty(monitor),
		config:    config,
		tracer:    observe.NewNoopTracer(),
		metrics:   observe.NewNoopMetrics(),
		logger:    observe.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func orEmpty(h *CommandHandler) *CommandHandler {
	if h == nil {
		return NewCommandHandler()
	}
	return h
}

// Config returns the thresholds in use.
func (c *Commander) Config() Config {
	return c.config
}

// RunLiveness runs the liveness view.
func (c *Commander) RunLiveness(ctx context.Context) WorkingCapacityResult {
	return c.run(ctx, ViewLiveness, c.liveness, c.config.MinPercentageForWorkingCapacity)
}

// RunReadiness runs the readiness view.
func (c *Commander) RunReadiness(ctx context.Context) WorkingCapacityResult {
	return c.run(ctx, ViewReadiness, c.readiness, c.config.MinPercentageForWorkingCapacity)
}

// RunMonitor runs the monitor view.
func (c *Commander) RunMonitor(ctx context.Context) WorkingCapacityResult {
	return c.run(ctx, ViewMonitor, c.monitor, c.config.MaxPercentageForWorkingCapacity)
}

// Run runs the named view.
func (c *Commander) Run(ctx context.Context, view View) (WorkingCapacityResult, error) {
	switch view {
	case ViewLiveness:
		return c.RunLiveness(ctx), nil
	case ViewReadiness:
		return c.RunReadiness(ctx), nil
	case ViewMonitor:
		return c.RunMonitor(ctx), nil
	default:
		return WorkingCapacityResult{}, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
}

func (c *Commander) run(ctx context.Context, view View, handler *CommandHandler, needPercentage float64) WorkingCapacityResult {
	meta := observe.CheckMeta{View: string(view)}
	ctx, span := c.tracer.StartSpan(ctx, meta)

	result := c.formWorkingCapacity(ctx, view, handler, needPercentage)

	c.tracer.EndSpan(span, result.Status.String(), nil)
	c.metrics.RecordCheck(ctx, meta, seconds(result.TotalDuration), result.Status == StatusHealthy)
	if result.Status == StatusUnhealthy {
		c.logger.Warn(ctx, "health view unhealthy",
			observe.Field{Key: "view", Value: string(view)},
			observe.Field{Key: "required_percentage", Value: needPercentage},
			observe.Field{Key: "total_duration", Value: result.TotalDuration},
		)
	}
	return result
}

func (c *Commander) formWorkingCapacity(ctx context.Context, view View, handler *CommandHandler, needPercentage float64) WorkingCapacityResult {
	regs := handler.Commands()
	entries := make(Entries, len(regs))

	catcher := StartTimeCatcher()
	if c.parallel && len(regs) > 1 {
		c.executeParallel(ctx, view, regs, entries)
	} else {
		for i, reg := range regs {
			entries[i] = Entry{Name: reg.Name, Result: c.execute(ctx, view, reg)}
		}
	}
	totalDuration := catcher.Stop()

	healthy := 0
	for _, entry := range entries {
		if entry.Result.Status == StatusHealthy {
			healthy++
		}
	}

	status := StatusUnhealthy
	if isServicesHealthy(healthy, len(regs), needPercentage) {
		status = StatusHealthy
	}

	return WorkingCapacityResult{
		Status:        status,
		TotalDuration: totalDuration,
		Entries:       entries,
	}
}

// executeParallel fills entries by index so completion order never
// affects output order. A panicking command is re-raised in the caller.
func (c *Commander) executeParallel(ctx context.Context, view View, regs []Registration, entries Entries) {
	var g errgroup.Group
	for i, reg := range regs {
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = &commandPanic{service: reg.Name, value: p}
				}
			}()
			entries[i] = Entry{Name: reg.Name, Result: c.execute(ctx, view, reg)}
			return nil
		})
	}

	var cp *commandPanic
	if err := g.Wait(); errors.As(err, &cp) {
		panic(cp.value)
	}
}

// commandPanic carries a panic out of an errgroup worker.
type commandPanic struct {
	service string
	value   any
}

func (p *commandPanic) Error() string {
	return fmt.Sprintf("health: command %q panicked: %v", p.service, p.value)
}

func (c *Commander) execute(ctx context.Context, view View, reg Registration) CommandResult {
	meta := observe.CheckMeta{View: string(view), Service: reg.Name}
	ctx, span := c.tracer.StartSpan(ctx, meta)

	result := reg.Command.Execute(ctx)

	var err error
	if result.Status == StatusUnhealthy {
		err = fmt.Errorf("%s: %s", result.Exception, result.Description)
		c.logger.Warn(ctx, "health check failed",
			observe.Field{Key: "view", Value: string(view)},
			observe.Field{Key: "service", Value: reg.Name},
			observe.Field{Key: "exception", Value: result.Exception},
			observe.Field{Key: "description", Value: result.Description},
		)
	}
	c.tracer.EndSpan(span, result.Status.String(), err)
	c.metrics.RecordCheck(ctx, meta, seconds(result.Duration), result.Status == StatusHealthy)
	return result
}

// isServicesHealthy reports whether healthy out of total meets
// needPercentage. An empty view passes only when needPercentage <= 0.
func isServicesHealthy(healthy, total int, needPercentage float64) bool {
	if total == 0 {
		return float64(total) >= needPercentage
	}
	return float64(healthy)/float64(total)*100 >= needPercentage
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
