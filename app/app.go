package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"github.com/jonwraymond/svcscaffold/auth"
	"github.com/jonwraymond/svcscaffold/config"
	"github.com/jonwraymond/svcscaffold/consumer"
	"github.com/jonwraymond/svcscaffold/health"
	"github.com/jonwraymond/svcscaffold/health/probes"
	"github.com/jonwraymond/svcscaffold/observe"
	"github.com/jonwraymond/svcscaffold/report"
	"github.com/jonwraymond/svcscaffold/storage"
	"github.com/jonwraymond/svcscaffold/web"
)

// Service names used as health entry keys.
const (
	ServiceMemory   = "memory"
	ServicePostgres = "postgres"
	ServiceKafka    = "kafka"
)

// App holds every long-lived component of the service.
type App struct {
	Config    config.Config
	Observer  observe.Observer
	Logger    observe.Logger
	DB        *sql.DB
	Commander *health.Commander
	Handler   http.Handler

	// Reporter is nil unless SENTRY_DSN is set.
	Reporter *report.Sentry

	kafkaDialer *kafka.Dialer
	closers     []func(context.Context) error
}

// ErrKafkaDisabled is returned by Consume when KAFKA_ENABLED is false.
var ErrKafkaDisabled = errors.New("app: kafka is not enabled")

// New builds the App. On failure everything acquired so far is released.
func New(ctx context.Context, cfg config.Config) (a *App, err error) {
	a = &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
			a = nil
		}
	}()

	obs, err := observe.NewObserver(ctx, cfg.Observe())
	if err != nil {
		return a, fmt.Errorf("app: observer: %w", err)
	}
	a.Observer = obs
	a.Logger = obs.Logger().With(
		observe.Field{Key: "environment", Value: cfg.Environment},
		observe.Field{Key: "instance_id", Value: cfg.Tracing.InstanceID},
	)
	a.closers = append(a.closers, obs.Shutdown)

	inst, err := observe.InstrumentsFromObserver(obs)
	if err != nil {
		return a, fmt.Errorf("app: instruments: %w", err)
	}
	inst.Logger = a.Logger

	if cfg.Sentry.DSN != "" {
		rep, err := report.NewSentry(cfg.Reporter())
		if err != nil {
			return a, fmt.Errorf("app: sentry: %w", err)
		}
		a.Reporter = rep
		a.closers = append(a.closers, rep.Flush)
		a.Logger.Info(ctx, "configured sentry", observe.Field{Key: "stage", Value: cfg.Sentry.Stage})
	}

	if cfg.Kafka.Enabled {
		d, err := cfg.KafkaDialer()
		if err != nil {
			return a, fmt.Errorf("app: kafka: %w", err)
		}
		a.kafkaDialer = d
	}

	if cfg.Postgres.Enabled {
		db, err := storage.Open(ctx, storage.Config{
			Driver:          cfg.Postgres.Driver,
			DSN:             cfg.Postgres.URI,
			ConnectAttempts: cfg.Postgres.ConnectAttempts,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		}, a.Logger)
		if err != nil {
			return a, fmt.Errorf("app: storage: %w", err)
		}
		a.DB = db
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
	}

	liveness, readiness, monitor := a.probes()
	a.Commander = health.NewCommander(liveness, readiness, monitor, cfg.Health(),
		health.WithParallel(cfg.Healthcheck.Parallel),
		health.WithInstruments(inst),
	)

	var authn auth.Authenticator
	if cfg.Keycloak.PublicKey != "" {
		jwtAuth, err := auth.NewJWTAuthenticator(cfg.KeycloakAuth())
		if err != nil {
			return a, fmt.Errorf("app: keycloak: %w", err)
		}
		authn = jwtAuth
	}

	routerCfg := web.RouterConfig{
		Commander:     a.Commander,
		Authenticator: authn,
		Tracer:        obs.Tracer(),
		Logger:        a.Logger,
		CORS: web.CORSConfig{
			Origins: cfg.CORS.Origins,
			Methods: cfg.CORS.Methods,
			Headers: cfg.CORS.Headers,
		},
	}
	if a.Reporter != nil {
		routerCfg.Reporter = a.Reporter
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Exporter == "prometheus" {
		routerCfg.MetricsPath = cfg.Metrics.Path
		routerCfg.MetricsHandler = promhttp.Handler()
	}
	a.Handler = web.NewRouter(routerCfg)

	a.Logger.Info(ctx, "application initialised",
		observe.Field{Key: "liveness_probes", Value: liveness.Names()},
		observe.Field{Key: "readiness_probes", Value: readiness.Names()},
		observe.Field{Key: "monitor_probes", Value: monitor.Names()},
		observe.Field{Key: "parallel", Value: cfg.Healthcheck.Parallel},
	)
	return a, nil
}

// probes builds the three registries from the enabled sections.
func (a *App) probes() (liveness, readiness, monitor *health.CommandHandler) {
	hc := a.Config.Healthcheck
	liveness = health.NewCommandHandler()
	readiness = health.NewCommandHandler()
	monitor = health.NewCommandHandler()

	memory := probes.NewMemoryCommand(probes.MemoryCommandConfig{LimitBytes: hc.MemoryLimitBytes})
	liveness.Register(ServiceMemory, memory)
	readiness.Register(ServiceMemory, memory)
	monitor.Register(ServiceMemory, memory)

	if a.DB != nil {
		db := probes.NewDBCommand(a.DB, probes.DBCommandConfig{Timeout: hc.ProbeTimeout})
		readiness.Register(ServicePostgres, db)
		monitor.Register(ServicePostgres, db)
	}

	if a.Config.Kafka.Enabled {
		kafkaCmd := probes.NewKafkaCommand(probes.KafkaCommandConfig{
			BootstrapServers: a.Config.Kafka.BootstrapServers,
			Topic:            a.Config.Kafka.TopicTest,
			Timeout:          hc.ProbeTimeout,
			Dialer:           a.kafkaDialer,
		})
		readiness.Register(ServiceKafka, kafkaCmd)
		monitor.Register(ServiceKafka, kafkaCmd)
	}

	names := make([]string, 0, len(hc.HTTPTargets))
	for name := range hc.HTTPTargets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		monitor.Register(name, probes.NewHTTPCommand(probes.HTTPCommandConfig{
			URL:     hc.HTTPTargets[name],
			Timeout: hc.ProbeTimeout,
		}))
	}
	return liveness, readiness, monitor
}

// Run serves HTTP until ctx ends, then closes the App. The App is
// closed even when the listener cannot be opened.
func (a *App) Run(ctx context.Context) error {
	srv := web.NewServer(a.Config.Server.Addr, a.Handler, a.Config.Server.ShutdownTimeout, a.Logger)
	srv.OnShutdown(a.Close)
	if err := srv.Run(ctx); err != nil {
		return errors.Join(err, a.Close(context.WithoutCancel(ctx)))
	}
	return nil
}

// Consume reads KAFKA_TOPIC_TEST as group consumer_<KAFKA_GROUP_ID>,
// logging each message, until ctx ends. The App is closed on return.
func (a *App) Consume(ctx context.Context) error {
	if !a.Config.Kafka.Enabled {
		return errors.Join(ErrKafkaDisabled, a.Close(context.WithoutCancel(ctx)))
	}
	ccfg := a.Config.Consumer(a.kafkaDialer)
	c, err := consumer.New(ccfg, consumer.LogTesting(a.Logger),
		consumer.WithLogger(a.Logger),
		consumer.WithTracer(a.Observer.Tracer()),
	)
	if err != nil {
		return errors.Join(fmt.Errorf("app: consumer: %w", err), a.Close(context.WithoutCancel(ctx)))
	}
	a.closers = append(a.closers, func(context.Context) error { return c.Close() })

	a.Logger.Info(ctx, "consumer started",
		observe.Field{Key: "topic", Value: ccfg.Topic},
		observe.Field{Key: "group_id", Value: ccfg.GroupID},
	)
	err = c.Run(ctx)
	a.Logger.Info(ctx, "consumer stopped")
	return errors.Join(err, a.Close(context.WithoutCancel(ctx)))
}

// Close releases resources in reverse acquisition order. It is safe to
// call more than once.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
