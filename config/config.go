package config

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/jonwraymond/svcscaffold/auth"
	"github.com/jonwraymond/svcscaffold/consumer"
	"github.com/jonwraymond/svcscaffold/health"
	"github.com/jonwraymond/svcscaffold/observe"
	"github.com/jonwraymond/svcscaffold/report"
	"github.com/jonwraymond/svcscaffold/secret"
)

// Config is the complete service configuration.
type Config struct {
	ProjectName string `envconfig:"PROJECT_NAME" required:"true"`
	Environment string `envconfig:"ENVIRONMENT" default:"dev"`
	Debug       bool   `envconfig:"DEBUG"`
	SecretsDir  string `envconfig:"SECRETS_DIR" default:"/run/secrets"`

	Server      ServerConfig      `ignored:"true"`
	Log         LogConfig         `ignored:"true"`
	CORS        CORSConfig        `ignored:"true"`
	Tracing     TracingConfig     `ignored:"true"`
	Metrics     MetricsConfig     `ignored:"true"`
	Healthcheck HealthcheckConfig `ignored:"true"`
	Postgres    PostgresConfig    `ignored:"true"`
	Kafka       KafkaConfig       `ignored:"true"`
	Keycloak    KeycloakConfig    `ignored:"true"`
	Sentry      SentryConfig      `ignored:"true"`
}

// ServerConfig is read from SERVER_*.
type ServerConfig struct {
	Addr            string        `default:":8000"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// LogConfig is read from LOG_*.
type LogConfig struct {
	Level  string `default:"INFO"`
	Format string `default:"plain"`
}

// CORSConfig is read from CORS_*.
type CORSConfig struct {
	Origins []string `default:"*"`
	Methods []string `default:"*"`
	Headers []string `default:"*"`
}

// TracingConfig is read from TRACING_*.
type TracingConfig struct {
	Enabled    bool
	Exporter   string  `default:"otlp"`
	Endpoint   string
	Insecure   bool    `default:"true"`
	SamplePct  float64 `split_words:"true" default:"1.0"`
	Namespace  string
	InstanceID string  `split_words:"true"`
	Version    Version `default:"1.0.0"`
}

// MetricsConfig is read from METRICS_*.
type MetricsConfig struct {
	Enabled  bool
	Exporter string `default:"prometheus"`
	Endpoint string
	Path     string `default:"/metrics"`
}

// HealthcheckConfig is read from HEALTHCHECK_*.
type HealthcheckConfig struct {
	PercentageMinimumForWorkingCapacity float64       `split_words:"true" default:"80"`
	PercentageMaximumForWorkingCapacity float64       `split_words:"true" default:"100"`
	ProbeTimeout                        time.Duration `split_words:"true" default:"5s"`
	Parallel                            bool

	// HTTPTargets maps a service name to a URL, written as
	// name:url,name:url.
	HTTPTargets map[string]string `split_words:"true"`

	MemoryLimitBytes uint64 `split_words:"true"`
}

// PostgresConfig is read from POSTGRES_*.
type PostgresConfig struct {
	Enabled  bool
	Driver   string `default:"pgx"`
	Host     string `default:"localhost"`
	Port     int    `default:"5432"`
	User     string `default:"postgres"`
	Password string
	DB       string `default:"postgres"`
	SSLMode  string `split_words:"true" default:"disable"`

	// URI overrides the assembled connection string.
	URI string

	ConnectAttempts int `split_words:"true" default:"5"`

	MaxOpenConns    int           `split_words:"true" default:"10"`
	MaxIdleConns    int           `split_words:"true" default:"5"`
	ConnMaxLifetime time.Duration `split_words:"true" default:"30m"`
}

// KafkaConfig is read from KAFKA_*.
type KafkaConfig struct {
	Enabled          bool
	BootstrapServers []string `split_words:"true" default:"localhost:9092"`
	GroupID          string   `split_words:"true" default:"1"`
	TopicTest        string   `split_words:"true" default:"test_topic"`
	AutoOffsetReset  string   `split_words:"true" default:"earliest"`

	// Local disables SASL. Managed clusters set it to false and supply
	// USER, PASSWORD and SASL_MECHANISMS.
	Local          bool   `default:"true"`
	SASLMechanisms string `split_words:"true" default:"SCRAM-SHA-512"`
	User           string
	Password       string
}

// SentryConfig is read from SENTRY_*. An empty DSN disables reporting.
type SentryConfig struct {
	DSN   string
	Stage string `default:"local"`
}

// KeycloakConfig is read from KEYCLOAK_*.
type KeycloakConfig struct {
	PublicKey  string   `split_words:"true"`
	ClientID   string   `split_words:"true"`
	Algorithms []string `default:"RS256"`
}

type section struct {
	prefix string
	target any
}

// Load reads every section from the environment, resolves secret
// references and validates the result.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	sections := []section{
		{"", &cfg},
		{"SERVER", &cfg.Server},
		{"LOG", &cfg.Log},
		{"CORS", &cfg.CORS},
		{"TRACING", &cfg.Tracing},
		{"METRICS", &cfg.Metrics},
		{"HEALTHCHECK", &cfg.Healthcheck},
		{"POSTGRES", &cfg.Postgres},
		{"KAFKA", &cfg.Kafka},
		{"KEYCLOAK", &cfg.Keycloak},
		{"SENTRY", &cfg.Sentry},
	}
	for _, s := range sections {
		if err := envconfig.Process(s.prefix, s.target); err != nil {
			return Config{}, errors.Wrapf(err, "config: load %s section", sectionName(s.prefix))
		}
	}

	if err := cfg.resolveSecrets(ctx); err != nil {
		return Config{}, err
	}

	if cfg.Tracing.InstanceID == "" {
		cfg.Tracing.InstanceID = uuid.NewString()
	}
	if cfg.Postgres.URI == "" {
		cfg.Postgres.URI = cfg.Postgres.assembleURI()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func sectionName(prefix string) string {
	if prefix == "" {
		return "root"
	}
	return prefix
}

func (c *Config) resolveSecrets(ctx context.Context) error {
	r := secret.NewResolver(true, secret.NewEnvProvider(), secret.NewFileProvider(c.SecretsDir))

	fields := []struct {
		name  string
		value *string
	}{
		{"POSTGRES_PASSWORD", &c.Postgres.Password},
		{"POSTGRES_URI", &c.Postgres.URI},
		{"KEYCLOAK_PUBLIC_KEY", &c.Keycloak.PublicKey},
		{"KAFKA_PASSWORD", &c.Kafka.Password},
		{"SENTRY_DSN", &c.Sentry.DSN},
	}
	for _, f := range fields {
		if *f.value == "" {
			continue
		}
		resolved, err := r.ResolveValue(ctx, *f.value)
		if err != nil {
			return errors.Wrapf(err, "config: resolve %s", f.name)
		}
		*f.value = resolved
	}

	targets, err := r.ResolveMap(ctx, c.Healthcheck.HTTPTargets)
	if err != nil {
		return errors.Wrap(err, "config: resolve HEALTHCHECK_HTTP_TARGETS")
	}
	c.Healthcheck.HTTPTargets = targets
	return nil
}

func (p PostgresConfig) assembleURI() string {
	if p.Driver == "sqlite" {
		return p.DB
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + p.DB,
	}
	if p.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {p.SSLMode}}.Encode()
	}
	return u.String()
}

// Validate checks cross-field constraints envconfig cannot express.
func (c Config) Validate() error {
	if err := c.Health().Validate(); err != nil {
		return errors.Wrap(err, "config: HEALTHCHECK")
	}
	obs := c.Observe()
	if err := obs.Validate(); err != nil {
		return errors.Wrap(err, "config: TRACING/METRICS/LOG")
	}
	if c.Healthcheck.ProbeTimeout <= 0 {
		return errors.Errorf("config: HEALTHCHECK_PROBE_TIMEOUT must be positive, got %s", c.Healthcheck.ProbeTimeout)
	}
	for name, target := range c.Healthcheck.HTTPTargets {
		if u, err := url.Parse(target); err != nil || u.Scheme == "" || u.Host == "" {
			return errors.Errorf("config: HEALTHCHECK_HTTP_TARGETS %s: invalid URL %q", name, target)
		}
	}
	switch c.Postgres.Driver {
	case "pgx", "sqlite":
	default:
		return errors.Errorf("config: POSTGRES_DRIVER %q is not pgx or sqlite", c.Postgres.Driver)
	}
	if c.Kafka.Enabled && len(c.Kafka.BootstrapServers) == 0 {
		return errors.New("config: KAFKA_BOOTSTRAP_SERVERS is required when KAFKA_ENABLED")
	}
	switch c.Kafka.AutoOffsetReset {
	case consumer.OffsetEarliest, consumer.OffsetLatest:
	default:
		return errors.Errorf("config: KAFKA_AUTO_OFFSET_RESET %q is not earliest or latest", c.Kafka.AutoOffsetReset)
	}
	if !c.Kafka.Local {
		if c.Kafka.User == "" {
			return errors.New("config: KAFKA_USER is required when KAFKA_LOCAL is false")
		}
		if _, err := consumer.NewDialer("", c.kafkaCredentials()); err != nil {
			return errors.Wrap(err, "config: KAFKA_SASL_MECHANISMS")
		}
	}
	if c.Sentry.DSN != "" {
		if u, err := url.Parse(c.Sentry.DSN); err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("config: SENTRY_DSN is not a valid URL")
		}
	}
	return nil
}

// Health returns the commander thresholds.
func (c Config) Health() health.Config {
	return health.Config{
		MinPercentageForWorkingCapacity: c.Healthcheck.PercentageMinimumForWorkingCapacity,
		MaxPercentageForWorkingCapacity: c.Healthcheck.PercentageMaximumForWorkingCapacity,
	}
}

// Observe returns the telemetry settings. DEBUG forces debug logging.
func (c Config) Observe() observe.Config {
	level := c.Log.Level
	if c.Debug {
		level = "DEBUG"
	}
	return observe.Config{
		ServiceName: c.ProjectName,
		Version:     c.Tracing.Version.String(),
		Namespace:   c.Tracing.Namespace,
		Environment: c.Environment,
		InstanceID:  c.Tracing.InstanceID,
		Tracing: observe.TracingConfig{
			Enabled:   c.Tracing.Enabled,
			Exporter:  c.Tracing.Exporter,
			SamplePct: c.Tracing.SamplePct,
			Endpoint:  c.Tracing.Endpoint,
			Insecure:  c.Tracing.Insecure,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Metrics.Enabled,
			Exporter: c.Metrics.Exporter,
			Endpoint: c.Metrics.Endpoint,
			Insecure: c.Tracing.Insecure,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   level,
			Format:  c.Log.Format,
		},
	}
}

func (c Config) kafkaCredentials() consumer.Credentials {
	if c.Kafka.Local {
		return consumer.Credentials{}
	}
	return consumer.Credentials{
		Mechanism: c.Kafka.SASLMechanisms,
		User:      c.Kafka.User,
		Password:  c.Kafka.Password,
	}
}

// KafkaDialer returns the dialer shared by the consumer and the Kafka
// health command. SASL is used only when KAFKA_LOCAL is false.
func (c Config) KafkaDialer() (*kafka.Dialer, error) {
	return consumer.NewDialer(c.ProjectName, c.kafkaCredentials())
}

// Consumer returns the test topic consumer settings.
func (c Config) Consumer(dialer *kafka.Dialer) consumer.Config {
	return consumer.Config{
		Brokers:         c.Kafka.BootstrapServers,
		GroupID:         "consumer_" + c.Kafka.GroupID,
		Topic:           c.Kafka.TopicTest,
		AutoOffsetReset: c.Kafka.AutoOffsetReset,
		Dialer:          dialer,
	}
}

// Reporter returns the Sentry settings. Events carry SENTRY_STAGE as the
// environment and PROJECT_NAME@TRACING_VERSION as the release.
func (c Config) Reporter() report.SentryConfig {
	return report.SentryConfig{
		DSN:         c.Sentry.DSN,
		Environment: c.Sentry.Stage,
		Release:     c.ProjectName + "@" + c.Tracing.Version.String(),
	}
}

// KeycloakAuth returns the token verification settings.
func (c Config) KeycloakAuth() auth.KeycloakConfig {
	return auth.KeycloakConfig{
		PublicKey:  c.Keycloak.PublicKey,
		ClientID:   c.Keycloak.ClientID,
		Algorithms: c.Keycloak.Algorithms,
	}
}
