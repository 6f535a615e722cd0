package consumer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/svcscaffold/observe"
)

// Offset reset policies for a group with no committed offset.
const (
	OffsetEarliest = "earliest"
	OffsetLatest   = "latest"
)

// Config selects the cluster, group and topic.
type Config struct {
	Brokers []string
	GroupID string
	Topic   string

	// AutoOffsetReset is OffsetEarliest or OffsetLatest.
	// Default: OffsetEarliest
	AutoOffsetReset string

	// Dialer carries client id and SASL settings. Default: kafka.DefaultDialer
	Dialer *kafka.Dialer
}

// Handler processes one message. Returned errors are logged.
type Handler func(ctx context.Context, msg kafka.Message) error

// Reader is the subset of *kafka.Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Option configures a Consumer.
type Option func(*Consumer)

// WithLogger sets the logger. Default: no-op.
func WithLogger(l observe.Logger) Option {
	return func(c *Consumer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer wraps each handled message in a consumer span.
func WithTracer(t trace.Tracer) Option {
	return func(c *Consumer) {
		if t != nil {
			c.tracer = t
		}
	}
}

// Consumer fetches, handles and commits messages one at a time.
type Consumer struct {
	reader  Reader
	handler Handler
	logger  observe.Logger
	tracer  trace.Tracer
}

// New validates cfg and opens a group reader.
func New(cfg Config, handler Handler, opts ...Option) (*Consumer, error) {
	start, err := startOffset(cfg.AutoOffsetReset)
	if err != nil {
		return nil, err
	}
	rc := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: start,
		Dialer:      cfg.Dialer,
	}
	if err := rc.Validate(); err != nil {
		return nil, fmt.Errorf("consumer: %w", err)
	}
	return NewWithReader(kafka.NewReader(rc), handler, opts...), nil
}

// NewWithReader builds a Consumer around an existing reader.
func NewWithReader(r Reader, handler Handler, opts ...Option) *Consumer {
	c := &Consumer{
		reader:  r,
		handler: handler,
		logger:  observe.NewNoopLogger(),
		tracer:  noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func startOffset(reset string) (int64, error) {
	switch reset {
	case "", OffsetEarliest:
		return kafka.FirstOffset, nil
	case OffsetLatest:
		return kafka.LastOffset, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOffsetReset, reset)
	}
}

// Run consumes until ctx ends, which returns nil, or until fetching or
// committing fails.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("consumer: fetch: %w", err)
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("consumer: commit %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	ctx, span := c.tracer.Start(ctx, msg.Topic+" process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", msg.Topic),
			attribute.Int("messaging.kafka.destination.partition", msg.Partition),
			attribute.Int64("messaging.kafka.message.offset", msg.Offset),
		),
	)
	defer span.End()

	if err := c.handler(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error(ctx, "message handling failed",
			observe.Field{Key: "topic", Value: msg.Topic},
			observe.Field{Key: "partition", Value: msg.Partition},
			observe.Field{Key: "offset", Value: msg.Offset},
			observe.Field{Key: "error", Value: err},
		)
	}
}

// Close releases the reader and leaves the group.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
