package probes

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jonwraymond/svcscaffold/health"
)

// KafkaCommandConfig configures KafkaCommand.
type KafkaCommandConfig struct {
	// BootstrapServers are tried in order until one answers.
	BootstrapServers []string

	// Topic, when set, must exist and report at least one partition.
	Topic string

	// Timeout bounds one probe.
	// Default: resilience.DefaultProbeTimeout
	Timeout time.Duration

	// Dialer carries client id and SASL settings.
	// Default: a plain dialer with client id "svcscaffold-health"
	Dialer *kafka.Dialer
}

// KafkaCommand checks that a Kafka cluster is reachable and lists its brokers.
type KafkaCommand struct {
	config KafkaCommandConfig
	dialer *kafka.Dialer
}

// NewKafkaCommand creates a Kafka probe.
func NewKafkaCommand(config KafkaCommandConfig) *KafkaCommand {
	dialer := config.Dialer
	if dialer == nil {
		dialer = &kafka.Dialer{ClientID: "svcscaffold-health", DualStack: true}
	}
	return &KafkaCommand{config: config, dialer: dialer}
}

// Execute dials the first reachable bootstrap server and asks it for the
// cluster metadata.
func (c *KafkaCommand) Execute(ctx context.Context) health.CommandResult {
	return timed(ctx, c.config.Timeout, c.check)
}

func (c *KafkaCommand) check(ctx context.Context) (map[string]string, error) {
	if len(c.config.BootstrapServers) == 0 {
		return nil, ErrNoBootstrapServers
	}

	var errs []error
	for _, addr := range c.config.BootstrapServers {
		data, err := c.checkBroker(ctx, addr)
		if err == nil {
			return data, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 1 {
		return nil, errs[0]
	}
	return nil, errors.Join(errs...)
}

func (c *KafkaCommand) checkBroker(ctx context.Context, addr string) (map[string]string, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	brokers, err := conn.Brokers()
	if err != nil {
		return nil, err
	}
	data := map[string]string{
		"bootstrap": addr,
		"brokers":   strconv.Itoa(len(brokers)),
	}

	if c.config.Topic != "" {
		partitions, err := conn.ReadPartitions(c.config.Topic)
		if err != nil {
			return nil, err
		}
		data["topic"] = c.config.Topic
		data["partitions"] = strconv.Itoa(len(partitions))
	}
	return data, nil
}

var _ health.Command = (*KafkaCommand)(nil)
