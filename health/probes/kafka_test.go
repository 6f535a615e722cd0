package probes

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jonwraymond/svcscaffold/health"
)

func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func TestKafkaCommand_NoServers(t *testing.T) {
	got := NewKafkaCommand(KafkaCommandConfig{}).Execute(context.Background())
	if got.Status != health.StatusUnhealthy {
		t.Fatalf("Status = %v, want Unhealthy", got.Status)
	}
	if got.Description != ErrNoBootstrapServers.Error() {
		t.Errorf("Description = %q", got.Description)
	}
	if got.Exception != "probes.ErrNoBootstrapServers" {
		t.Errorf("Exception = %q, want probes.ErrNoBootstrapServers", got.Exception)
	}
}

func TestKafkaCommand_Unreachable(t *testing.T) {
	cmd := NewKafkaCommand(KafkaCommandConfig{
		BootstrapServers: []string{closedAddr(t), closedAddr(t)},
		Timeout:          2 * time.Second,
	})

	got := cmd.Execute(context.Background())
	if got.Status != health.StatusUnhealthy {
		t.Fatalf("Status = %v, want Unhealthy", got.Status)
	}
	if got.Description == "" {
		t.Errorf("missing failure detail: %+v", got)
	}
	if got.Exception != "*net.OpError" {
		t.Errorf("Exception = %q, want *net.OpError from the joined dial errors", got.Exception)
	}
	if got.Duration > 2 {
		t.Errorf("Duration = %v, want refused dials to return quickly", got.Duration)
	}
}

func TestKafkaCommand_CheckSingleError(t *testing.T) {
	cmd := NewKafkaCommand(KafkaCommandConfig{BootstrapServers: []string{closedAddr(t)}})

	_, err := cmd.check(context.Background())
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Errorf("check() error = %T %v, want *net.OpError", err, err)
	}
}

func TestNewKafkaCommand_Dialer(t *testing.T) {
	if got := NewKafkaCommand(KafkaCommandConfig{}).dialer.ClientID; got != "svcscaffold-health" {
		t.Errorf("default ClientID = %q", got)
	}
	d := &kafka.Dialer{ClientID: "orders"}
	if got := NewKafkaCommand(KafkaCommandConfig{Dialer: d}).dialer; got != d {
		t.Error("configured dialer not used")
	}
}
