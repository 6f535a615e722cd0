package consumer

import (
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Supported SASL mechanism names.
const (
	MechanismPlain       = "PLAIN"
	MechanismScramSHA256 = "SCRAM-SHA-256"
	MechanismScramSHA512 = "SCRAM-SHA-512"
)

// Credentials authenticate against a managed cluster. An empty Mechanism
// dials without SASL.
type Credentials struct {
	Mechanism string
	User      string
	Password  string
}

// NewDialer returns a dialer shared by the consumer and the Kafka health
// command.
func NewDialer(clientID string, creds Credentials) (*kafka.Dialer, error) {
	d := &kafka.Dialer{ClientID: clientID, DualStack: true}
	if creds.Mechanism == "" {
		return d, nil
	}
	m, err := mechanism(creds)
	if err != nil {
		return nil, err
	}
	d.SASLMechanism = m
	return d, nil
}

func mechanism(creds Credentials) (sasl.Mechanism, error) {
	switch strings.ToUpper(creds.Mechanism) {
	case MechanismPlain:
		return plain.Mechanism{Username: creds.User, Password: creds.Password}, nil
	case MechanismScramSHA256:
		return scram.Mechanism(scram.SHA256, creds.User, creds.Password)
	case MechanismScramSHA512:
		return scram.Mechanism(scram.SHA512, creds.User, creds.Password)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMechanism, creds.Mechanism)
	}
}
