package consumer

import "errors"

var (
	// ErrUnsupportedMechanism is returned for an unknown SASL mechanism.
	ErrUnsupportedMechanism = errors.New("consumer: unsupported SASL mechanism")

	// ErrUnknownOffsetReset is returned when StartOffset is not earliest or latest.
	ErrUnknownOffsetReset = errors.New("consumer: auto offset reset must be earliest or latest")
)
