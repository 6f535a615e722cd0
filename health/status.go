package health

import (
	"encoding/json"
	"fmt"
)

// Status represents the health status of a probe or a whole view.
type Status int

const (
	// StatusHealthy indicates the dependency is usable.
	StatusHealthy Status = iota
	// StatusUnhealthy indicates the dependency is not usable.
	StatusUnhealthy
)

// String returns the wire representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "Healthy"
	case StatusUnhealthy:
		return "Unhealthy"
	default:
		return "Unknown"
	}
}

// MarshalJSON renders the status as "Healthy" or "Unhealthy".
func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case StatusHealthy, StatusUnhealthy:
		return json.Marshal(s.String())
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s))
	}
}

// UnmarshalJSON parses "Healthy" or "Unhealthy".
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "Healthy":
		*s = StatusHealthy
	case "Unhealthy":
		*s = StatusUnhealthy
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, str)
	}
	return nil
}
