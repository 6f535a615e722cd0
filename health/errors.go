package health

import "errors"

var (
	// ErrUnknownStatus indicates a status value outside Healthy/Unhealthy.
	ErrUnknownStatus = errors.New("health: unknown status")

	// ErrInvalidPercentage indicates a threshold outside [0, 100].
	ErrInvalidPercentage = errors.New("health: percentage must be between 0 and 100")

	// ErrUnknownView indicates a view name other than liveness, readiness or monitor.
	ErrUnknownView = errors.New("health: unknown view")
)
