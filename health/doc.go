// Package health aggregates dependency probes into capacity verdicts.
//
// A Command checks one dependency and always returns a CommandResult; it
// never fails past its own boundary. Commands are grouped by service name
// in a CommandHandler, one handler per view. The Commander runs a view's
// commands, counts healthy results and compares the healthy percentage
// against the view's threshold.
//
// # Views
//
// There are three views over the same contract:
//
//   - liveness and readiness require MinPercentageForWorkingCapacity
//     (default 80%)
//   - monitor requires MaxPercentageForWorkingCapacity (default 100%)
//
// # Basic Usage
//
//	readiness := health.NewCommandHandler()
//	readiness.Register("postgres", probes.NewDBCommand(db, probes.DBCommandConfig{}))
//
//	commander := health.NewCommander(
//	    health.NewCommandHandler(), readiness, health.NewCommandHandler(),
//	    health.DefaultConfig(),
//	)
//
//	result := commander.RunReadiness(ctx)
//	if result.Status == health.StatusUnhealthy {
//	    // fewer than 80% of the readiness probes passed
//	}
//
// # HTTP Endpoints
//
// RegisterRoutes mounts GET /health/liveness, /health/readiness and
// /health/monitor. Each responds with the JSON rendering of the
// WorkingCapacityResult: 200 when Healthy, 400 when Unhealthy.
package health
