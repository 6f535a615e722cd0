// Package app wires the service together from a loaded config.Config.
//
// New builds, in order, the observer, the optional Sentry reporter and
// Kafka dialer, the optional database handle, the health probes and
// commander, and the HTTP router. Run serves until the context ends and
// then releases everything New acquired. Consume does the same for the
// test topic consumer:
//
//	cfg, err := config.Load(ctx)
//	if err != nil {
//		return err
//	}
//	a, err := app.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	return a.Run(ctx)
//
// Probes are registered per view:
//
//   - liveness: memory
//   - readiness: memory, postgres, kafka
//   - monitor: everything in readiness plus each HEALTHCHECK_HTTP_TARGETS entry
//
// postgres and kafka are registered only when their section is enabled.
package app
