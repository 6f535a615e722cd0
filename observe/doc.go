// Package observe provides the logging, tracing and metrics primitives
// shared by the service.
//
// It sets up OpenTelemetry providers and a zerolog-backed structured
// logger from one Config. Consumers wire the resulting Instruments into
// the health commander and the HTTP middleware chain.
package observe
