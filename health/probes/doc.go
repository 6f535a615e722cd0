// Package probes provides health.Command implementations for the
// dependencies a service typically has: a relational database, a Kafka
// cluster, downstream HTTP services and its own heap.
//
// Every probe times itself, applies its own timeout and reports failures
// as unhealthy results. None of them panics on a dependency failure.
package probes
