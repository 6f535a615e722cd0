package probes

// sentinelError reports its package-qualified name as its exception kind.
type sentinelError struct {
	kind string
	msg  string
}

func (e *sentinelError) Error() string         { return e.msg }
func (e *sentinelError) ExceptionKind() string { return e.kind }

var (
	// ErrNoBootstrapServers is reported when KafkaCommand has nothing to dial.
	ErrNoBootstrapServers error = &sentinelError{"probes.ErrNoBootstrapServers", "probes: no kafka bootstrap servers configured"}

	// ErrMemoryCritical is reported when heap allocation crosses the ceiling.
	ErrMemoryCritical error = &sentinelError{"probes.ErrMemoryCritical", "probes: memory usage critical"}
)
