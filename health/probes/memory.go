package probes

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/jonwraymond/svcscaffold/health"
)

// MemoryCommandConfig configures MemoryCommand.
type MemoryCommandConfig struct {
	// LimitBytes is the heap ceiling. Zero uses the memory obtained from
	// the OS (runtime.MemStats.Sys).
	LimitBytes uint64

	// CriticalRatio is the share of LimitBytes at which the probe fails.
	// Value should be between 0 and 1. Default: 0.95
	CriticalRatio float64
}

// MemoryCommand checks heap allocation against a ceiling.
type MemoryCommand struct {
	config MemoryCommandConfig
	read   func(*runtime.MemStats)
}

// NewMemoryCommand creates a memory probe.
func NewMemoryCommand(config MemoryCommandConfig) *MemoryCommand {
	if config.CriticalRatio <= 0 || config.CriticalRatio > 1 {
		config.CriticalRatio = 0.95
	}
	return &MemoryCommand{config: config, read: runtime.ReadMemStats}
}

// Execute reads the runtime memory statistics.
func (c *MemoryCommand) Execute(ctx context.Context) health.CommandResult {
	var stats runtime.MemStats
	duration := health.Catch(func() { c.read(&stats) })

	limit := c.config.LimitBytes
	if limit == 0 {
		limit = stats.Sys
	}

	data := map[string]string{
		"alloc":      humanize.IBytes(stats.Alloc),
		"heap_inuse": humanize.IBytes(stats.HeapInuse),
		"limit":      humanize.IBytes(limit),
		"num_gc":     strconv.FormatUint(uint64(stats.NumGC), 10),
		"goroutines": strconv.Itoa(runtime.NumGoroutine()),
	}
	if limit == 0 {
		return health.Healthy(duration).WithData(data)
	}

	usage := float64(stats.Alloc) / float64(limit)
	data["usage"] = fmt.Sprintf("%.1f%%", usage*100)

	if usage >= c.config.CriticalRatio {
		err := fmt.Errorf("%w: %s of %s", ErrMemoryCritical, humanize.IBytes(stats.Alloc), humanize.IBytes(limit))
		return health.Unhealthy(duration, err).WithData(data)
	}
	return health.Healthy(duration).WithData(data)
}

var _ health.Command = (*MemoryCommand)(nil)
