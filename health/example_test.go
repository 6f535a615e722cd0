package health_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/svcscaffold/health"
)

func ExampleCommander_RunReadiness() {
	readiness := health.NewCommandHandler()
	readiness.Register("postgres", health.CheckFunc(func(ctx context.Context) error {
		return nil
	}))
	readiness.Register("kafka", health.CheckFunc(func(ctx context.Context) error {
		return errors.New("no brokers available")
	}))

	commander := health.NewCommander(nil, readiness, nil, health.DefaultConfig())
	result := commander.RunReadiness(context.Background())

	fmt.Println("status:", result.Status)
	for _, entry := range result.Entries {
		fmt.Printf("%s: %s\n", entry.Name, entry.Result.Status)
	}
	// Output:
	// status: Unhealthy
	// postgres: Healthy
	// kafka: Unhealthy
}

func ExampleCommander_RunMonitor_threshold() {
	monitor := health.NewCommandHandler()
	for _, name := range []string{"a", "b", "c", "d"} {
		monitor.Register(name, health.CheckFunc(func(ctx context.Context) error { return nil }))
	}
	monitor.Register("e", health.CheckFunc(func(ctx context.Context) error {
		return errors.New("down")
	}))

	strict := health.NewCommander(nil, nil, monitor, health.DefaultConfig())
	lenient := health.NewCommander(nil, nil, monitor, health.Config{
		MinPercentageForWorkingCapacity: 80,
		MaxPercentageForWorkingCapacity: 80,
	})

	ctx := context.Background()
	fmt.Println("max 100:", strict.RunMonitor(ctx).Status)
	fmt.Println("max 80:", lenient.RunMonitor(ctx).Status)
	// Output:
	// max 100: Unhealthy
	// max 80: Healthy
}

func ExampleCatch() {
	seconds := health.Catch(func() {})
	fmt.Println(seconds >= 0)
	// Output: true
}
