// Command svcscaffold runs the service or evaluates one health view.
//
// Usage:
//
//	svcscaffold serve
//	svcscaffold check readiness
//	svcscaffold consume
//
// check prints the view's JSON result and exits 0 when Healthy, 1 when
// Unhealthy. Startup failures exit 2.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonwraymond/svcscaffold/observe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUnhealthy):
		return 1
	default:
		logger := observe.NewLoggerWithWriter("ERROR", observe.FormatPlain, root.ErrOrStderr())
		logger.Error(ctx, "svcscaffold failed", observe.Field{Key: "error", Value: err})
		return 2
	}
}
