package health

import (
	"context"
	"errors"
	"time"
)

func healthyCmd() Command {
	return CommandFunc(func(ctx context.Context) CommandResult {
		return Healthy(0.001)
	})
}

func unhealthyCmd(msg string) Command {
	return CommandFunc(func(ctx context.Context) CommandResult {
		return Unhealthy(0.001, errors.New(msg))
	})
}

func sleepCmd(d time.Duration, healthy bool) Command {
	return CheckFunc(func(ctx context.Context) error {
		time.Sleep(d)
		if !healthy {
			return errors.New("slow failure")
		}
		return nil
	})
}

func handlerOf(cmds ...Command) *CommandHandler {
	h := NewCommandHandler()
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	for i, cmd := range cmds {
		h.Register(names[i], cmd)
	}
	return h
}
