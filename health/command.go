package health

import "context"

// Command checks whether one dependency is usable right now.
//
// Contract:
//   - Errors: Execute must not panic or leak failures; a failed check is
//     reported as an unhealthy CommandResult.
//   - Timing: Execute measures its own check and reports the duration
//     regardless of outcome.
//   - Context: implementations should honor cancellation and apply their
//     own timeout; the Commander imposes none.
type Command interface {
	Execute(ctx context.Context) CommandResult
}

// CommandFunc is an adapter to allow ordinary functions to be used as Commands.
type CommandFunc func(ctx context.Context) CommandResult

// Execute calls f(ctx).
func (f CommandFunc) Execute(ctx context.Context) CommandResult {
	return f(ctx)
}

// CheckFunc adapts a function returning an error into a timed Command.
// A nil error yields a healthy result; any other error an unhealthy one.
func CheckFunc(check func(ctx context.Context) error) Command {
	return CommandFunc(func(ctx context.Context) CommandResult {
		var err error
		duration := Catch(func() { err = check(ctx) })
		if err != nil {
			return Unhealthy(duration, err)
		}
		return Healthy(duration)
	})
}
