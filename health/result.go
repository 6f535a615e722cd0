package health

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CommandResult is the outcome of one Command execution.
//
// Exception and Description are set for unhealthy results. Data carries
// extra probe-supplied detail and may be set on either status.
type CommandResult struct {
	Status      Status            `json:"status"`
	Data        map[string]string `json:"data"`
	Duration    float64           `json:"duration"`
	Exception   string            `json:"exception,omitempty"`
	Description string            `json:"description,omitempty"`
}

// Healthy creates a healthy result measured at duration seconds.
func Healthy(duration float64) CommandResult {
	return CommandResult{
		Status:   StatusHealthy,
		Duration: duration,
	}
}

// Unhealthy creates an unhealthy result from the error that failed the check.
func Unhealthy(duration float64, err error) CommandResult {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return CommandResult{
		Status:      StatusUnhealthy,
		Duration:    duration,
		Exception:   ExceptionKind(err),
		Description: err.Error(),
	}
}

// WithData returns a copy of the result carrying data.
func (r CommandResult) WithData(data map[string]string) CommandResult {
	cp := make(map[string]string, len(data))
	for k, v := range data {
		cp[k] = v
	}
	r.Data = cp
	return r
}

// MarshalJSON renders a nil Data as an empty object.
func (r CommandResult) MarshalJSON() ([]byte, error) {
	type plain CommandResult
	p := plain(r)
	if p.Data == nil {
		p.Data = map[string]string{}
	}
	return json.Marshal(p)
}

// ExceptionKinder is implemented by errors that name their own failure
// kind, typically package sentinels.
type ExceptionKinder interface {
	ExceptionKind() string
}

// anonymousErrors are types that only carry a message or wrap other
// errors. They never name a failure kind while a more specific error is
// reachable from them.
var anonymousErrors = map[string]bool{
	"*errors.errorString": true,
	"*errors.joinError":   true,
	"*fmt.wrapError":      true,
	"*fmt.wrapErrors":     true,
}

// ExceptionKind names the failure kind of err. The wrap chain is walked
// depth first and the first error that is an ExceptionKinder or not an
// anonymous wrapper wins, so fmt.Errorf("ping: %w", opErr) reports
// *net.OpError. A chain of plain messages reports *errors.errorString.
func ExceptionKind(err error) string {
	if err == nil {
		return ""
	}
	kind, _ := exceptionKind(err)
	return kind
}

func exceptionKind(err error) (kind string, named bool) {
	if k, ok := err.(ExceptionKinder); ok {
		return k.ExceptionKind(), true
	}
	kind = fmt.Sprintf("%T", err)
	if !anonymousErrors[kind] {
		return kind, true
	}

	var children []error
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		if next := u.Unwrap(); next != nil {
			children = []error{next}
		}
	case interface{ Unwrap() []error }:
		children = u.Unwrap()
	}
	for i, child := range children {
		childKind, ok := exceptionKind(child)
		if ok {
			return childKind, true
		}
		if i == 0 {
			kind = childKind
		}
	}
	return kind, false
}
