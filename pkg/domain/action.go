package domain

import (
	"fmt"

	"github.com/aretw0/weave/pkg/cast"
)

// Action is a value describing an event to be processed by a reducer.
// Its identity is its runtime type plus payload.
type Action = any

// Effect is a value describing work to perform as a result of a transition.
// Effects are descriptors; middleware decides whether and how to run them.
type Effect = any

// Kinded lets an action or effect name itself for logs and metrics.
type Kinded interface {
	Kind() string
}

// Kind returns a stable, human readable name for an action or effect.
// Values implementing Kinded choose their own name; everything else is named
// after its Go type.
func Kind(v any) string {
	if k, ok := v.(Kinded); ok {
		return k.Kind()
	}
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", v)
}

// Kinds maps Kind over a list of effects, preserving order.
func Kinds(effects []Effect) []string {
	out := make([]string, len(effects))
	for i, e := range effects {
		out[i] = Kind(e)
	}
	return out
}

// FailedAction is dispatched when an asynchronous effect fails.
// Kind carries the type tag of the action the effect would have produced,
// so recovery reducers can match on which kind of work failed.
type FailedAction struct {
	Kind cast.Tag
	Err  error
}

// Error implements error so failures can be logged or wrapped directly.
func (f FailedAction) Error() string {
	return fmt.Sprintf("async %s failed: %v", f.Kind, f.Err)
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (f FailedAction) Unwrap() error {
	return f.Err
}

// FailedFor reports whether f was produced by an asynchronous effect whose
// success type is T.
func FailedFor[T any](f FailedAction) bool {
	return f.Kind == cast.TagOf[T]()
}
