package async

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aretw0/weave/pkg/cast"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/exec"
	"github.com/aretw0/weave/pkg/result"
)

// Schedulable is an effect that knows how to run itself on an execution
// context and report its outcome as an action.
type Schedulable interface {
	ScheduleOn(ctx exec.Context, dispatch func(domain.Action))
}

// Completion receives the outcome of an Action.
type Completion[T any] func(result.Result[T])

// Action is a deferred computation producing a T or an error.
// The zero value completes successfully with the zero T.
type Action[T any] struct {
	run func(ctx exec.Context, done Completion[T])
}

// New builds an action from a raw body. run is invoked on ctx and must arrange
// for done to be called on ctx; WithContinuation does that for you.
func New[T any](run func(ctx exec.Context, done Completion[T])) Action[T] {
	return Action[T]{run: run}
}

// Succeed completes with v.
func Succeed[T any](v T) Action[T] {
	return New(func(_ exec.Context, done Completion[T]) {
		done(result.Ok(v))
	})
}

// Fail completes with err.
func Fail[T any](err error) Action[T] {
	return New(func(_ exec.Context, done Completion[T]) {
		done(result.Err[T](err))
	})
}

// From runs fn on its own goroutine and resumes on the scheduling context.
// A panic in fn becomes an error wrapping domain.ErrPanic.
func From[T any](fn func() (T, error)) Action[T] {
	return New(func(ctx exec.Context, done Completion[T]) {
		go func() {
			r := capture(fn)
			ctx.Async(func() { done(r) })
		}()
	})
}

// FromContext is From for functions that honor cancellation; fn receives parent.
func FromContext[T any](parent context.Context, fn func(context.Context) (T, error)) Action[T] {
	return From(func() (T, error) {
		return fn(parent)
	})
}

// WithContinuation hands body a resume function. body runs on the scheduling
// context and must not block; it typically starts work elsewhere and calls
// resume when done. resume may be called from any goroutine and routes the
// completion back through the context. A panic in body becomes an error.
func WithContinuation[T any](body func(resume Completion[T])) Action[T] {
	return New(func(ctx exec.Context, done Completion[T]) {
		resume := func(r result.Result[T]) {
			ctx.Async(func() { done(r) })
		}
		defer func() {
			if p := recover(); p != nil {
				resume(result.Err[T](fmt.Errorf("%w: %v", domain.ErrPanic, p)))
			}
		}()
		body(resume)
	})
}

// Delay waits d before starting a.
func Delay[T any](d time.Duration, a Action[T]) Action[T] {
	return New(func(ctx exec.Context, done Completion[T]) {
		time.AfterFunc(d, func() {
			ctx.Async(func() { a.body(ctx, done) })
		})
	})
}

// Schedule starts a on ctx. done is invoked exactly once, on ctx.
// Completions after the first are dropped.
func (a Action[T]) Schedule(ctx exec.Context, done Completion[T]) {
	guarded := once(done)
	ctx.Async(func() { a.body(ctx, guarded) })
}

// ScheduleOn implements Schedulable. The success value is dispatched as an
// action; a failure is dispatched as a domain.FailedAction tagged with T.
func (a Action[T]) ScheduleOn(ctx exec.Context, dispatch func(domain.Action)) {
	a.Schedule(ctx, func(r result.Result[T]) {
		v, err := r.Get()
		if err != nil {
			dispatch(domain.FailedAction{Kind: cast.TagOf[T](), Err: err})
			return
		}
		dispatch(v)
	})
}

// Kind names the effect after the type it produces.
func (a Action[T]) Kind() string {
	return "async(" + cast.TagOf[T]().String() + ")"
}

// Await schedules a on ctx and blocks until it completes or parent is done.
// It must not be called from a closure running on a serial ctx.
func Await[T any](parent context.Context, ctx exec.Context, a Action[T]) (T, error) {
	ch := make(chan result.Result[T], 1)
	a.Schedule(ctx, func(r result.Result[T]) { ch <- r })
	select {
	case r := <-ch:
		return r.Get()
	case <-parent.Done():
		var zero T
		return zero, parent.Err()
	}
}

var _ Schedulable = Action[int]{}

func (a Action[T]) body(ctx exec.Context, done Completion[T]) {
	if a.run == nil {
		var zero T
		done(result.Ok(zero))
		return
	}
	a.run(ctx, done)
}

func once[T any](done Completion[T]) Completion[T] {
	var used atomic.Uintptr
	return func(r result.Result[T]) {
		if used.Add(1) != 1 {
			return
		}
		done(r)
	}
}

func capture[T any](fn func() (T, error)) (r result.Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			r = result.Err[T](fmt.Errorf("%w: %v", domain.ErrPanic, p))
		}
	}()
	v, err := fn()
	return result.Of(v, err)
}
