package async

import (
	"sync"

	"github.com/aretw0/weave/pkg/exec"
	"github.com/aretw0/weave/pkg/result"
)

// Map transforms the success value of a. Failures pass through unchanged.
func Map[T, U any](a Action[T], f func(T) U) Action[U] {
	return New(func(ctx exec.Context, done Completion[U]) {
		a.body(ctx, func(r result.Result[T]) {
			done(result.Map(r, f))
		})
	})
}

// FlatMap chains an action that depends on the value of a. When a fails, f is
// not invoked.
func FlatMap[T, U any](a Action[T], f func(T) Action[U]) Action[U] {
	return New(func(ctx exec.Context, done Completion[U]) {
		a.body(ctx, func(r result.Result[T]) {
			v, err := r.Get()
			if err != nil {
				done(result.Err[U](err))
				return
			}
			f(v).body(ctx, done)
		})
	})
}

// Recover turns a failure of a into a value.
func Recover[T any](a Action[T], f func(error) T) Action[T] {
	return New(func(ctx exec.Context, done Completion[T]) {
		a.body(ctx, func(r result.Result[T]) {
			done(result.Recover(r, f))
		})
	})
}

// Zip runs a and b independently and combines their values once both have
// succeeded. The first failure is delivered immediately; anything arriving
// after the result has been delivered is ignored.
func Zip[A, B, C any](a Action[A], b Action[B], combine func(A, B) C) Action[C] {
	return New(func(ctx exec.Context, done Completion[C]) {
		var (
			mu        sync.Mutex
			va        A
			vb        B
			hasA      bool
			hasB      bool
			delivered bool
		)
		// settle records one side under the lock and delivers once the join is decided.
		settle := func(record func() error) {
			mu.Lock()
			if delivered {
				mu.Unlock()
				return
			}
			if err := record(); err != nil {
				delivered = true
				mu.Unlock()
				done(result.Err[C](err))
				return
			}
			if !hasA || !hasB {
				mu.Unlock()
				return
			}
			delivered = true
			x, y := va, vb
			mu.Unlock()
			done(result.Ok(combine(x, y)))
		}

		a.body(ctx, func(r result.Result[A]) {
			settle(func() error {
				v, err := r.Get()
				if err != nil {
					return err
				}
				va, hasA = v, true
				return nil
			})
		})
		b.body(ctx, func(r result.Result[B]) {
			settle(func() error {
				v, err := r.Get()
				if err != nil {
					return err
				}
				vb, hasB = v, true
				return nil
			})
		})
	})
}

// ZipAll runs every action independently and combines the values in argument
// order once all have succeeded. The first failure is delivered immediately
// and later arrivals are discarded. An empty list completes with combine(nil).
func ZipAll[T, U any](actions []Action[T], combine func([]T) U) Action[U] {
	return New(func(ctx exec.Context, done Completion[U]) {
		if len(actions) == 0 {
			done(result.Ok(combine(nil)))
			return
		}
		var (
			mu        sync.Mutex
			values    = make([]T, len(actions))
			remaining = len(actions)
			delivered bool
		)
		for i, a := range actions {
			a.body(ctx, once[T](func(r result.Result[T]) {
				mu.Lock()
				if delivered {
					mu.Unlock()
					return
				}
				v, err := r.Get()
				if err != nil {
					delivered = true
					mu.Unlock()
					done(result.Err[U](err))
					return
				}
				values[i] = v
				remaining--
				if remaining > 0 {
					mu.Unlock()
					return
				}
				delivered = true
				mu.Unlock()
				done(result.Ok(combine(values)))
			}))
		}
	})
}

// Collect is ZipAll returning the values themselves.
func Collect[T any](actions ...Action[T]) Action[[]T] {
	return ZipAll(actions, func(vs []T) []T { return vs })
}
