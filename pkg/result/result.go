// Package result provides a value-or-error carrier for asynchronous results.
package result

// Result is either a success value or an error.
// The zero value is a success holding the zero value of T.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a success value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err wraps a failure. A nil error produces a success holding the zero value.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Of builds a Result from a conventional (value, error) pair.
func Of[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}

// IsOk reports whether r holds a success value.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Get returns the value and error as a conventional pair.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// Value returns the success value and true, or the zero value and false.
func (r Result[T]) Value() (T, bool) {
	if r.err != nil {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Error returns the failure, or nil for a success.
func (r Result[T]) Error() error {
	return r.err
}

// Map transforms a success value. Failures pass through unchanged.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return Ok(f(r.value))
}

// FlatMap chains a dependent computation. f is not called on failure.
func FlatMap[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return f(r.value)
}

// Match folds r into a single value.
func Match[T, U any](r Result[T], onOk func(T) U, onErr func(error) U) U {
	if r.err != nil {
		return onErr(r.err)
	}
	return onOk(r.value)
}

// Recover turns a failure into a success using f. Successes pass through.
func Recover[T any](r Result[T], f func(error) T) Result[T] {
	if r.err != nil {
		return Ok(f(r.err))
	}
	return r
}
