package observable

import "sync"

// Cancellable releases a subscription.
type Cancellable interface {
	Cancel()
}

type cancelFunc struct {
	once sync.Once
	fn   func()
}

func (c *cancelFunc) Cancel() {
	c.once.Do(c.fn)
}

// Cancel builds a Cancellable that runs fn at most once.
func Cancel(fn func()) Cancellable {
	if fn == nil {
		return Nop()
	}
	return &cancelFunc{fn: fn}
}

type nop struct{}

func (nop) Cancel() {}

// Nop returns a Cancellable that does nothing.
func Nop() Cancellable {
	return nop{}
}

// Many cancels every handle, in order, when cancelled.
func Many(cs ...Cancellable) Cancellable {
	return Cancel(func() {
		for _, c := range cs {
			if c != nil {
				c.Cancel()
			}
		}
	})
}

// Observer receives values from an Observable.
type Observer[T any] interface {
	Observe(T)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc[T any] func(T)

// Observe calls f.
func (f ObserverFunc[T]) Observe(v T) {
	f(v)
}

// Observable is an event source supporting many concurrent subscribers.
type Observable[T any] interface {
	Subscribe(Observer[T]) Cancellable
}

// SubscribeFunc adapts a function to the Observable interface.
type SubscribeFunc[T any] func(Observer[T]) Cancellable

// Subscribe calls f.
func (f SubscribeFunc[T]) Subscribe(o Observer[T]) Cancellable {
	return f(o)
}

// Sink subscribes fn to src.
func Sink[T any](src Observable[T], fn func(T)) Cancellable {
	return src.Subscribe(ObserverFunc[T](fn))
}
