package middleware

import (
	"github.com/aretw0/weave/pkg/deps"
	"github.com/aretw0/weave/pkg/domain"
)

// Dispatch consumes an action and returns the effects it produced.
type Dispatch[A any] func(action A) []domain.Effect

// Handle is a non-owning reference to a running store.
type Handle[S, A any] interface {
	// Dispatch enqueues action on the store's context. After teardown it is a no-op.
	Dispatch(action A)
	// State returns a snapshot of the committed state, or false after teardown.
	State() (S, bool)
}

// Finalizer is implemented by handles whose store can release resources held
// by middleware. Functions registered with OnTeardown run once when the store is
// torn down, or immediately if it already is.
type Finalizer interface {
	OnTeardown(fn func())
}

// OnTeardown registers fn with store when it supports teardown.
func OnTeardown[S, A any](store Handle[S, A], fn func()) {
	if f, ok := store.(Finalizer); ok {
		f.OnTeardown(fn)
	}
}

// Middleware builds a dispatch function on top of next.
// Apply is called once when the pipeline is assembled; the returned function is
// invoked for every dispatch.
type Middleware[S, A any] interface {
	Apply(next Dispatch[A], store Handle[S, A], bag deps.Bag) Dispatch[A]
}

// Func adapts a function to the Middleware interface.
type Func[S, A any] func(next Dispatch[A], store Handle[S, A], bag deps.Bag) Dispatch[A]

// Apply calls f.
func (f Func[S, A]) Apply(next Dispatch[A], store Handle[S, A], bag deps.Bag) Dispatch[A] {
	return f(next, store, bag)
}

// Identity returns a middleware that forwards to next unchanged.
func Identity[S, A any]() Middleware[S, A] {
	return Func[S, A](func(next Dispatch[A], _ Handle[S, A], _ deps.Bag) Dispatch[A] {
		return next
	})
}

// Overlayer is implemented by middleware that changes the dependency bag for
// the layers below it.
type Overlayer interface {
	Overlay(bag deps.Bag) deps.Bag
}

// Below returns the bag seen by whatever sits below m when m receives bag.
func Below(m any, bag deps.Bag) deps.Bag {
	if o, ok := m.(Overlayer); ok {
		return o.Overlay(bag)
	}
	return bag
}

type stack[S, A any] struct {
	layers []Middleware[S, A]
}

// Compose chains ms with the first one outermost. Nested compositions are
// flattened, so grouping does not change ordering or bag scoping.
func Compose[S, A any](ms ...Middleware[S, A]) Middleware[S, A] {
	var layers []Middleware[S, A]
	for _, m := range ms {
		switch m := m.(type) {
		case nil:
		case stack[S, A]:
			layers = append(layers, m.layers...)
		default:
			layers = append(layers, m)
		}
	}
	if len(layers) == 1 {
		return layers[0]
	}
	return stack[S, A]{layers: layers}
}

// Overlay applies every layer's overlay in order.
func (s stack[S, A]) Overlay(bag deps.Bag) deps.Bag {
	for _, m := range s.layers {
		bag = Below(m, bag)
	}
	return bag
}

func (s stack[S, A]) Apply(next Dispatch[A], store Handle[S, A], bag deps.Bag) Dispatch[A] {
	bags := make([]deps.Bag, len(s.layers))
	for i, m := range s.layers {
		bags[i] = bag
		bag = Below(m, bag)
	}
	d := next
	for i := len(s.layers) - 1; i >= 0; i-- {
		d = s.layers[i].Apply(d, store, bags[i])
	}
	return d
}

type inject[S, A, T any] struct {
	key   *deps.Key[T]
	value T
}

// Inject binds key to value for every layer below it, and for dependent
// reducers when nothing below overrides it.
func Inject[S, A, T any](key *deps.Key[T], value T) Middleware[S, A] {
	return inject[S, A, T]{key: key, value: value}
}

func (i inject[S, A, T]) Apply(next Dispatch[A], _ Handle[S, A], _ deps.Bag) Dispatch[A] {
	return next
}

func (i inject[S, A, T]) Overlay(bag deps.Bag) deps.Bag {
	return deps.With(bag, i.key, i.value)
}

type withValue[S, A, T any] struct {
	inner Middleware[S, A]
	key   *deps.Key[T]
	value T
}

// WithValue binds key to value for m alone.
func WithValue[S, A, T any](m Middleware[S, A], key *deps.Key[T], value T) Middleware[S, A] {
	return withValue[S, A, T]{inner: m, key: key, value: value}
}

func (w withValue[S, A, T]) Apply(next Dispatch[A], store Handle[S, A], bag deps.Bag) Dispatch[A] {
	return w.inner.Apply(next, store, deps.With(bag, w.key, w.value))
}

func (w withValue[S, A, T]) Overlay(bag deps.Bag) deps.Bag {
	return Below(w.inner, bag)
}
