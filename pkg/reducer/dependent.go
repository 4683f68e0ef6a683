package reducer

import "github.com/aretw0/weave/pkg/deps"

// Dependent builds a reducer from the dependencies in scope. The store resolves
// it once, when the pipeline is assembled.
type Dependent[S, A any] interface {
	Inject(bag deps.Bag) Reducer[S, A]
}

// DependentFunc adapts a function to the Dependent interface.
type DependentFunc[S, A any] func(bag deps.Bag) Reducer[S, A]

// Inject calls f.
func (f DependentFunc[S, A]) Inject(bag deps.Bag) Reducer[S, A] {
	return f(bag)
}

type static[S, A any] struct {
	r Reducer[S, A]
}

func (s static[S, A]) Inject(deps.Bag) Reducer[S, A] {
	return s.r
}

// Static wraps a reducer that needs no dependencies.
func Static[S, A any](r Reducer[S, A]) Dependent[S, A] {
	return static[S, A]{r: r}
}

// Injecting binds key to value for d only.
func Injecting[S, A, T any](key *deps.Key[T], value T, d Dependent[S, A]) Dependent[S, A] {
	return DependentFunc[S, A](func(bag deps.Bag) Reducer[S, A] {
		return d.Inject(deps.With(bag, key, value))
	})
}

// SequenceDependent resolves each dependent reducer against the same bag and
// runs them in order.
func SequenceDependent[S, A any](ds ...Dependent[S, A]) Dependent[S, A] {
	return DependentFunc[S, A](func(bag deps.Bag) Reducer[S, A] {
		rs := make([]Reducer[S, A], len(ds))
		for i, d := range ds {
			rs[i] = d.Inject(bag)
		}
		return Sequence(rs...)
	})
}

// Resolve returns the reducer d builds for bag. A nil Dependent resolves to Empty.
func Resolve[S, A any](d Dependent[S, A], bag deps.Bag) Reducer[S, A] {
	if d == nil {
		return Empty[S, A]()
	}
	return d.Inject(bag)
}

// Uses reads one dependency and builds a reducer from it. When the key is
// absent the reducer receives def.
func Uses[S, A, T any](key *deps.Key[T], def T, build func(T) Reducer[S, A]) Dependent[S, A] {
	return DependentFunc[S, A](func(bag deps.Bag) Reducer[S, A] {
		return build(deps.LookupOr(bag, key, def))
	})
}
