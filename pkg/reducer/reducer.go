package reducer

import (
	"github.com/aretw0/weave/pkg/cast"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/optics"
)

// Reducer applies an action to state, mutating it in place, and returns the
// effects of the transition. Implementations must not block or perform I/O.
type Reducer[S, A any] interface {
	Apply(state *S, action A) []domain.Effect
}

// Func adapts a function to the Reducer interface.
type Func[S, A any] func(state *S, action A) []domain.Effect

// Apply calls f.
func (f Func[S, A]) Apply(state *S, action A) []domain.Effect {
	return f(state, action)
}

// Then runs f and next in order.
func (f Func[S, A]) Then(next Reducer[S, A]) Reducer[S, A] {
	return Sequence[S, A](f, next)
}

// Pure adapts a mutation that produces no effects.
func Pure[S, A any](f func(state *S, action A)) Func[S, A] {
	return func(state *S, action A) []domain.Effect {
		f(state, action)
		return nil
	}
}

// Empty is a reducer that does nothing.
func Empty[S, A any]() Func[S, A] {
	return func(*S, A) []domain.Effect { return nil }
}

// Sequence runs each reducer against the same state in order. Later reducers
// observe earlier writes; effects are concatenated in reducer order.
func Sequence[S, A any](rs ...Reducer[S, A]) Reducer[S, A] {
	switch len(rs) {
	case 0:
		return Empty[S, A]()
	case 1:
		return rs[0]
	}
	return Func[S, A](func(state *S, action A) []domain.Effect {
		var effects []domain.Effect
		for _, r := range rs {
			effects = append(effects, r.Apply(state, action)...)
		}
		return effects
	})
}

// Lensed scopes r to the part of the state focused by lens.
func Lensed[S, P, A any](lens optics.Lens[S, P], r Reducer[P, A]) Reducer[S, A] {
	return Func[S, A](func(state *S, action A) []domain.Effect {
		return optics.Apply(lens, state, func(part *P) []domain.Effect {
			return r.Apply(part, action)
		})
	})
}

// Prismed scopes r to the case focused by prism. When the state does not
// match, r is not invoked and the state is left untouched.
func Prismed[S, P, A any](prism optics.Prism[S, P], r Reducer[P, A]) Reducer[S, A] {
	return Func[S, A](func(state *S, action A) []domain.Effect {
		effects, _ := optics.ApplyPrism(prism, state, func(part *P) []domain.Effect {
			return r.Apply(part, action)
		})
		return effects
	})
}

// Erase lifts r to accept any action that downcast can narrow to A.
// Other actions are ignored.
func Erase[S, A any](downcast cast.Downcast[domain.Action, A], r Reducer[S, A]) Reducer[S, domain.Action] {
	return Func[S, domain.Action](func(state *S, action domain.Action) []domain.Effect {
		a, ok := downcast.DownCast(action)
		if !ok {
			return nil
		}
		return r.Apply(state, a)
	})
}

// Dynamic is Erase with a runtime type assertion.
func Dynamic[S, A any](r Reducer[S, A]) Reducer[S, domain.Action] {
	return Erase[S, A](cast.Dynamic[A](), r)
}

// ContraMap adapts r to a wider action type by converting every action.
func ContraMap[S, A, B any](f func(B) A, r Reducer[S, A]) Reducer[S, B] {
	return Func[S, B](func(state *S, action B) []domain.Effect {
		return r.Apply(state, f(action))
	})
}

// FilterMap adapts r to actions that f can convert; the rest are ignored.
func FilterMap[S, A, B any](f func(B) (A, bool), r Reducer[S, A]) Reducer[S, B] {
	return Func[S, B](func(state *S, action B) []domain.Effect {
		a, ok := f(action)
		if !ok {
			return nil
		}
		return r.Apply(state, a)
	})
}

// MapEffects transforms every effect r emits, preserving order.
func MapEffects[S, A any](f func(domain.Effect) domain.Effect, r Reducer[S, A]) Reducer[S, A] {
	return Func[S, A](func(state *S, action A) []domain.Effect {
		effects := r.Apply(state, action)
		if len(effects) == 0 {
			return nil
		}
		out := make([]domain.Effect, len(effects))
		for i, e := range effects {
			out[i] = f(e)
		}
		return out
	})
}

// CompactMapEffects transforms the effects r emits and drops those f rejects.
func CompactMapEffects[S, A any](f func(domain.Effect) (domain.Effect, bool), r Reducer[S, A]) Reducer[S, A] {
	return Func[S, A](func(state *S, action A) []domain.Effect {
		effects := r.Apply(state, action)
		out := make([]domain.Effect, 0, len(effects))
		for _, e := range effects {
			if mapped, ok := f(e); ok {
				out = append(out, mapped)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	})
}

// Discriminated routes each action to exactly one of ra or rb as classified
// by d. Actions matching neither case are ignored.
func Discriminated[S, Sum, A, B any](d cast.Discriminator[Sum, A, B], ra Reducer[S, A], rb Reducer[S, B]) Reducer[S, Sum] {
	return Func[S, Sum](func(state *S, action Sum) []domain.Effect {
		a, b, side := d.Classify(action)
		switch side {
		case cast.First:
			return ra.Apply(state, a)
		case cast.Second:
			return rb.Apply(state, b)
		default:
			return nil
		}
	})
}

// Cata routes each action with a closure. split returns the A or B payload
// and which one is set.
func Cata[S, Sum, A, B any](split func(Sum) (A, B, cast.Side), ra Reducer[S, A], rb Reducer[S, B]) Reducer[S, Sum] {
	return Discriminated[S, Sum, A, B](classifyFunc[Sum, A, B](split), ra, rb)
}

type classifyFunc[Sum, A, B any] func(Sum) (A, B, cast.Side)

func (f classifyFunc[Sum, A, B]) Classify(s Sum) (A, B, cast.Side) {
	return f(s)
}
