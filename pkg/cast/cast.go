package cast

import "github.com/aretw0/weave/pkg/result"

// Downcast narrows a Super value to Sub, reporting false when it does not fit.
type Downcast[Super, Sub any] interface {
	DownCast(Super) (Sub, bool)
}

// Embedding is a capability pair: Cast always succeeds, DownCast may fail.
type Embedding[Sub, Super any] interface {
	Downcast[Super, Sub]
	Cast(Sub) Super
}

// DowncastFunc adapts a function to the Downcast interface.
type DowncastFunc[Super, Sub any] func(Super) (Sub, bool)

// DownCast calls f.
func (f DowncastFunc[Super, Sub]) DownCast(v Super) (Sub, bool) {
	return f(v)
}

// Embed is an Embedding built from two functions.
type Embed[Sub, Super any] struct {
	up   func(Sub) Super
	down func(Super) (Sub, bool)
}

// New builds an embedding. The caller is responsible for the round-trip law.
func New[Sub, Super any](up func(Sub) Super, down func(Super) (Sub, bool)) Embed[Sub, Super] {
	return Embed[Sub, Super]{up: up, down: down}
}

// Cast widens v.
func (e Embed[Sub, Super]) Cast(v Sub) Super {
	return e.up(v)
}

// DownCast narrows v.
func (e Embed[Sub, Super]) DownCast(v Super) (Sub, bool) {
	return e.down(v)
}

// Identity embeds T into itself.
func Identity[T any]() Embed[T, T] {
	return New(
		func(v T) T { return v },
		func(v T) (T, bool) { return v, true },
	)
}

// Optional embeds T into *T. A nil pointer does not downcast.
func Optional[T any]() Embed[T, *T] {
	return New(
		func(v T) *T { return &v },
		func(p *T) (T, bool) {
			if p == nil {
				var zero T
				return zero, false
			}
			return *p, true
		},
	)
}

// Result embeds T into a successful result.Result[T]. Failures do not downcast.
func Result[T any]() Embed[T, result.Result[T]] {
	return New(result.Ok[T], result.Result[T].Value)
}

// Dynamic embeds T into the dynamic supertype any.
// DownCast succeeds iff the dynamic value holds a T.
func Dynamic[T any]() Embed[T, any] {
	return New(
		func(v T) any { return v },
		func(v any) (T, bool) {
			t, ok := v.(T)
			return t, ok
		},
	)
}

// Enum embeds a raw-value-backed enumeration into its raw type.
// Only the listed cases downcast; raw must be injective over them.
func Enum[E, R comparable](raw func(E) R, cases ...E) Embed[E, R] {
	index := make(map[R]E, len(cases))
	for _, c := range cases {
		index[raw(c)] = c
	}
	return New(raw, func(r R) (E, bool) {
		e, ok := index[r]
		return e, ok
	})
}

// Compose chains two embeddings: A into B into C.
// DownCast narrows through outer first and short-circuits when it fails.
func Compose[A, B, C any](inner Embedding[A, B], outer Embedding[B, C]) Embed[A, C] {
	return New(
		func(a A) C { return outer.Cast(inner.Cast(a)) },
		func(c C) (A, bool) {
			b, ok := outer.DownCast(c)
			if !ok {
				var zero A
				return zero, false
			}
			return inner.DownCast(b)
		},
	)
}

// WithFallback tries primary, then fallback.
func WithFallback[Super, Sub any](primary, fallback Downcast[Super, Sub]) DowncastFunc[Super, Sub] {
	return FirstOf(primary, fallback)
}

// FirstOf tries each downcast in order and returns the first match.
func FirstOf[Super, Sub any](casts ...Downcast[Super, Sub]) DowncastFunc[Super, Sub] {
	return func(v Super) (Sub, bool) {
		for _, c := range casts {
			if sub, ok := c.DownCast(v); ok {
				return sub, true
			}
		}
		var zero Sub
		return zero, false
	}
}
