// Package deps provides the dependency bag: a type-keyed, value-semantic container
// of ambient configuration and services handed to middleware and dependent reducers.
//
// A Bag is never mutated in place. With and Without return a new Bag, so a layer can
// overlay values for the layers below it without leaking them to the layers above.
package deps

import (
	"fmt"

	"github.com/aretw0/weave/pkg/optics"
)

// Key identifies a dependency of type T. Keys compare by identity, so each
// dependency is declared once as a package-level variable:
//
//	var ClockKey = deps.NewKey[Clock]("clock")
type Key[T any] struct {
	name string
}

// NewKey declares a new dependency key. name is used only for display.
func NewKey[T any](name string) *Key[T] {
	return &Key[T]{name: name}
}

func (k *Key[T]) String() string {
	var zero T
	return fmt.Sprintf("%s(%T)", k.name, any(&zero))
}

// Bag is an immutable set of dependencies. The zero value is empty and ready to use.
type Bag struct {
	values map[any]any
}

// Lookup returns the value stored under k. Absent keys resolve to (zero, false).
func Lookup[T any](b Bag, k *Key[T]) (T, bool) {
	v, ok := b.values[k]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// LookupOr returns the value stored under k, or def when it is absent.
func LookupOr[T any](b Bag, k *Key[T], def T) T {
	if v, ok := Lookup(b, k); ok {
		return v
	}
	return def
}

// With returns a copy of b with k bound to v.
func With[T any](b Bag, k *Key[T], v T) Bag {
	out := b.clone(1)
	out.values[k] = v
	return out
}

// Without returns a copy of b with k removed.
func Without[T any](b Bag, k *Key[T]) Bag {
	if _, ok := b.values[k]; !ok {
		return b
	}
	out := b.clone(0)
	delete(out.values, k)
	return out
}

// Has reports whether k is bound in b.
func Has[T any](b Bag, k *Key[T]) bool {
	_, ok := b.values[k]
	return ok
}

// Len returns the number of bound keys.
func (b Bag) Len() int {
	return len(b.values)
}

func (b Bag) clone(extra int) Bag {
	values := make(map[any]any, len(b.values)+extra)
	for k, v := range b.values {
		values[k] = v
	}
	return Bag{values: values}
}

// Entry focuses on the value bound to k. Writes through the prism replace the
// bag with a copy, so other holders of the original bag are unaffected.
func Entry[T any](k *Key[T]) optics.Prism[Bag, T] {
	return optics.NewPrism(
		func(b Bag) (T, bool) { return Lookup(b, k) },
		func(b *Bag, v T) { *b = With(*b, k, v) },
	)
}
