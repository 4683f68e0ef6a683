package optics

// Prism is a partial focus from a whole W onto a part P.
type Prism[W, P any] struct {
	modify  func(w *W, change func(*P)) bool
	preview func(W) (P, bool)
}

// PrismFunc builds a prism from its modify function.
// modify reports whether w matched; it must call change at most once,
// and only when it returns true.
func PrismFunc[W, P any](modify func(w *W, change func(*P)) bool) Prism[W, P] {
	return Prism[W, P]{modify: modify}
}

// NewPrism builds a prism from a partial getter and a setter used after a
// successful match.
func NewPrism[W, P any](tryGet func(W) (P, bool), put func(*W, P)) Prism[W, P] {
	return Prism[W, P]{
		modify: func(w *W, change func(*P)) bool {
			p, ok := tryGet(*w)
			if !ok {
				return false
			}
			change(&p)
			put(w, p)
			return true
		},
		preview: tryGet,
	}
}

// Case focuses on one variant of a tagged union. extract returns the payload
// when w is that variant; embed rebuilds the variant from a payload.
func Case[W, P any](extract func(W) (P, bool), embed func(P) W) Prism[W, P] {
	return NewPrism(extract, func(w *W, p P) { *w = embed(p) })
}

// Modify runs change when w matches and reports whether it did.
func (p Prism[W, P]) Modify(w *W, change func(*P)) bool {
	return p.modify(w, change)
}

// TryGet returns a copy of the focused part when w matches.
func (p Prism[W, P]) TryGet(w W) (P, bool) {
	if p.preview != nil {
		return p.preview(w)
	}
	var out P
	ok := p.modify(&w, func(v *P) { out = *v })
	return out, ok
}

// Put replaces the focused part when w matches and reports whether it did.
func (p Prism[W, P]) Put(w *W, v P) bool {
	return p.modify(w, func(part *P) { *part = v })
}

// ApplyPrism runs change against the focus of p. The boolean is false,
// and change is not called, when w does not match.
func ApplyPrism[W, P, T any](p Prism[W, P], w *W, change func(*P) T) (T, bool) {
	var out T
	ok := p.modify(w, func(v *P) { out = change(v) })
	return out, ok
}

// ComposePrism focuses through outer, then inner. It matches only when both do.
func ComposePrism[A, B, C any](outer Prism[A, B], inner Prism[B, C]) Prism[A, C] {
	return Prism[A, C]{
		modify: func(a *A, change func(*C)) bool {
			matched := false
			if !outer.modify(a, func(b *B) {
				matched = inner.modify(b, change)
			}) {
				return false
			}
			return matched
		},
		preview: func(a A) (C, bool) {
			b, ok := outer.TryGet(a)
			if !ok {
				var zero C
				return zero, false
			}
			return inner.TryGet(b)
		},
	}
}

// LensPrism focuses through a total lens, then a partial prism.
func LensPrism[A, B, C any](outer Lens[A, B], inner Prism[B, C]) Prism[A, C] {
	return ComposePrism(outer.AsPrism(), inner)
}

// PrismLens focuses through a partial prism, then a total lens.
func PrismLens[A, B, C any](outer Prism[A, B], inner Lens[B, C]) Prism[A, C] {
	return ComposePrism(outer, inner.AsPrism())
}

// Deref focuses on the pointee of a non-nil pointer.
func Deref[T any]() Prism[*T, T] {
	return Prism[*T, T]{
		modify: func(p **T, change func(*T)) bool {
			if *p == nil {
				return false
			}
			change(*p)
			return true
		},
		preview: func(p *T) (T, bool) {
			if p == nil {
				var zero T
				return zero, false
			}
			return *p, true
		},
	}
}

// At focuses on element i of a slice when i is in range.
func At[E any](i int) Prism[[]E, E] {
	return PrismFunc(func(s *[]E, change func(*E)) bool {
		if i < 0 || i >= len(*s) {
			return false
		}
		change(&(*s)[i])
		return true
	})
}

// Entry focuses on the entry k of a map when it is present.
func Entry[K comparable, V any](k K) Prism[map[K]V, V] {
	return NewPrism(
		func(m map[K]V) (V, bool) {
			v, ok := m[k]
			return v, ok
		},
		func(m *map[K]V, v V) {
			(*m)[k] = v
		},
	)
}
