package optics

// Lens is a total focus from a whole W onto a part P.
type Lens[W, P any] struct {
	modify func(w *W, change func(*P))
	view   func(W) P
}

// LensFunc builds a lens from its modify function.
// modify must call change exactly once and write the part back into w.
func LensFunc[W, P any](modify func(w *W, change func(*P))) Lens[W, P] {
	return Lens[W, P]{modify: modify}
}

// Focus builds a lens from a function returning the address of the part.
// The change function mutates the whole in place.
func Focus[W, P any](field func(*W) *P) Lens[W, P] {
	return Lens[W, P]{
		modify: func(w *W, change func(*P)) {
			change(field(w))
		},
		view: func(w W) P {
			return *field(&w)
		},
	}
}

// NewLens builds a lens from a getter and a setter. The part is copied out,
// changed, and written back with set.
func NewLens[W, P any](get func(W) P, set func(*W, P)) Lens[W, P] {
	return Lens[W, P]{
		modify: func(w *W, change func(*P)) {
			p := get(*w)
			change(&p)
			set(w, p)
		},
		view: get,
	}
}

// Identity focuses on the whole itself.
func Identity[W any]() Lens[W, W] {
	return Lens[W, W]{
		modify: func(w *W, change func(*W)) {
			change(w)
		},
		view: func(w W) W { return w },
	}
}

// Modify runs change against the focused part of w.
func (l Lens[W, P]) Modify(w *W, change func(*P)) {
	l.modify(w, change)
}

// Get returns a copy of the focused part.
func (l Lens[W, P]) Get(w W) P {
	if l.view != nil {
		return l.view(w)
	}
	var out P
	l.modify(&w, func(p *P) { out = *p })
	return out
}

// Set replaces the focused part of w.
func (l Lens[W, P]) Set(w *W, v P) {
	l.modify(w, func(p *P) { *p = v })
}

// AsPrism views the lens as a prism that always matches.
func (l Lens[W, P]) AsPrism() Prism[W, P] {
	return Prism[W, P]{
		modify: func(w *W, change func(*P)) bool {
			l.modify(w, change)
			return true
		},
		preview: func(w W) (P, bool) {
			return l.Get(w), true
		},
	}
}

// Apply runs change against the focus of l and returns its result.
func Apply[W, P, T any](l Lens[W, P], w *W, change func(*P) T) T {
	var out T
	l.modify(w, func(p *P) { out = change(p) })
	return out
}

// Compose focuses through outer, then inner.
func Compose[A, B, C any](outer Lens[A, B], inner Lens[B, C]) Lens[A, C] {
	return Lens[A, C]{
		modify: func(a *A, change func(*C)) {
			outer.modify(a, func(b *B) {
				inner.modify(b, change)
			})
		},
		view: func(a A) C {
			return inner.Get(outer.Get(a))
		},
	}
}

// Key focuses on the entry k of a map, reading def when the key is absent.
// Writing always stores the entry; a nil map is allocated on first write.
func Key[K comparable, V any](k K, def V) Lens[map[K]V, V] {
	return NewLens(
		func(m map[K]V) V {
			if v, ok := m[k]; ok {
				return v
			}
			return def
		},
		func(m *map[K]V, v V) {
			if *m == nil {
				*m = make(map[K]V)
			}
			(*m)[k] = v
		},
	)
}

// Pair holds the two parts focused by Both.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Both focuses on two parts of the same whole at once.
// The parts are written back first, then second; when the two lenses
// overlap, second's write wins.
func Both[W, A, B any](first Lens[W, A], second Lens[W, B]) Lens[W, Pair[A, B]] {
	return NewLens(
		func(w W) Pair[A, B] {
			return Pair[A, B]{First: first.Get(w), Second: second.Get(w)}
		},
		func(w *W, p Pair[A, B]) {
			first.Set(w, p.First)
			second.Set(w, p.Second)
		},
	)
}
