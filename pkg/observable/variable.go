package observable

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Variable holds a value and notifies subscribers after every explicit
// mutation. It replaces implicit auto-notifying properties with a scoped
// Mutate call.
//
// Notifications for concurrent mutations may interleave; each observer sees
// the value as of the mutation that triggered its notification.
type Variable[T any] struct {
	mu       sync.Mutex
	value    T
	subs     map[uuid.UUID]*subscription[T]
	order    []uuid.UUID
	onChange func(count int)
}

type subscription[T any] struct {
	observer Observer[T]
	active   atomic.Bool
}

// VariableOption configures a Variable.
type VariableOption[T any] func(*Variable[T])

// OnSubscribersChange registers a hook called with the subscriber count after
// every subscribe and cancel.
func OnSubscribersChange[T any](fn func(count int)) VariableOption[T] {
	return func(v *Variable[T]) {
		v.onChange = fn
	}
}

// NewVariable creates a variable holding initial.
func NewVariable[T any](initial T, opts ...VariableOption[T]) *Variable[T] {
	v := &Variable[T]{
		value: initial,
		subs:  make(map[uuid.UUID]*subscription[T]),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Value returns the current value.
func (v *Variable[T]) Value() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Mutate applies fn to the value and then notifies subscribers.
func (v *Variable[T]) Mutate(fn func(*T)) {
	v.mu.Lock()
	fn(&v.value)
	current := v.value
	targets := v.snapshot()
	v.mu.Unlock()

	for _, s := range targets {
		if s.active.Load() {
			s.observer.Observe(current)
		}
	}
}

// Set replaces the value and notifies subscribers.
func (v *Variable[T]) Set(value T) {
	v.Mutate(func(p *T) { *p = value })
}

// Len returns the number of subscribers.
func (v *Variable[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// Subscribe registers o. The current value is not replayed.
func (v *Variable[T]) Subscribe(o Observer[T]) Cancellable {
	id := uuid.New()
	s := &subscription[T]{observer: o}
	s.active.Store(true)

	v.mu.Lock()
	v.subs[id] = s
	v.order = append(v.order, id)
	count := len(v.subs)
	v.mu.Unlock()
	v.changed(count)

	return Cancel(func() {
		s.active.Store(false)
		v.mu.Lock()
		delete(v.subs, id)
		for i, other := range v.order {
			if other == id {
				v.order = append(v.order[:i], v.order[i+1:]...)
				break
			}
		}
		count := len(v.subs)
		v.mu.Unlock()
		v.changed(count)
	})
}

func (v *Variable[T]) snapshot() []*subscription[T] {
	out := make([]*subscription[T], 0, len(v.order))
	for _, id := range v.order {
		out = append(out, v.subs[id])
	}
	return out
}

func (v *Variable[T]) changed(count int) {
	if v.onChange != nil {
		v.onChange(count)
	}
}
