package store

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/exec"
	"github.com/aretw0/weave/pkg/middleware"
	"github.com/aretw0/weave/pkg/reducer"
)

// Store holds a single state value and the pipeline that mutates it.
type Store[S, A any] struct {
	mu    sync.RWMutex // guards state against snapshot readers
	state S

	dispatch middleware.Dispatch[A]
	reduce   reducer.Reducer[S, A]
	ctx      exec.Context
	owned    *exec.Serial
	delegate Delegate
	logger   *slog.Logger
	closed   atomic.Bool
	ref      *Ref[S, A]

	teardownMu sync.Mutex
	teardown   []func()
}

// New creates a store with initial state and reducer r.
func New[S, A any](initial S, r reducer.Reducer[S, A], opts ...Option[S, A]) *Store[S, A] {
	return NewDependent(initial, reducer.Static(r), opts...)
}

// NewDependent creates a store whose reducer is built from the dependencies
// visible below the middleware stack.
func NewDependent[S, A any](initial S, d reducer.Dependent[S, A], opts ...Option[S, A]) *Store[S, A] {
	cfg := config[S, A]{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store[S, A]{
		state:    initial,
		ctx:      cfg.ctx,
		delegate: cfg.delegate,
		logger:   cfg.logger,
	}
	if s.ctx == nil {
		s.owned = exec.NewSerial(exec.WithSerialLogger(cfg.logger), exec.WithSerialName("store"))
		s.ctx = s.owned
		runtime.AddCleanup(s, func(serial *exec.Serial) { serial.Close() }, s.owned)
	}
	s.ref = &Ref[S, A]{target: weak.Make(s)}

	stack := middleware.Compose(cfg.middleware...)
	s.reduce = reducer.Resolve(d, middleware.Below(stack, cfg.bag))
	s.dispatch = stack.Apply(s.apply, s.ref, cfg.bag)
	return s
}

// apply is the base of the pipeline. It runs the reducer on a working copy and
// commits it after notifying the delegate.
func (s *Store[S, A]) apply(action A) []domain.Effect {
	next := s.state
	effects := s.reduce.Apply(&next, action)
	if s.delegate != nil {
		s.delegate.StoreWillChange()
	}
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	return effects
}

// Dispatch enqueues action on the store's context. After Close it is a no-op.
func (s *Store[S, A]) Dispatch(action A) {
	if s.closed.Load() {
		s.logger.Debug("dispatch after close dropped", "action", domain.Kind(action))
		return
	}
	s.ctx.Async(func() {
		if s.closed.Load() {
			return
		}
		effects := s.dispatch(action)
		if len(effects) > 0 {
			s.logger.Debug("dispatched", "action", domain.Kind(action), "effects", domain.Kinds(effects))
		}
	})
}

// State returns a snapshot of the committed state. The copy is shallow: maps,
// slices and pointers inside S are shared with the store and must be treated
// as read-only.
func (s *Store[S, A]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ref returns a non-owning handle. It does not keep the store alive and turns
// into a no-op once the store is closed or collected.
func (s *Store[S, A]) Ref() *Ref[S, A] {
	return s.ref
}

// Flush waits until every closure enqueued on the store's context before the
// call has run. Work those closures enqueue in turn is not awaited.
func (s *Store[S, A]) Flush(ctx context.Context) error {
	if s.closed.Load() {
		return domain.ErrStoreClosed
	}
	if err := exec.Sync(ctx, s.ctx, func() {}); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Closed reports whether Close has been called.
func (s *Store[S, A]) Closed() bool {
	return s.closed.Load()
}

// OnTeardown registers fn to run when the store is closed. If it already is,
// fn runs immediately.
func (s *Store[S, A]) OnTeardown(fn func()) {
	s.teardownMu.Lock()
	if !s.closed.Load() {
		s.teardown = append(s.teardown, fn)
		s.teardownMu.Unlock()
		return
	}
	s.teardownMu.Unlock()
	fn()
}

// Close tears the store down. Pending dispatches are dropped and later ones
// are ignored. Resources registered by middleware are released, innermost
// layer first. Close is idempotent.
func (s *Store[S, A]) Close() {
	s.teardownMu.Lock()
	if !s.closed.CompareAndSwap(false, true) {
		s.teardownMu.Unlock()
		return
	}
	fns := s.teardown
	s.teardown = nil
	s.teardownMu.Unlock()

	for _, fn := range fns {
		fn()
	}
	if s.owned != nil {
		s.owned.Close()
	}
	s.logger.Debug("store closed")
}

// Ref is a non-owning handle to a Store, handed to middleware.
type Ref[S, A any] struct {
	target weak.Pointer[Store[S, A]]
}

func (r *Ref[S, A]) live() *Store[S, A] {
	s := r.target.Value()
	if s == nil || s.closed.Load() {
		return nil
	}
	return s
}

// Valid reports whether the store is still servicing dispatches.
func (r *Ref[S, A]) Valid() bool {
	return r.live() != nil
}

// Dispatch enqueues action on the store, or does nothing if the store is gone.
func (r *Ref[S, A]) Dispatch(action A) {
	if s := r.live(); s != nil {
		s.Dispatch(action)
	}
}

// State returns the committed state, or false if the store is gone.
func (r *Ref[S, A]) State() (S, bool) {
	if s := r.live(); s != nil {
		return s.State(), true
	}
	var zero S
	return zero, false
}

// OnTeardown registers fn with the store, or runs it if the store is gone.
func (r *Ref[S, A]) OnTeardown(fn func()) {
	if s := r.target.Value(); s != nil {
		s.OnTeardown(fn)
		return
	}
	fn()
}

var (
	_ middleware.Handle[struct{}, domain.Action] = (*Ref[struct{}, domain.Action])(nil)
	_ middleware.Finalizer                       = (*Ref[struct{}, domain.Action])(nil)
)
