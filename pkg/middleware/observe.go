package middleware

import (
	"log/slog"
	"sync"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/deps"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/observable"
)

type observeConfig[A any] struct {
	action func(A) domain.SubscribeSignal
	effect func(domain.Effect) domain.SubscribeSignal
	logger *slog.Logger
	name   string
}

// ObserveOption configures Observe.
type ObserveOption[A any] func(*observeConfig[A])

// OnAction sets how dispatched actions are classified as subscribe signals.
// By default an action that is a domain.SubscribeSignal counts as one.
func OnAction[A any](classify func(A) domain.SubscribeSignal) ObserveOption[A] {
	return func(c *observeConfig[A]) {
		c.action = classify
	}
}

// OnEffect sets how produced effects are classified as subscribe signals.
// By default an effect that is a domain.SubscribeSignal counts as one.
func OnEffect[A any](classify func(domain.Effect) domain.SubscribeSignal) ObserveOption[A] {
	return func(c *observeConfig[A]) {
		c.effect = classify
	}
}

// WithObserveLogger reports subscription transitions.
func WithObserveLogger[A any](logger *slog.Logger) ObserveOption[A] {
	return func(c *observeConfig[A]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserveName labels the source in logs.
func WithObserveName[A any](name string) ObserveOption[A] {
	return func(c *observeConfig[A]) {
		c.name = name
	}
}

func signalOf(v any) domain.SubscribeSignal {
	s, _ := v.(domain.SubscribeSignal)
	return s
}

// Observe bridges an external source into the store. It counts subscribe and
// unsubscribe signals seen in dispatched actions and produced effects. The
// first subscribe attaches to src; the matching last unsubscribe cancels.
// Repeated subscribes only count, and unsubscribes below zero are ignored.
// Values from src are converted with onValue and dispatched through the store.
// When the store is torn down the subscription is cancelled and later
// subscribe signals are ignored.
func Observe[S, A, T any](src observable.Observable[T], onValue func(T) A, opts ...ObserveOption[A]) Middleware[S, A] {
	cfg := observeConfig[A]{
		action: func(a A) domain.SubscribeSignal { return signalOf(a) },
		effect: func(e domain.Effect) domain.SubscribeSignal { return signalOf(e) },
		logger: logging.NewNop(),
		name:   "observable",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return Func[S, A](func(next Dispatch[A], store Handle[S, A], _ deps.Bag) Dispatch[A] {
		b := &bridge[S, A, T]{cfg: cfg, src: src, onValue: onValue, store: store}
		OnTeardown(store, b.release)
		return func(action A) []domain.Effect {
			b.signal(cfg.action(action))
			effects := next(action)
			for _, e := range effects {
				b.signal(cfg.effect(e))
			}
			return effects
		}
	})
}

// bridge is driven by serialized dispatches; mu orders them against release.
type bridge[S, A, T any] struct {
	cfg     observeConfig[A]
	src     observable.Observable[T]
	onValue func(T) A
	store   Handle[S, A]

	mu       sync.Mutex
	refs     int
	sub      observable.Cancellable
	released bool
}

func (b *bridge[S, A, T]) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
	b.refs = 0
	if b.sub != nil {
		b.sub.Cancel()
		b.sub = nil
		b.cfg.logger.Debug("released", "source", b.cfg.name)
	}
}

func (b *bridge[S, A, T]) signal(s domain.SubscribeSignal) {
	if s != domain.Subscribe && s != domain.Unsubscribe {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}
	switch s {
	case domain.Subscribe:
		b.refs++
		if b.refs == 1 {
			b.sub = b.src.Subscribe(observable.ObserverFunc[T](func(v T) {
				b.store.Dispatch(b.onValue(v))
			}))
			b.cfg.logger.Debug("subscribed", "source", b.cfg.name)
		}
	case domain.Unsubscribe:
		if b.refs == 0 {
			b.cfg.logger.Debug("unsubscribe without subscriber", "source", b.cfg.name)
			return
		}
		b.refs--
		if b.refs == 0 && b.sub != nil {
			b.sub.Cancel()
			b.sub = nil
			b.cfg.logger.Debug("unsubscribed", "source", b.cfg.name)
		}
	}
}
