package http

import (
	"log/slog"

	"github.com/aretw0/weave/pkg/deps"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/middleware"
	"github.com/aretw0/weave/pkg/observable"
)

// Stream mirrors committed store states to any number of listeners.
type Stream[S any] struct {
	state  *observable.Variable[S]
	logger *slog.Logger
}

// NewStream creates a stream holding initial until the first dispatch.
func NewStream[S any](initial S, logger *slog.Logger) *Stream[S] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream[S]{state: observable.NewVariable(initial), logger: logger}
}

// Middleware publishes the committed state after every dispatch. It must sit
// below any layer that rewrites actions so it observes the reducer's result.
func (s *Stream[S]) Middleware() middleware.Middleware[S, domain.Action] {
	return middleware.Func[S, domain.Action](func(next middleware.Dispatch[domain.Action], store middleware.Handle[S, domain.Action], _ deps.Bag) middleware.Dispatch[domain.Action] {
		return func(action domain.Action) []domain.Effect {
			effects := next(action)
			if st, ok := store.State(); ok {
				s.state.Set(st)
			}
			return effects
		}
	})
}

// Current returns the last published state.
func (s *Stream[S]) Current() S {
	return s.state.Value()
}

// Listeners returns the number of active subscriptions.
func (s *Stream[S]) Listeners() int {
	return s.state.Len()
}

// Subscribe returns a buffered channel of published states. States are
// dropped for a listener whose buffer is full. The returned function cancels
// the subscription; the channel is never closed.
func (s *Stream[S]) Subscribe(buffer int) (<-chan S, func()) {
	ch := make(chan S, buffer)
	c := s.state.Subscribe(observable.ObserverFunc[S](func(st S) {
		select {
		case ch <- st:
		default:
			s.logger.Warn("SSE: Client buffer full, dropping state")
		}
	}))
	return ch, c.Cancel
}
