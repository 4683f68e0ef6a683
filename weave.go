package weave

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/deps"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/exec"
	"github.com/aretw0/weave/pkg/middleware"
	"github.com/aretw0/weave/pkg/reducer"
	"github.com/aretw0/weave/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
)

type settings struct {
	logger     *slog.Logger
	logLevel   slog.Level
	registerer prometheus.Registerer
	namespace  string
	scheduler  exec.Context
	bag        deps.Bag
	history    *middleware.History[domain.Action]
	delegate   store.Delegate
}

// Option defines a functional option for configuring the standard stack.
type Option func(*settings)

// WithLogger sets the logger used by the store and the logging layer.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLogLevel sets the level at which every dispatch is logged. Default is debug.
func WithLogLevel(level slog.Level) Option {
	return func(s *settings) {
		s.logLevel = level
	}
}

// WithRegisterer enables the metrics layer, registering its collectors with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *settings) {
		s.registerer = reg
	}
}

// WithNamespace sets the metrics namespace. Default is "weave".
func WithNamespace(ns string) Option {
	return func(s *settings) {
		s.namespace = ns
	}
}

// WithScheduler runs async effects on ctx instead of a context owned by the runtime.
func WithScheduler(ctx exec.Context) Option {
	return func(s *settings) {
		s.scheduler = ctx
	}
}

// WithDependencies sets the dependency bag seen by the whole pipeline.
func WithDependencies(bag deps.Bag) Option {
	return func(s *settings) {
		s.bag = bag
	}
}

// WithHistory records every dispatch into h.
func WithHistory(h *middleware.History[domain.Action]) Option {
	return func(s *settings) {
		s.history = h
	}
}

// WithDelegate sets the store's change delegate.
func WithDelegate(d store.Delegate) Option {
	return func(s *settings) {
		s.delegate = d
	}
}

func resolve(opts []Option) settings {
	s := settings{
		logger:    logging.NewNop(),
		logLevel:  slog.LevelDebug,
		namespace: "weave",
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Stack assembles the standard middleware, outermost first: structured
// logging, history (when set), metrics (when a registerer is set) and async
// scheduling on ctx.
func Stack[S any](ctx exec.Context, opts ...Option) (middleware.Middleware[S, domain.Action], error) {
	s := resolve(opts)
	return stack[S](ctx, s)
}

func stack[S any](ctx exec.Context, s settings) (middleware.Middleware[S, domain.Action], error) {
	layers := []middleware.Middleware[S, domain.Action]{
		middleware.Logging[S](middleware.SlogLogger[domain.Action](s.logger, s.logLevel)),
	}
	if s.history != nil {
		layers = append(layers, middleware.Logging[S, domain.Action](s.history))
	}
	if s.registerer != nil {
		c, err := middleware.NewCollectors(s.registerer, middleware.WithNamespace(s.namespace))
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		layers = append(layers, middleware.Metrics[S, domain.Action](c))
	}
	layers = append(layers, middleware.Schedule[S](ctx))
	return middleware.Compose(layers...), nil
}

// Runtime is a store running the standard stack. Close releases the store and
// the async scheduler when the runtime owns it.
type Runtime[S any] struct {
	*store.Store[S, domain.Action]
	scheduler *exec.Serial
}

// Close tears down the store, then the scheduler it owns.
func (r *Runtime[S]) Close() {
	r.Store.Close()
	if r.scheduler != nil {
		r.scheduler.Close()
	}
}

// New creates a store over dynamically typed actions with the standard stack.
// extra layers run below the standard ones, closest to the reducer.
func New[S any](initial S, r reducer.Reducer[S, domain.Action], extra []middleware.Middleware[S, domain.Action], opts ...Option) (*Runtime[S], error) {
	s := resolve(opts)

	rt := &Runtime[S]{}
	ctx := s.scheduler
	if ctx == nil {
		rt.scheduler = exec.NewSerial(exec.WithSerialLogger(s.logger), exec.WithSerialName("async"))
		ctx = rt.scheduler
	}

	std, err := stack[S](ctx, s)
	if err != nil {
		if rt.scheduler != nil {
			rt.scheduler.Close()
		}
		return nil, err
	}

	storeOpts := []store.Option[S, domain.Action]{
		store.WithMiddleware(std),
		store.WithMiddleware(extra...),
		store.WithLogger[S, domain.Action](s.logger),
		store.WithDependencies[S, domain.Action](s.bag),
	}
	if s.delegate != nil {
		storeOpts = append(storeOpts, store.WithDelegate[S, domain.Action](s.delegate))
	}
	rt.Store = store.New(initial, r, storeOpts...)
	return rt, nil
}
