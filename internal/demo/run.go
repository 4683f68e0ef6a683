package demo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/internal/config"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/middleware"
	"github.com/aretw0/weave/pkg/observable"
	"github.com/prometheus/client_golang/prometheus"
)

// Runtime bundles the demo store with the recorder attached to it.
type Runtime struct {
	*weave.Runtime[State]
	History *middleware.History[domain.Action]
}

// Option configures the demo runtime.
type Option func(*options)

type options struct {
	commands []observable.Observable[string]
	layers   []middleware.Middleware[State, domain.Action]
}

// WithCommands bridges a source of text commands, such as a Redis channel, into
// the store. Invalid commands are logged and dropped.
func WithCommands(src observable.Observable[string]) Option {
	return func(o *options) {
		o.commands = append(o.commands, src)
	}
}

// WithLayers adds middleware closest to the reducer.
func WithLayers(ms ...middleware.Middleware[State, domain.Action]) Option {
	return func(o *options) {
		o.layers = append(o.layers, ms...)
	}
}

// New starts the demo store: the standard stack plus a ticker bridged in
// through the observable middleware. Command sources are bridged below it and
// stay subscribed for the store's lifetime.
func New(cfg config.Config, logger *slog.Logger, reg prometheus.Registerer, opts ...Option) (*Runtime, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	history := middleware.NewHistory[domain.Action](cfg.Demo.History)

	extra := []middleware.Middleware[State, domain.Action]{
		middleware.Observe[State, domain.Action, time.Time](
			observable.Ticker(cfg.Demo.Tick),
			func(t time.Time) domain.Action { return Tick{At: t} },
			middleware.WithObserveLogger[domain.Action](logger),
			middleware.WithObserveName[domain.Action]("ticker"),
		),
	}
	for _, src := range o.commands {
		extra = append(extra, middleware.Observe[State, domain.Action, domain.Action](
			commandStream(src, logger),
			func(a domain.Action) domain.Action { return a },
			middleware.OnAction[domain.Action](func(a domain.Action) domain.SubscribeSignal {
				if _, ok := a.(connect); ok {
					return domain.Subscribe
				}
				return 0
			}),
			middleware.OnEffect[domain.Action](func(domain.Effect) domain.SubscribeSignal { return 0 }),
			middleware.WithObserveLogger[domain.Action](logger),
			middleware.WithObserveName[domain.Action]("commands"),
		))
	}
	extra = append(extra, o.layers...)

	wopts := []weave.Option{
		weave.WithLogger(logger),
		weave.WithHistory(history),
		weave.WithNamespace(cfg.Metrics.Namespace),
	}
	if reg != nil {
		wopts = append(wopts, weave.WithRegisterer(reg))
	}
	rt, err := weave.New(Initial(), Reducer(), extra, wopts...)
	if err != nil {
		return nil, err
	}
	if len(o.commands) > 0 {
		rt.Dispatch(connect{})
	}
	return &Runtime{Runtime: rt, History: history}, nil
}

// connect attaches command sources. It is not handled by the reducer.
type connect struct{}

func (connect) Kind() string { return "connect" }

// commandStream parses text commands, logging and dropping invalid ones.
func commandStream(src observable.Observable[string], logger *slog.Logger) observable.Observable[domain.Action] {
	return observable.Filter(src, func(line string) (domain.Action, bool) {
		a, err := ParseCommand(line)
		if err != nil {
			logger.Warn("ignoring command", "line", line, "err", err)
			return nil, false
		}
		return a, true
	})
}

// Run drives the demo workload: concurrent increments, zipped async fetches,
// including one that fails, and a ticker watched until enough ticks arrived.
func Run(ctx context.Context, rt *Runtime, cfg config.Demo) (State, error) {
	rt.Dispatch(Watch{On: true})
	rt.Dispatch(Switch{To: ModeBusy})

	var wg sync.WaitGroup
	per := cfg.Dispatches / cfg.Workers
	rest := cfg.Dispatches % cfg.Workers
	for w := 0; w < cfg.Workers; w++ {
		n := per
		if w < rest {
			n++
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				rt.Dispatch(Increment{By: 1})
			}
		}()
	}
	for id := 1; id <= cfg.Fetches; id++ {
		rt.Dispatch(Fetch{ID: id})
	}
	rt.Dispatch(Fetch{ID: 0, Fail: true})
	wg.Wait()

	done := func(s State) bool {
		return s.Counter.Steps == cfg.Dispatches &&
			len(s.Fetches) == cfg.Fetches &&
			s.Errors == 1 &&
			s.Ticks >= cfg.Ticks
	}
	if err := waitFor(ctx, rt, done); err != nil {
		return rt.State(), err
	}

	rt.Dispatch(Watch{On: false})
	rt.Dispatch(Switch{To: ModeIdle})
	if err := rt.Flush(ctx); err != nil {
		return rt.State(), err
	}
	return rt.State(), nil
}

func waitFor(ctx context.Context, rt *Runtime, cond func(State) bool) error {
	poll := time.NewTicker(5 * time.Millisecond)
	defer poll.Stop()
	for {
		if cond(rt.State()) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("demo did not settle: %w", ctx.Err())
		case <-poll.C:
		}
	}
}
