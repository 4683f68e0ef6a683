package store

import (
	"log/slog"

	"github.com/aretw0/weave/pkg/deps"
	"github.com/aretw0/weave/pkg/exec"
	"github.com/aretw0/weave/pkg/middleware"
)

// Delegate is told that the state is about to change. It is called on the
// store's context after the reducer ran and before the new state is committed,
// so State still reports the previous value.
type Delegate interface {
	StoreWillChange()
}

// DelegateFunc adapts a function to the Delegate interface.
type DelegateFunc func()

// StoreWillChange calls f.
func (f DelegateFunc) StoreWillChange() {
	f()
}

type config[S, A any] struct {
	middleware []middleware.Middleware[S, A]
	delegate   Delegate
	ctx        exec.Context
	bag        deps.Bag
	logger     *slog.Logger
}

// Option configures a Store.
type Option[S, A any] func(*config[S, A])

// WithMiddleware appends layers to the pipeline. The first layer is outermost.
func WithMiddleware[S, A any](ms ...middleware.Middleware[S, A]) Option[S, A] {
	return func(c *config[S, A]) {
		c.middleware = append(c.middleware, ms...)
	}
}

// WithDelegate sets the change delegate.
func WithDelegate[S, A any](d Delegate) Option[S, A] {
	return func(c *config[S, A]) {
		c.delegate = d
	}
}

// WithContext runs dispatches on ctx instead of a context owned by the store.
// ctx must run closures one at a time in FIFO order. The store does not close it.
func WithContext[S, A any](ctx exec.Context) Option[S, A] {
	return func(c *config[S, A]) {
		c.ctx = ctx
	}
}

// WithDependencies sets the bag handed to the outermost middleware.
func WithDependencies[S, A any](bag deps.Bag) Option[S, A] {
	return func(c *config[S, A]) {
		c.bag = bag
	}
}

// WithLogger configures a logger for the store.
func WithLogger[S, A any](logger *slog.Logger) Option[S, A] {
	return func(c *config[S, A]) {
		if logger != nil {
			c.logger = logger
		}
	}
}
