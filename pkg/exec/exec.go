// Package exec provides execution contexts: places that accept a deferred
// closure and eventually run it.
//
// A Context runs closures handed to one instance in FIFO order unless the
// implementation documents otherwise. Nothing is promised across contexts.
package exec

import (
	"context"
	"fmt"
)

// Context accepts a closure and eventually runs it.
type Context interface {
	Async(fn func())
}

// Acceptor is implemented by contexts that can refuse work, such as a closed Serial.
type Acceptor interface {
	TryAsync(fn func()) error
}

// Func adapts a function to the Context interface.
type Func func(fn func())

// Async calls f.
func (f Func) Async(fn func()) {
	f(fn)
}

// Goroutine runs every closure on a new goroutine. It gives no ordering guarantee.
type Goroutine struct{}

// Async starts fn on a new goroutine.
func (Goroutine) Async(fn func()) {
	go fn()
}

// Sync runs fn on c and waits for it to finish or for ctx to be done.
// It must not be called from a closure already running on c when c is serial.
func Sync(ctx context.Context, c Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}
	if a, ok := c.(Acceptor); ok {
		if err := a.TryAsync(task); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
	} else {
		c.Async(task)
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
