package observable

import (
	"sync"
	"time"
	"weak"
)

// Map transforms every value emitted by src.
func Map[T, U any](src Observable[T], f func(T) U) Observable[U] {
	return SubscribeFunc[U](func(o Observer[U]) Cancellable {
		return src.Subscribe(ObserverFunc[T](func(v T) {
			o.Observe(f(v))
		}))
	})
}

// Filter transforms values emitted by src and drops those f rejects.
func Filter[T, U any](src Observable[T], f func(T) (U, bool)) Observable[U] {
	return SubscribeFunc[U](func(o Observer[U]) Cancellable {
		return src.Subscribe(ObserverFunc[T](func(v T) {
			if u, ok := f(v); ok {
				o.Observe(u)
			}
		}))
	})
}

// Semantics controls when Scan listens to its source.
type Semantics int

const (
	// WatchWhenObserved listens only while the accumulator has subscribers.
	// Values emitted while nobody is watching are not folded in.
	WatchWhenObserved Semantics = iota
	// WatchAlways listens from creation until the returned handle is cancelled.
	WatchAlways
)

// Scan folds values from src into a variable starting at seed. Cancelling the
// returned handle detaches from src for good.
func Scan[T, U any](src Observable[T], seed U, reduce func(U, T) U, semantics Semantics) (*Variable[U], Cancellable) {
	var (
		mu       sync.Mutex
		upstream Cancellable
		stopped  bool
		acc      *Variable[U]
	)
	fold := ObserverFunc[T](func(v T) {
		acc.Mutate(func(u *U) { *u = reduce(*u, v) })
	})

	if semantics == WatchAlways {
		acc = NewVariable(seed)
		upstream = src.Subscribe(fold)
		return acc, upstream
	}

	acc = NewVariable(seed, OnSubscribersChange[U](func(int) {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		n := acc.Len()
		switch {
		case n > 0 && upstream == nil:
			upstream = src.Subscribe(fold)
		case n == 0 && upstream != nil:
			upstream.Cancel()
			upstream = nil
		}
	}))
	return acc, Cancel(func() {
		mu.Lock()
		defer mu.Unlock()
		stopped = true
		if upstream != nil {
			upstream.Cancel()
			upstream = nil
		}
	})
}

// Ticker emits the current time every interval. Each subscription owns one
// timer goroutine, released on cancel.
func Ticker(interval time.Duration) Observable[time.Time] {
	return SubscribeFunc[time.Time](func(o Observer[time.Time]) Cancellable {
		t := time.NewTicker(interval)
		stop := make(chan struct{})
		go func() {
			defer t.Stop()
			for {
				select {
				case now := <-t.C:
					select {
					case <-stop:
						return
					default:
					}
					o.Observe(now)
				case <-stop:
					return
				}
			}
		}()
		return Cancel(func() { close(stop) })
	})
}

// Bind delivers values from src to target without keeping target alive. Once
// target has been garbage collected the subscription cancels itself on the
// next value.
func Bind[T, O any](src Observable[T], target *O, apply func(*O, T)) Cancellable {
	ref := weak.Make(target)
	var (
		mu     sync.Mutex
		handle Cancellable
		dead   bool
	)
	release := func() {
		mu.Lock()
		defer mu.Unlock()
		dead = true
		if handle != nil {
			handle.Cancel()
		}
	}
	h := src.Subscribe(ObserverFunc[T](func(v T) {
		p := ref.Value()
		if p == nil {
			release()
			return
		}
		apply(p, v)
	}))

	mu.Lock()
	handle = h
	if dead {
		h.Cancel()
	}
	mu.Unlock()
	return Cancel(release)
}
