package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/weave/pkg/async"
	"github.com/aretw0/weave/pkg/deps"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/exec"
	"github.com/aretw0/weave/pkg/middleware"
	"github.com/aretw0/weave/pkg/observable"
	"github.com/aretw0/weave/pkg/reducer"
	"github.com/aretw0/weave/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Counter struct {
	Count  int
	Errors int
	Trail  []string
}

type Increment struct{}

type Fetch struct{ Fail bool }

type Fetched struct{ N int }

var errFetch = errors.New("fetch failed")

func counter() reducer.Reducer[Counter, domain.Action] {
	return reducer.Sequence(
		reducer.Dynamic[Counter, Increment](reducer.Pure(func(c *Counter, _ Increment) { c.Count++ })),
		reducer.Dynamic[Counter, Fetch](reducer.Func[Counter, Fetch](func(c *Counter, f Fetch) []domain.Effect {
			c.Trail = append(c.Trail, "fetch")
			if f.Fail {
				return []domain.Effect{async.Fail[Fetched](errFetch)}
			}
			return []domain.Effect{async.From(func() (Fetched, error) { return Fetched{N: 5}, nil })}
		})),
		reducer.Dynamic[Counter, Fetched](reducer.Pure(func(c *Counter, f Fetched) {
			c.Count += f.N
			c.Trail = append(c.Trail, "fetched")
		})),
		reducer.Dynamic[Counter, domain.FailedAction](reducer.Pure(func(c *Counter, f domain.FailedAction) {
			if domain.FailedFor[Fetched](f) {
				c.Errors++
			}
		})),
	)
}

func flush(t *testing.T, s *store.Store[Counter, domain.Action]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))
}

func TestStore_ConcurrentDispatchIsSerialized(t *testing.T) {
	s := store.New(Counter{}, counter())
	defer s.Close()

	const n = 1000
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(Increment{})
		}()
	}
	wg.Wait()
	flush(t, s)
	assert.Equal(t, n, s.State().Count)
}

func TestStore_DelegateSeesPreviousState(t *testing.T) {
	var s *store.Store[Counter, domain.Action]
	var before []int
	s = store.New(Counter{}, counter(), store.WithDelegate[Counter, domain.Action](store.DelegateFunc(func() {
		before = append(before, s.State().Count)
	})))
	defer s.Close()

	s.Dispatch(Increment{})
	s.Dispatch(Increment{})
	flush(t, s)
	assert.Equal(t, []int{0, 1}, before)
	assert.Equal(t, 2, s.State().Count)
}

func TestStore_Teardown(t *testing.T) {
	s := store.New(Counter{}, counter())
	ref := s.Ref()
	assert.True(t, ref.Valid())

	s.Dispatch(Increment{})
	flush(t, s)
	s.Close()
	s.Close()

	assert.True(t, s.Closed())
	assert.False(t, ref.Valid())
	assert.NotPanics(t, func() {
		s.Dispatch(Increment{})
		ref.Dispatch(Increment{})
	})
	_, ok := ref.State()
	assert.False(t, ok)
	assert.ErrorIs(t, s.Flush(context.Background()), domain.ErrStoreClosed)
	assert.Equal(t, 1, s.State().Count)
}

func TestStore_HandleDispatchIsNotReentrant(t *testing.T) {
	var trail []string
	echo := middleware.Func[Counter, domain.Action](func(next middleware.Dispatch[domain.Action], h middleware.Handle[Counter, domain.Action], _ deps.Bag) middleware.Dispatch[domain.Action] {
		return func(a domain.Action) []domain.Effect {
			trail = append(trail, "pre:"+domain.Kind(a))
			if a == "ping" {
				h.Dispatch("pong")
			}
			effects := next(a)
			trail = append(trail, "post:"+domain.Kind(a))
			return effects
		}
	})
	kinds := reducer.Pure(func(c *Counter, a domain.Action) { c.Trail = append(c.Trail, a.(string)) })

	var ctx exec.Manual
	s := store.New[Counter, domain.Action](Counter{}, kinds,
		store.WithContext[Counter, domain.Action](&ctx),
		store.WithMiddleware[Counter, domain.Action](echo),
	)
	defer s.Close()

	s.Dispatch("ping")
	ctx.Drain()
	assert.Equal(t, []string{"ping", "pong"}, s.State().Trail)
	assert.Equal(t, []string{"pre:string", "post:string", "pre:string", "post:string"}, trail)
}

func TestStore_AsyncRoundTrip(t *testing.T) {
	asyncCtx := exec.NewSerial()
	defer asyncCtx.Close()

	history := middleware.NewHistory[domain.Action](0)
	s := store.New(Counter{}, counter(),
		store.WithMiddleware(
			middleware.Logging[Counter, domain.Action](history),
			middleware.Schedule[Counter](asyncCtx),
		),
	)
	defer s.Close()

	s.Dispatch(Fetch{})
	s.Dispatch(Fetch{Fail: true})

	require.Eventually(t, func() bool {
		st := s.State()
		return st.Count == 5 && st.Errors == 1
	}, 2*time.Second, 5*time.Millisecond)
	flush(t, s)

	actions := history.Actions()
	require.Len(t, actions, 4)
	assert.Equal(t, Fetch{}, actions[0])
	assert.Equal(t, Fetch{Fail: true}, actions[1])
	assert.Contains(t, actions[2:], domain.Action(Fetched{N: 5}))
}

var stepKey = deps.NewKey[int]("step")

func TestStore_DependentReducerSeesInjectedValues(t *testing.T) {
	stepping := reducer.Uses(stepKey, 1, func(step int) reducer.Reducer[Counter, domain.Action] {
		return reducer.Dynamic[Counter, Increment](reducer.Pure(func(c *Counter, _ Increment) { c.Count += step }))
	})

	var ctx exec.Manual
	s := store.NewDependent(Counter{}, stepping,
		store.WithContext[Counter, domain.Action](&ctx),
		store.WithDependencies[Counter, domain.Action](deps.With(deps.Bag{}, stepKey, 2)),
		store.WithMiddleware(middleware.Inject[Counter, domain.Action](stepKey, 10)),
	)
	defer s.Close()

	s.Dispatch(Increment{})
	ctx.Drain()
	assert.Equal(t, 10, s.State().Count)
}

func TestStore_ReducerPanicLeavesStateUncommitted(t *testing.T) {
	boom := reducer.Dynamic[Counter, Increment](reducer.Pure(func(c *Counter, _ Increment) {
		c.Count = 99
		panic("reducer bug")
	}))
	s := store.New(Counter{}, reducer.Sequence(boom, counter()))
	defer s.Close()

	s.Dispatch(Increment{})
	s.Dispatch(Fetched{N: 1})
	flush(t, s)
	assert.Equal(t, 1, s.State().Count)
}

// trackedSource counts live subscriptions.
type trackedSource struct {
	mu         sync.Mutex
	subscribed int
	cancelled  int
}

func (s *trackedSource) Subscribe(observable.Observer[int]) observable.Cancellable {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribed++
	return observable.Cancel(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.cancelled++
	})
}

func (s *trackedSource) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribed, s.cancelled
}

func TestStore_CloseReleasesObservedSources(t *testing.T) {
	src := &trackedSource{}
	s := store.New(Counter{}, counter(), store.WithMiddleware[Counter, domain.Action](
		middleware.Observe[Counter, domain.Action, int](src, func(int) domain.Action { return Increment{} }),
	))

	s.Dispatch(domain.Subscribe)
	flush(t, s)
	subs, cancels := src.counts()
	require.Equal(t, 1, subs)
	require.Zero(t, cancels)

	s.Close()
	subs, cancels = src.counts()
	assert.Equal(t, 1, subs)
	assert.Equal(t, 1, cancels, "subscription must not outlive the store")

	s.Close()
	_, cancels = src.counts()
	assert.Equal(t, 1, cancels)
}

func TestStore_OnTeardownAfterClose(t *testing.T) {
	s := store.New(Counter{}, counter())
	s.Close()

	ran := false
	s.Ref().OnTeardown(func() { ran = true })
	assert.True(t, ran)
}
