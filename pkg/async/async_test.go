package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/weave/pkg/async"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/exec"
	"github.com/aretw0/weave/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errFirst  = errors.New("first")
	errSecond = errors.New("second")
)

// recorder collects completions delivered on a serial context.
type recorder[T any] struct {
	calls   atomic.Int32
	results chan result.Result[T]
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{results: make(chan result.Result[T], 8)}
}

func (r *recorder[T]) done(res result.Result[T]) {
	r.calls.Add(1)
	r.results <- res
}

func (r *recorder[T]) wait(t *testing.T) result.Result[T] {
	t.Helper()
	select {
	case res := <-r.results:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("action did not complete")
		return result.Result[T]{}
	}
}

func serial(t *testing.T) *exec.Serial {
	s := exec.NewSerial()
	t.Cleanup(s.Close)
	return s
}

func TestSchedule_NothingRunsUntilScheduled(t *testing.T) {
	ran := false
	a := async.New(func(_ exec.Context, done async.Completion[int]) {
		ran = true
		done(result.Ok(1))
	})
	mapped := async.Map(a, func(v int) int { return v * 2 })
	assert.False(t, ran)

	var m exec.Manual
	var got result.Result[int]
	mapped.Schedule(&m, func(r result.Result[int]) { got = r })
	assert.False(t, ran, "schedule must defer to the context")

	m.Drain()
	assert.True(t, ran)
	v, err := got.Get()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestSchedule_ExactlyOnce(t *testing.T) {
	var m exec.Manual
	var resume async.Completion[int]
	a := async.WithContinuation(func(r async.Completion[int]) { resume = r })

	calls := 0
	a.Schedule(&m, func(result.Result[int]) { calls++ })
	m.Drain()
	require.NotNil(t, resume)

	resume(result.Ok(1))
	resume(result.Ok(2))
	assert.Zero(t, calls, "resume must hop through the context")
	m.Drain()
	assert.Equal(t, 1, calls)
}

func TestZeroAction(t *testing.T) {
	v, err := async.Await(context.Background(), serial(t), async.Action[string]{})
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestFrom(t *testing.T) {
	ctx := serial(t)
	v, err := async.Await(context.Background(), ctx, async.From(func() (int, error) { return 42, nil }))
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = async.Await(context.Background(), ctx, async.From(func() (int, error) { return 0, errFirst }))
	assert.ErrorIs(t, err, errFirst)

	_, err = async.Await(context.Background(), ctx, async.From(func() (int, error) { panic("boom") }))
	assert.ErrorIs(t, err, domain.ErrPanic)
}

func TestFromContext(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := async.Await(context.Background(), serial(t), async.FromContext(parent, func(ctx context.Context) (int, error) {
		return 0, ctx.Err()
	}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithContinuation_PanicBecomesError(t *testing.T) {
	_, err := async.Await(context.Background(), serial(t), async.WithContinuation(func(async.Completion[int]) {
		panic("bad body")
	}))
	assert.ErrorIs(t, err, domain.ErrPanic)
}

func TestAwait_ParentCancelled(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	never := async.WithContinuation(func(async.Completion[int]) {})
	_, err := async.Await(parent, serial(t), never)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMapAndFlatMap(t *testing.T) {
	ctx := serial(t)

	s, err := async.Await(context.Background(), ctx, async.Map(async.Succeed(3), func(v int) string {
		return string(rune('a' + v))
	}))
	require.NoError(t, err)
	assert.Equal(t, "d", s)

	_, err = async.Await(context.Background(), ctx, async.Map(async.Fail[int](errFirst), func(v int) int { return v }))
	assert.ErrorIs(t, err, errFirst)

	chained := async.FlatMap(async.Succeed(2), func(v int) async.Action[int] {
		return async.From(func() (int, error) { return v * 10, nil })
	})
	v, err := async.Await(context.Background(), ctx, chained)
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	invoked := false
	short := async.FlatMap(async.Fail[int](errFirst), func(int) async.Action[int] {
		invoked = true
		return async.Succeed(0)
	})
	_, err = async.Await(context.Background(), ctx, short)
	assert.ErrorIs(t, err, errFirst)
	assert.False(t, invoked)

	v, err = async.Await(context.Background(), ctx, async.Recover(async.Fail[int](errFirst), func(error) int { return -1 }))
	require.NoError(t, err)
	assert.Equal(t, -1, v)
}

func TestZip_CombinesOnceRegardlessOfOrder(t *testing.T) {
	add := func(a, b int) int { return a + b }
	cases := map[string][2]time.Duration{
		"a first": {5 * time.Millisecond, 30 * time.Millisecond},
		"b first": {30 * time.Millisecond, 5 * time.Millisecond},
	}
	for name, delays := range cases {
		t.Run(name, func(t *testing.T) {
			a := async.Delay(delays[0], async.Succeed(3))
			b := async.Delay(delays[1], async.Succeed(4))
			rec := newRecorder[int]()
			async.Zip(a, b, add).Schedule(serial(t), rec.done)

			v, err := rec.wait(t).Get()
			require.NoError(t, err)
			assert.Equal(t, 7, v)

			time.Sleep(50 * time.Millisecond)
			assert.EqualValues(t, 1, rec.calls.Load())
		})
	}
}

func TestZip_FirstFailureWins(t *testing.T) {
	bResolved := make(chan struct{})
	a := async.Delay(5*time.Millisecond, async.Fail[int](errFirst))
	b := async.Delay(40*time.Millisecond, async.New(func(_ exec.Context, done async.Completion[int]) {
		close(bResolved)
		done(result.Err[int](errSecond))
	}))

	rec := newRecorder[int]()
	async.Zip(a, b, func(x, y int) int { return x + y }).Schedule(serial(t), rec.done)

	_, err := rec.wait(t).Get()
	assert.ErrorIs(t, err, errFirst)

	<-bResolved
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1, rec.calls.Load(), "late completion must not deliver again")
}

func TestZip_FailureDeliveredWithoutWaiting(t *testing.T) {
	var m exec.Manual
	never := async.WithContinuation(func(async.Completion[string]) {})

	var got []result.Result[int]
	async.Zip(async.Fail[int](errFirst), never, func(int, string) int { return 0 }).
		Schedule(&m, func(r result.Result[int]) { got = append(got, r) })
	m.Drain()

	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0].Error(), errFirst)
}

func TestZipAll_OrderFollowsArguments(t *testing.T) {
	var m exec.Manual
	resumes := make([]async.Completion[int], 3)
	actions := make([]async.Action[int], 3)
	for i := range actions {
		actions[i] = async.WithContinuation(func(r async.Completion[int]) { resumes[i] = r })
	}

	var got []result.Result[[]int]
	async.Collect(actions...).Schedule(&m, func(r result.Result[[]int]) { got = append(got, r) })
	m.Drain()

	for i := len(resumes) - 1; i >= 0; i-- {
		resumes[i](result.Ok(i + 1))
		m.Drain()
	}
	require.Len(t, got, 1)
	v, err := got[0].Get()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v)
}

func TestZipAll_FailureDiscardsLaterArrivals(t *testing.T) {
	var m exec.Manual
	resumes := make([]async.Completion[int], 3)
	actions := make([]async.Action[int], 3)
	for i := range actions {
		actions[i] = async.WithContinuation(func(r async.Completion[int]) { resumes[i] = r })
	}

	calls := 0
	var last result.Result[int]
	async.ZipAll(actions, func(vs []int) int { return len(vs) }).
		Schedule(&m, func(r result.Result[int]) { calls++; last = r })
	m.Drain()

	resumes[1](result.Err[int](errFirst))
	resumes[0](result.Ok(1))
	resumes[2](result.Err[int](errSecond))
	resumes[1](result.Ok(1))
	m.Drain()

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, last.Error(), errFirst)
}

func TestZipAll_Empty(t *testing.T) {
	v, err := async.Await(context.Background(), serial(t), async.ZipAll(nil, func(vs []int) int { return len(vs) + 1 }))
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestScheduleOn_DispatchesOutcome(t *testing.T) {
	var m exec.Manual
	var dispatched []domain.Action
	dispatch := func(a domain.Action) { dispatched = append(dispatched, a) }

	var s async.Schedulable = async.Succeed(5)
	s.ScheduleOn(&m, dispatch)
	async.Fail[int](errFirst).ScheduleOn(&m, dispatch)
	m.Drain()

	require.Len(t, dispatched, 2)
	assert.Equal(t, 5, dispatched[0])

	failed, ok := dispatched[1].(domain.FailedAction)
	require.True(t, ok)
	assert.True(t, domain.FailedFor[int](failed))
	assert.False(t, domain.FailedFor[string](failed))
	assert.ErrorIs(t, failed, errFirst)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "async(int)", domain.Kind(async.Succeed(1)))
}
