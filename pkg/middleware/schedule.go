package middleware

import (
	"github.com/aretw0/weave/pkg/async"
	"github.com/aretw0/weave/pkg/cast"
	"github.com/aretw0/weave/pkg/deps"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/exec"
)

// Schedule runs every async.Schedulable effect on ctx. Outcomes are
// dispatched back through the store handle. Effects are passed up unchanged.
func Schedule[S any](ctx exec.Context) Middleware[S, domain.Action] {
	return ScheduleAs[S, domain.Action](ctx, cast.Identity[domain.Action]())
}

// ScheduleAs is Schedule for stores with a concrete action type. Outcomes that
// downcast rejects are dropped.
func ScheduleAs[S, A any](ctx exec.Context, downcast cast.Downcast[domain.Action, A]) Middleware[S, A] {
	return Func[S, A](func(next Dispatch[A], store Handle[S, A], _ deps.Bag) Dispatch[A] {
		feedback := func(outcome domain.Action) {
			if a, ok := downcast.DownCast(outcome); ok {
				store.Dispatch(a)
			}
		}
		return func(action A) []domain.Effect {
			effects := next(action)
			for _, e := range effects {
				if s, ok := e.(async.Schedulable); ok {
					s.ScheduleOn(ctx, feedback)
				}
			}
			return effects
		}
	})
}
