// Package demo is the sample application driven by the weave CLI.
package demo

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/weave/pkg/async"
	"github.com/aretw0/weave/pkg/cast"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/optics"
	"github.com/aretw0/weave/pkg/reducer"
)

// State is the demo application state.
type State struct {
	Counter  Counter     `json:"counter"`
	Fetches  map[int]int `json:"fetches"`
	Ticks    int         `json:"ticks"`
	Errors   int         `json:"errors"`
	Watching bool        `json:"watching"`
	Last     time.Time   `json:"last_tick"`
	Mode     Mode        `json:"mode"`
}

// Counter is the part of the state touched by increments.
type Counter struct {
	Value int `json:"value"`
	Steps int `json:"steps"`
}

// Mode is a raw-value-backed enum set by the Switch action.
type Mode string

const (
	ModeIdle Mode = "idle"
	ModeBusy Mode = "busy"
)

// Modes embeds Mode into its raw string.
var Modes = cast.Enum(func(m Mode) string { return string(m) }, ModeIdle, ModeBusy)

// Increment adds By to the counter.
type Increment struct{ By int }

// Fetch starts an asynchronous computation for ID.
type Fetch struct {
	ID   int
	Fail bool
}

// Fetched carries the result of a Fetch.
type Fetched struct {
	ID    int
	Value int
}

// Tick is dispatched for every value of the watched ticker.
type Tick struct{ At time.Time }

// Watch starts or stops the ticker subscription.
type Watch struct{ On bool }

// Switch changes the mode.
type Switch struct{ To Mode }

// Kind names the action in logs and metrics.
func (Increment) Kind() string { return "increment" }

// Kind names the action in logs and metrics.
func (Fetch) Kind() string { return "fetch" }

// Kind names the action in logs and metrics.
func (Fetched) Kind() string { return "fetched" }

// Kind names the action in logs and metrics.
func (Tick) Kind() string { return "tick" }

// Kind names the action in logs and metrics.
func (Watch) Kind() string { return "watch" }

// Kind names the action in logs and metrics.
func (Switch) Kind() string { return "switch" }

// Initial returns the starting state.
func Initial() State {
	return State{Mode: ModeIdle}
}

// compute stands in for remote work: it derives a value from id.
func compute(id, salt int) async.Action[int] {
	return async.From(func() (int, error) {
		return id*10 + salt, nil
	})
}

// Reducer is the demo reducer over dynamically typed actions.
func Reducer() reducer.Reducer[State, domain.Action] {
	counter := optics.Focus(func(s *State) *Counter { return &s.Counter })
	fetches := optics.Focus(func(s *State) *map[int]int { return &s.Fetches })

	return reducer.Sequence(
		reducer.Lensed(counter, reducer.Dynamic[Counter, Increment](reducer.Pure(func(c *Counter, a Increment) {
			c.Value += a.By
			c.Steps++
		}))),
		reducer.Dynamic[State, Fetch](reducer.Func[State, Fetch](func(_ *State, f Fetch) []domain.Effect {
			if f.Fail {
				return []domain.Effect{async.Fail[Fetched](fmt.Errorf("fetch %d: unavailable", f.ID))}
			}
			work := async.Zip(compute(f.ID, 1), compute(f.ID, 2), func(a, b int) Fetched {
				return Fetched{ID: f.ID, Value: a + b}
			})
			return []domain.Effect{work}
		})),
		reducer.Dynamic[State, Fetched](reducer.Pure(func(s *State, f Fetched) {
			// Snapshots share the map with readers, so replace it instead of writing in place.
			s.Fetches = maps.Clone(s.Fetches)
			optics.Compose(fetches, optics.Key(f.ID, 0)).Set(s, f.Value)
		})),
		reducer.Dynamic[State, Tick](reducer.Pure(func(s *State, t Tick) {
			s.Ticks++
			s.Last = t.At
		})),
		reducer.Dynamic[State, Watch](reducer.Func[State, Watch](func(s *State, w Watch) []domain.Effect {
			if w.On == s.Watching {
				return nil
			}
			s.Watching = w.On
			if w.On {
				return []domain.Effect{domain.Subscribe}
			}
			return []domain.Effect{domain.Unsubscribe}
		})),
		reducer.Dynamic[State, Switch](reducer.Pure(func(s *State, sw Switch) { s.Mode = sw.To })),
		reducer.Dynamic[State, domain.FailedAction](reducer.Pure(func(s *State, _ domain.FailedAction) {
			s.Errors++
		})),
	)
}

// ParseCommand turns a text command such as "increment 3", "fetch 7",
// "watch on" or "mode busy" into an action.
func ParseCommand(line string) (domain.Action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	switch fields[0] {
	case "increment", "inc":
		by := 1
		if arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil {
				return nil, fmt.Errorf("increment: %w", err)
			}
			by = n
		}
		return Increment{By: by}, nil
	case "fetch":
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		return Fetch{ID: id}, nil
	case "watch":
		return Watch{On: arg != "off"}, nil
	case "mode":
		m, ok := Modes.DownCast(arg)
		if !ok {
			return nil, fmt.Errorf("unknown mode %q", arg)
		}
		return Switch{To: m}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}
}
