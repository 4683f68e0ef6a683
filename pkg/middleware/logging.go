package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/weave/pkg/deps"
	"github.com/aretw0/weave/pkg/domain"
)

// Logger records dispatched actions with the effects they produced.
type Logger[A any] interface {
	Log(action A, effects []domain.Effect)
}

// LoggerFunc adapts a function to the Logger interface.
type LoggerFunc[A any] func(action A, effects []domain.Effect)

// Log calls f.
func (f LoggerFunc[A]) Log(action A, effects []domain.Effect) {
	f(action, effects)
}

// Logging records every (action, effects) pair passing through it. It never
// alters the effects or the state.
func Logging[S, A any](logger Logger[A]) Middleware[S, A] {
	return Func[S, A](func(next Dispatch[A], _ Handle[S, A], _ deps.Bag) Dispatch[A] {
		return func(action A) []domain.Effect {
			effects := next(action)
			logger.Log(action, effects)
			return effects
		}
	})
}

// SlogLogger writes one structured record per dispatch at the given level.
func SlogLogger[A any](logger *slog.Logger, level slog.Level) Logger[A] {
	return LoggerFunc[A](func(action A, effects []domain.Effect) {
		if !logger.Enabled(context.Background(), level) {
			return
		}
		logger.Log(context.Background(), level, "dispatch",
			"action", domain.Kind(action),
			"effects", domain.Kinds(effects),
		)
	})
}

// Entry is one recorded dispatch.
type Entry[A any] struct {
	Action  A
	Effects []domain.Effect
	At      time.Time
}

// History is a Logger that keeps the most recent dispatches in memory.
// It is safe for concurrent use.
type History[A any] struct {
	mu      sync.Mutex
	entries []Entry[A]
	limit   int
}

// NewHistory keeps at most limit entries. A limit of zero or less keeps everything.
func NewHistory[A any](limit int) *History[A] {
	return &History[A]{limit: limit}
}

// Log appends a copy of the effect list.
func (h *History[A]) Log(action A, effects []domain.Effect) {
	e := Entry[A]{
		Action:  action,
		Effects: append([]domain.Effect(nil), effects...),
		At:      time.Now(),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = append(h.entries[:0:0], h.entries[len(h.entries)-h.limit:]...)
	}
}

// Entries returns the recorded dispatches, oldest first.
func (h *History[A]) Entries() []Entry[A] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Entry[A](nil), h.entries...)
}

// Actions returns the recorded actions, oldest first.
func (h *History[A]) Actions() []A {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]A, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Action
	}
	return out
}

// Len returns the number of recorded dispatches.
func (h *History[A]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Reset drops all entries.
func (h *History[A]) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
