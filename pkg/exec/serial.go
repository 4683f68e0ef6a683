package exec

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/domain"
)

// Serial runs closures one at a time, in submission order, on a single
// goroutine it owns. The queue is unbounded so Async never blocks, which lets
// closures running on the context enqueue more work without deadlocking.
type Serial struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	closed bool
	logger *slog.Logger
	name   string
}

// SerialOption configures a Serial.
type SerialOption func(*Serial)

// WithSerialLogger sets the logger used to report panics in closures.
func WithSerialLogger(logger *slog.Logger) SerialOption {
	return func(s *Serial) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSerialName labels the context in logs.
func WithSerialName(name string) SerialOption {
	return func(s *Serial) {
		s.name = name
	}
}

// NewSerial starts a serial context. Close releases its goroutine.
func NewSerial(opts ...SerialOption) *Serial {
	s := &Serial{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logging.NewNop(),
		name:   "serial",
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.loop()
	return s
}

// Async enqueues fn. After Close it is silently dropped.
func (s *Serial) Async(fn func()) {
	_ = s.TryAsync(fn)
}

// TryAsync enqueues fn, or reports domain.ErrContextClosed after Close.
func (s *Serial) TryAsync(fn func()) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", s.name, domain.ErrContextClosed)
	}
	s.queue = append(s.queue, fn)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	s.mu.Unlock()
	return nil
}

// Close stops accepting work. Closures already queued still run; Done reports
// when they have. Close is idempotent and safe to call from a queued closure.
func (s *Serial) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.wake)
	}
	s.mu.Unlock()
}

// Done is closed once the worker has drained its queue after Close.
func (s *Serial) Done() <-chan struct{} {
	return s.done
}

func (s *Serial) loop() {
	defer close(s.done)
	for {
		for _, fn := range s.drain() {
			s.run(fn)
		}
		if _, ok := <-s.wake; !ok {
			for _, fn := range s.drain() {
				s.run(fn)
			}
			return
		}
	}
}

func (s *Serial) drain() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.queue
	s.queue = nil
	return batch
}

func (s *Serial) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("closure panicked", "context", s.name, "panic", r)
		}
	}()
	fn()
}
