package exec

import "sync"

// Manual queues closures until the caller runs them. It makes scheduling
// deterministic in tests.
type Manual struct {
	mu    sync.Mutex
	queue []func()
}

// Async enqueues fn.
func (m *Manual) Async(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// Step runs the oldest pending closure and reports whether there was one.
func (m *Manual) Step() bool {
	m.mu.Lock()
	if len(m.queue) == 0 {
		m.mu.Unlock()
		return false
	}
	fn := m.queue[0]
	m.queue = m.queue[1:]
	m.mu.Unlock()

	fn()
	return true
}

// Drain runs closures, including ones enqueued while draining, until the
// queue is empty. It returns how many ran.
func (m *Manual) Drain() int {
	n := 0
	for m.Step() {
		n++
	}
	return n
}

// Len returns the number of pending closures.
func (m *Manual) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
