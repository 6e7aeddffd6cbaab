package loop

import (
	"context"
	"sync"
)

// Manual is a Scheduler whose tasks run only when the owner asks. Tests and
// the terminal host use it to decide exactly when deferred work happens.
type Manual struct {
	mu     sync.Mutex
	queue  []func()
	posted chan struct{}
}

var _ Scheduler = (*Manual)(nil)

// NewManual constructs an empty Manual scheduler.
func NewManual() *Manual {
	return &Manual{posted: make(chan struct{}, 1)}
}

// Post implements Scheduler. Safe to call from any goroutine.
func (m *Manual) Post(task func()) {
	if task == nil {
		return
	}
	m.mu.Lock()
	m.queue = append(m.queue, task)
	m.mu.Unlock()
	select {
	case m.posted <- struct{}{}:
	default:
	}
}

// Len reports the number of queued tasks.
func (m *Manual) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Step runs the oldest queued task and reports whether one ran.
func (m *Manual) Step() bool {
	m.mu.Lock()
	if len(m.queue) == 0 {
		m.mu.Unlock()
		return false
	}
	task := m.queue[0]
	m.queue = m.queue[1:]
	m.mu.Unlock()

	task()
	return true
}

// Flush runs tasks until the queue is empty, including tasks posted while
// flushing, and returns how many ran.
func (m *Manual) Flush() int {
	n := 0
	for m.Step() {
		n++
	}
	return n
}

// Next blocks until a task is queued, then runs it.
func (m *Manual) Next(ctx context.Context) error {
	for {
		if m.Step() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.posted:
		}
	}
}
