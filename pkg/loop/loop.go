// Package loop provides the cooperative, single-threaded task queue the form
// coordinator runs on. It plays the role of a browser's macrotask queue: event
// handlers and async-validator settlements are serialised onto one goroutine,
// so session state never needs a lock.
package loop

import (
	"context"
	"errors"
	"sync"
)

// Scheduler queues a task to run after the current one finishes.
type Scheduler interface {
	Post(task func())
}

// ErrClosed is returned by Run when the loop was closed.
var ErrClosed = errors.New("loop: closed")

// Loop runs posted tasks serially on the goroutine calling Run.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
}

var _ Scheduler = (*Loop)(nil)

// New constructs an idle Loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post implements Scheduler. It never blocks; tasks posted after Close are
// dropped.
func (l *Loop) Post(task func()) {
	if task == nil {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes tasks until ctx is done or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			task, ok := l.pop()
			if !ok {
				break
			}
			task()
		}

		l.mu.Lock()
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return ErrClosed
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Close stops Run after the tasks already queued.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) pop() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}
