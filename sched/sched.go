// Package sched implements a queue for running functions outside the
// context that scheduled them.
package sched

import "sync"

// Queue runs deferred functions one at a time, in the order they were
// deferred, on a dedicated goroutine.
type Queue struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
	// wakeups holds at most one token.
	wakeups chan struct{}
	exited  chan struct{}
}

func NewQueue() *Queue {
	q := &Queue{
		wakeups: make(chan struct{}, 1),
		exited:  make(chan struct{}),
	}
	go q.run()
	return q
}

// Defer schedules f. It never blocks on running tasks. Functions deferred
// after Close are dropped.
func (q *Queue) Defer(f func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.tasks = append(q.tasks, f)
	q.mu.Unlock()
	q.wakeup()
}

func (q *Queue) wakeup() {
	select {
	case q.wakeups <- struct{}{}:
	default:
	}
}

// Close runs the remaining tasks and stops the queue.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.exited
		return
	}
	q.closed = true
	q.mu.Unlock()
	q.wakeup()
	<-q.exited
}

func (q *Queue) run() {
	defer close(q.exited)
	var batch []func()
	for range q.wakeups {
		q.mu.Lock()
		batch, q.tasks = q.tasks, batch[:0]
		closed := q.closed
		q.mu.Unlock()
		for i, f := range batch {
			f()
			batch[i] = nil
		}
		// No tasks are added once closed is observed.
		if closed {
			return
		}
	}
}
