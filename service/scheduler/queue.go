package scheduler

import (
	"sync"

	"github.com/viant/gently/runtime/task"
)

// readyQueue is the scheduler's ready list. Discipline is strict FIFO: a
// task that yields is re-queued at the tail, so a repeatedly re-suspending
// task cannot starve older work. This ordering is a contract, not an
// accident of the implementation.
type readyQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*task.Task
	closed bool
}

func newReadyQueue() *readyQueue {
	q := &readyQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends t at the tail and wakes one idle worker. It reports false
// once the queue has been closed.
func (q *readyQueue) Enqueue(t *task.Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, t)
	q.cond.Signal()
	return true
}

// Dequeue blocks until an item is available or the queue closes. On close it
// reports false immediately, even when items remain; remaining items are
// dropped by Close, never resumed.
func (q *readyQueue) Dequeue() (*task.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for !q.closed && len(q.items) == 0 {
		q.cond.Wait()
	}
	if q.closed {
		return nil, false
	}
	next := q.items[0]
	q.items = q.items[1:]
	return next, true
}

// Close marks the queue closed, wakes all waiting workers and returns the
// tasks that were still queued so the caller can release them.
func (q *readyQueue) Close() []*task.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	dropped := q.items
	q.items = nil
	q.cond.Broadcast()
	return dropped
}

// Len returns the number of queued tasks.
func (q *readyQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
