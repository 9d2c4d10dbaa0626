package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/gently/internal/clock"
	"github.com/viant/gently/internal/idgen"
)

// StepFunc is the task continuation. The scheduler invokes it repeatedly;
// each invocation runs to the task's next suspension point and reports what
// should happen next through the returned Signal. State that must survive
// between invocations lives in the closure.
type StepFunc func(ctx context.Context) Signal

// Task is a suspendable, resumable unit of computation. A task is resumed by
// at most one worker at a time; the scheduler's dequeue-resume-requeue
// protocol enforces this, so StepFunc never runs concurrently with itself.
// Tasks are used by pointer only and must not be copied.
type Task struct {
	id        string
	name      string
	createdAt time.Time

	step    StepFunc
	cleanup func()

	mu          sync.Mutex
	state       State
	err         error
	releaseOnce sync.Once
}

// Option customises task construction.
type Option func(*Task)

// WithCleanup registers a hook released exactly once when the task reaches a
// terminal state or is dropped by scheduler shutdown. It must be safe to run
// from any reachable suspension point.
func WithCleanup(fn func()) Option {
	return func(t *Task) {
		t.cleanup = fn
	}
}

// New creates a task wrapping the supplied continuation.
func New(name string, step StepFunc, options ...Option) *Task {
	if name == "" {
		name = "unnamed"
	}
	t := &Task{
		id:        idgen.New(),
		name:      name,
		createdAt: clock.Now(),
		step:      step,
		state:     StateCreated,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// ID returns the task's unique identifier.
func (t *Task) ID() string { return t.id }

// Name returns the task's display name.
func (t *Task) Name() string { return t.name }

// CreatedAt returns the construction timestamp.
func (t *Task) CreatedAt() time.Time { return t.createdAt }

// State returns the task's current state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the terminal error for a failed task, nil otherwise.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// IsDone reports whether the task has reached a terminal state or carries no
// continuation at all.
func (t *Task) IsDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.step == nil || t.state.Terminal()
}

// MarkQueued transitions the task to the queued state. Called by the
// scheduler when the task enters the ready queue.
func (t *Task) MarkQueued() {
	t.transition(StateQueued)
}

// MarkSuspended transitions the task to the suspended state while it waits
// off-queue for a wake-up timer.
func (t *Task) MarkSuspended() {
	t.transition(StateSuspended)
}

func (t *Task) transition(state State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return
	}
	t.state = state
}

// Resume runs the continuation until its next suspension point or
// completion. A panic escaping the continuation is caught here and converts
// the task to the failed state rather than propagating to the worker; the
// returned signal then carries the failure.
func (t *Task) Resume(ctx context.Context) (signal Signal) {
	t.mu.Lock()
	if t.step == nil || t.state.Terminal() {
		t.mu.Unlock()
		return Done()
	}
	t.state = StateRunning
	step := t.step
	t.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("task %v panicked: %v", t.name, r)
			t.fail(err)
			signal = Fail(err)
		}
	}()

	signal = step(ctx)
	switch signal.kind {
	case signalDone:
		t.complete()
	case signalFail:
		t.fail(signal.err)
	default:
		t.transition(StateSuspended)
	}
	return signal
}

func (t *Task) complete() {
	t.mu.Lock()
	if !t.state.Terminal() {
		t.state = StateCompleted
	}
	t.mu.Unlock()
	t.Release()
}

func (t *Task) fail(err error) {
	t.mu.Lock()
	if !t.state.Terminal() {
		t.state = StateFailed
		t.err = err
	}
	t.mu.Unlock()
	t.Release()
}

// Release runs the cleanup hook at most once. The scheduler calls it for
// tasks dropped at shutdown; terminal transitions call it implicitly.
func (t *Task) Release() {
	t.releaseOnce.Do(func() {
		if t.cleanup != nil {
			t.cleanup()
		}
	})
}
