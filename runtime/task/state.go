package task

// State represents the current State of a task
type State string

const (
	// StateCreated indicates the task has been constructed but not yet
	// handed to a scheduler.
	StateCreated State = "created"

	// StateQueued indicates the task sits on a scheduler ready queue.
	StateQueued State = "queued"

	// StateRunning indicates a worker is currently resuming the task.
	StateRunning State = "running"

	// StateSuspended indicates the task yielded or sleeps and waits to be
	// re-queued; it occupies no worker while in this state.
	StateSuspended State = "suspended"

	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}
