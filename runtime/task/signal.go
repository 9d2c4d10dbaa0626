package task

import "time"

type signalKind int

const (
	signalDone signalKind = iota
	signalYield
	signalSleep
	signalFail
)

// Signal is returned by a StepFunc to tell the scheduler what to do with the
// task next: finish it, re-queue it immediately, re-queue it after a delay,
// or fail it. Suspension is an explicit state transition carried by the
// return value – a step never blocks its worker to wait.
type Signal struct {
	kind  signalKind
	delay time.Duration
	err   error
}

// Done signals natural completion of the task.
func Done() Signal { return Signal{kind: signalDone} }

// Yield hands control back to the scheduler; the task is re-queued at the
// tail of the ready queue so other queued work runs first.
func Yield() Signal { return Signal{kind: signalYield} }

// Sleep suspends the task for at least d; it is re-queued once the delay
// elapses and occupies no worker in the meantime.
func Sleep(d time.Duration) Signal { return Signal{kind: signalSleep, delay: d} }

// Fail terminates the task with err.
func Fail(err error) Signal { return Signal{kind: signalFail, err: err} }

// Delay returns the requested suspension delay, zero unless the signal was
// produced by Sleep.
func (s Signal) Delay() time.Duration { return s.delay }

// Err returns the failure carried by the signal, if any.
func (s Signal) Err() error { return s.err }

// IsDone reports whether the signal terminates the task.
func (s Signal) IsDone() bool { return s.kind == signalDone || s.kind == signalFail }

// IsSleep reports whether the signal requests a timed suspension.
func (s Signal) IsSleep() bool { return s.kind == signalSleep }
