// Package task defines the suspendable unit of work executed by the
// scheduler. A task wraps a continuation (StepFunc) that is resumed by one
// worker at a time and communicates suspension, completion and failure
// through explicit Signal values instead of blocking the worker thread.
package task
