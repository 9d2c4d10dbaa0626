// Package scheduler hosts the workers that drive task execution. Every
// worker dequeues one task at a time from a strict FIFO ready queue, resumes
// it, and either retires, re-queues or suspends it according to the signal
// the continuation returned. Suspended tasks wait on timers and occupy no
// worker. Shutdown drops not-yet-finished tasks without resuming them.
package scheduler
