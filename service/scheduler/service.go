package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/viant/gently/runtime/task"
	"github.com/viant/gently/service/journal"
	"github.com/viant/gently/tracing"
)

// Config represents scheduler configuration
type Config struct {
	// Name labels this scheduler instance in logs and metrics.
	Name string `json:"name" yaml:"name"`

	// WorkerCount is the number of worker goroutines resuming tasks. It is
	// fixed at Start.
	WorkerCount int `json:"workers" yaml:"workers"`
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Name:        "default",
		WorkerCount: runtime.NumCPU(),
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c.WorkerCount <= 0 {
		return fmt.Errorf("scheduler.workers must be > 0, got %d", c.WorkerCount)
	}
	return nil
}

// Stats is a point-in-time snapshot of scheduler counters. Each counter is
// individually consistent; no guarantee holds across them.
type Stats struct {
	Active    int
	Created   int
	Completed int
	Failed    int
	Dropped   int
	Workers   int
}

// Service drives task execution over a fixed pool of workers and a strict
// FIFO ready queue. Tasks communicate through channels and ownership cells;
// the scheduler guarantees only that each task is resumed by at most one
// worker at a time.
type Service struct {
	config  Config
	logger  *logrus.Logger
	journal *journal.Service

	queue      *readyQueue
	workers    []*worker
	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
	once       sync.Once

	// completion gate: active is the number of not-yet-finished tasks the
	// scheduler owns; idle is closed when it reaches zero.
	gateMu sync.Mutex
	active int
	idle   chan struct{}

	counterMu sync.Mutex
	created   int
	completed int
	failed    int
	dropped   int

	// suspended tasks wait on timers, never on workers
	timerMu sync.Mutex
	timers  map[*task.Task]*time.Timer
	stopped bool
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a scheduler service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		queue:      newReadyQueue(),
		shutdownCh: make(chan struct{}),
		timers:     make(map[*task.Task]*time.Timer),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the worker goroutines. Tasks spawned before Start queue up
// and run once workers are available.
func (s *Service) Start(ctx context.Context) error {
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, w)
		s.workerWg.Add(1)
		go w.run()
	}
	return nil
}

// run resumes tasks from the ready queue until the queue closes.
func (w *worker) run() {
	defer w.service.workerWg.Done()

	for {
		next, ok := w.service.queue.Dequeue()
		if !ok {
			return
		}
		w.service.resume(w.ctx, next)
	}
}

// Spawn appends t to the ready queue. Safe to call concurrently from any
// goroutine; fails with ErrShutdown after Shutdown.
func (s *Service) Spawn(t *task.Task) error {
	if t == nil {
		return fmt.Errorf("task cannot be nil")
	}
	s.gateMu.Lock()
	s.active++
	s.gateMu.Unlock()

	t.MarkQueued()
	if !s.queue.Enqueue(t) {
		s.release(false)
		return ErrShutdown
	}

	s.counterMu.Lock()
	s.created++
	s.counterMu.Unlock()
	tasksSpawned.WithLabelValues(s.config.Name).Inc()
	activeTasks.WithLabelValues(s.config.Name).Inc()
	s.record(t, journal.EventSpawned, nil)
	return nil
}

// resume runs one scheduling pass for t: resume the continuation, then
// finish, re-queue or suspend the task according to the returned signal.
func (s *Service) resume(ctx context.Context, t *task.Task) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("scheduler.resume %v", t.Name()), "INTERNAL")
	span.WithAttributes(map[string]string{"task.id": t.ID(), "task.name": t.Name()})
	signal := t.Resume(ctx)
	tracing.EndSpan(span, signal.Err())

	switch {
	case signal.IsDone() || t.IsDone():
		s.finish(t)
	case signal.IsSleep():
		s.suspend(t, signal.Delay())
	default:
		// Yield: back to the tail so older tasks run first.
		t.MarkQueued()
		if !s.queue.Enqueue(t) {
			s.drop(t)
		}
	}
}

// finish retires a task that reached a terminal state.
func (s *Service) finish(t *task.Task) {
	if t.State() == task.StateFailed {
		s.logger.WithFields(logrus.Fields{
			"scheduler": s.config.Name,
			"task":      t.Name(),
			"taskId":    t.ID(),
			"error":     t.Err(),
		}).Error("task failed")
		s.counterMu.Lock()
		s.failed++
		s.counterMu.Unlock()
		tasksFinished.WithLabelValues(s.config.Name, statusFailed).Inc()
		s.record(t, journal.EventFailed, t.Err())
	} else {
		s.counterMu.Lock()
		s.completed++
		s.counterMu.Unlock()
		tasksFinished.WithLabelValues(s.config.Name, statusCompleted).Inc()
		s.record(t, journal.EventCompleted, nil)
	}
	s.release(true)
}

// suspend parks t on a wake-up timer. The task occupies no worker while it
// waits; the timer re-queues it once the delay elapses.
func (s *Service) suspend(t *task.Task, delay time.Duration) {
	t.MarkSuspended()
	s.timerMu.Lock()
	if s.stopped {
		s.timerMu.Unlock()
		s.drop(t)
		return
	}
	s.timers[t] = time.AfterFunc(delay, func() {
		s.timerMu.Lock()
		delete(s.timers, t)
		s.timerMu.Unlock()
		t.MarkQueued()
		if !s.queue.Enqueue(t) {
			s.drop(t)
		}
	})
	s.timerMu.Unlock()
}

// drop destroys a task that will never be resumed again. Shutdown is a
// resource-release point, not a cancellation signal: the continuation's
// cleanup runs, nothing else.
func (s *Service) drop(t *task.Task) {
	t.Release()
	s.counterMu.Lock()
	s.dropped++
	s.counterMu.Unlock()
	tasksFinished.WithLabelValues(s.config.Name, statusDropped).Inc()
	s.record(t, journal.EventDropped, nil)
	s.release(true)
}

// release removes one task from the active count, signalling the completion
// gate when the count reaches zero.
func (s *Service) release(counted bool) {
	if counted {
		activeTasks.WithLabelValues(s.config.Name).Dec()
	}
	s.gateMu.Lock()
	s.active--
	if s.active == 0 && s.idle != nil {
		close(s.idle)
		s.idle = nil
	}
	s.gateMu.Unlock()
}

// AwaitAll blocks until every spawned task has finished or been dropped. It
// waits on a counted completion gate, not by polling. A cancelled context
// surfaces as ctx.Err(); a concurrent Shutdown as ErrShutdown.
func (s *Service) AwaitAll(ctx context.Context) error {
	s.gateMu.Lock()
	if s.active == 0 {
		s.gateMu.Unlock()
		return nil
	}
	if s.idle == nil {
		s.idle = make(chan struct{})
	}
	idle := s.idle
	s.gateMu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.shutdownCh:
		return ErrShutdown
	}
}

// Shutdown stops the scheduler: the ready queue closes, pending wake-up
// timers stop, still-queued and suspended tasks are released without being
// resumed, and every worker is joined. Idempotent.
func (s *Service) Shutdown() {
	s.once.Do(func() {
		close(s.shutdownCh)
		dropped := s.queue.Close()

		s.timerMu.Lock()
		s.stopped = true
		for t, timer := range s.timers {
			if timer.Stop() {
				dropped = append(dropped, t)
			}
			// A timer that already fired handles its own task: its
			// enqueue fails against the closed queue and drops it.
		}
		s.timers = nil
		s.timerMu.Unlock()

		for _, t := range dropped {
			s.drop(t)
		}
		for _, w := range s.workers {
			w.cancelFn()
		}
		s.workerWg.Wait()
		s.logger.WithFields(logrus.Fields{"scheduler": s.config.Name}).Debug("scheduler shut down")
	})
}

// Stats returns a snapshot of the scheduler counters.
func (s *Service) Stats() Stats {
	s.gateMu.Lock()
	active := s.active
	s.gateMu.Unlock()
	s.counterMu.Lock()
	defer s.counterMu.Unlock()
	return Stats{
		Active:    active,
		Created:   s.created,
		Completed: s.completed,
		Failed:    s.failed,
		Dropped:   s.dropped,
		Workers:   s.config.WorkerCount,
	}
}

// QueueDepth returns the current ready-queue length.
func (s *Service) QueueDepth() int {
	return s.queue.Len()
}

func (s *Service) record(t *task.Task, event string, err error) {
	if s.journal == nil {
		return
	}
	entry := journal.Entry{
		TaskID:   t.ID(),
		TaskName: t.Name(),
		Event:    event,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.journal.Record(entry)
}
