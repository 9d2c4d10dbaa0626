package gently

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/viant/gently/runtime/task"
	"github.com/viant/gently/service/journal"
	"github.com/viant/gently/service/mempool"
	"github.com/viant/gently/service/scheduler"
)

// Service is the high-level façade over the runtime: it assembles the
// scheduler and its optional collaborators (journal, memory pool) from a
// single configuration and exposes spawn/await/shutdown conveniences.
type Service struct {
	config    *Config
	logger    *logrus.Logger
	scheduler *scheduler.Service
	journal   *journal.Service
	pool      *mempool.Pool
}

// New creates a runtime service. Construction fails only on invalid
// configuration.
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, opt := range options {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if s.journal == nil && s.config.Journal.BaseURL != "" {
		s.journal = journal.New(s.config.Journal.BaseURL, journal.WithLogger(s.logger))
	}
	if s.config.Pool != nil {
		pool, err := mempool.New(*s.config.Pool)
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}

	schedulerOptions := []scheduler.Option{
		scheduler.WithConfig(s.config.Scheduler),
		scheduler.WithLogger(s.logger),
	}
	if s.journal != nil {
		schedulerOptions = append(schedulerOptions, scheduler.WithJournal(s.journal))
	}
	sched, err := scheduler.New(schedulerOptions...)
	if err != nil {
		return nil, err
	}
	s.scheduler = sched
	return s, nil
}

// Start launches the scheduler workers.
func (s *Service) Start(ctx context.Context) error {
	return s.scheduler.Start(ctx)
}

// Scheduler returns the underlying scheduler.
func (s *Service) Scheduler() *scheduler.Service {
	return s.scheduler
}

// Journal returns the lifecycle journal, nil when disabled.
func (s *Service) Journal() *journal.Service {
	return s.journal
}

// Pool returns the memory pool, nil when not configured.
func (s *Service) Pool() *mempool.Pool {
	return s.pool
}

// Spawn wraps step in a task and submits it to the scheduler.
func (s *Service) Spawn(name string, step task.StepFunc, options ...task.Option) (*task.Task, error) {
	t := task.New(name, step, options...)
	if err := s.scheduler.Spawn(t); err != nil {
		return nil, err
	}
	return t, nil
}

// AwaitAll blocks until every spawned task has finished or been dropped.
func (s *Service) AwaitAll(ctx context.Context) error {
	return s.scheduler.AwaitAll(ctx)
}

// Stats returns a snapshot of the scheduler counters.
func (s *Service) Stats() scheduler.Stats {
	return s.scheduler.Stats()
}

// Shutdown stops the scheduler and flushes the journal when one is attached.
func (s *Service) Shutdown() {
	s.scheduler.Shutdown()
	if s.journal != nil {
		if _, err := s.journal.Flush(context.Background()); err != nil {
			s.logger.WithError(err).Warn("failed to flush journal on shutdown")
		}
	}
}

var (
	defaultOnce    sync.Once
	defaultService *Service
)

// Default returns the lazily-constructed process-wide Service. It lives for
// the process's duration unless a caller shuts it down explicitly. The
// accessor is a convenience only – independent instances created with New
// remain first-class.
func Default() *Service {
	defaultOnce.Do(func() {
		defaultService, _ = New()
		_ = defaultService.Start(context.Background())
	})
	return defaultService
}
