package scheduler

import (
	"github.com/sirupsen/logrus"

	"github.com/viant/gently/service/journal"
)

// Option customises scheduler construction.
type Option func(*Service)

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithName labels this scheduler instance in logs and metrics.
func WithName(name string) Option {
	return func(s *Service) {
		s.config.Name = name
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithLogger sets the logger used for worker diagnostics.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithJournal attaches a lifecycle journal; the scheduler records spawned,
// completed, failed and dropped events to it.
func WithJournal(j *journal.Service) Option {
	return func(s *Service) {
		s.journal = j
	}
}
