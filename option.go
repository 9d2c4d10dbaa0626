package gently

import (
	"github.com/sirupsen/logrus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/viant/gently/service/journal"
	"github.com/viant/gently/service/mempool"
	"github.com/viant/gently/tracing"
)

// Option customises Service construction.
type Option func(s *Service)

// WithConfig replaces the whole configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithName labels the scheduler in logs and metrics.
func WithName(name string) Option {
	return func(s *Service) {
		s.config.Scheduler.Name = name
	}
}

// WithWorkers sets the scheduler worker count.
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.Scheduler.WorkerCount = count
	}
}

// WithLogger sets the logger shared by the scheduler and journal.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithJournal attaches a pre-built lifecycle journal.
func WithJournal(j *journal.Service) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithJournalURL enables the lifecycle journal flushing to baseURL.
func WithJournalURL(baseURL string) Option {
	return func(s *Service) {
		s.config.Journal.BaseURL = baseURL
	}
}

// WithPool makes the facade construct a memory pool with the supplied
// geometry.
func WithPool(config mempool.Config) Option {
	return func(s *Service) {
		s.config.Pool = &config
	}
}

// WithTracing configures OpenTelemetry tracing. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file
// path. Safe to call multiple times – the first successful initialisation
// wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, enabling integrations beyond the built-in stdout exporter
// (OTLP, Jaeger, Zipkin, ...).
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
