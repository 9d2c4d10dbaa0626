package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/viant/gently/internal/clock"
	"github.com/viant/gently/internal/idgen"
)

// Event names the lifecycle transitions recorded by the scheduler.
const (
	EventSpawned   = "spawned"
	EventCompleted = "completed"
	EventFailed    = "failed"
	EventDropped   = "dropped"
)

// Entry is a single recorded lifecycle transition.
type Entry struct {
	ID       string    `json:"id"`
	TaskID   string    `json:"taskId"`
	TaskName string    `json:"taskName"`
	Event    string    `json:"event"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// Service accumulates task lifecycle entries in memory and flushes them as a
// JSON document to any URL the abstract file system supports (file://,
// mem://, s3://, ...).
type Service struct {
	fs      afs.Service
	baseURL string
	logger  *logrus.Logger

	mu      sync.Mutex
	entries []Entry
}

// Option customises journal construction.
type Option func(*Service)

// WithFS overrides the abstract file system, mainly for tests.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithLogger overrides the logger used for flush diagnostics.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a journal flushing to baseURL.
func New(baseURL string, options ...Option) *Service {
	s := &Service{baseURL: baseURL}
	for _, opt := range options {
		opt(s)
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	return s
}

// Record appends an entry, stamping identity and time when absent.
func (s *Service) Record(entry Entry) {
	if entry.ID == "" {
		entry.ID = idgen.New()
	}
	if entry.At.IsZero() {
		entry.At = clock.Now()
	}
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
}

// Entries returns a copy of the recorded entries in record order.
func (s *Service) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of recorded entries.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Flush uploads all recorded entries as one JSON document under the journal
// base URL and clears the in-memory buffer on success. Flushing an empty
// journal is a no-op.
func (s *Service) Flush(ctx context.Context) (string, error) {
	s.mu.Lock()
	entries := s.entries
	s.entries = nil
	s.mu.Unlock()

	if len(entries) == 0 {
		return "", nil
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode journal: %w", err)
	}

	name := fmt.Sprintf("journal-%v.json", clock.Now().UnixNano())
	URL := url.Join(s.baseURL, name)
	if err := s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		// Put the entries back so a later flush can retry.
		s.mu.Lock()
		s.entries = append(entries, s.entries...)
		s.mu.Unlock()
		return "", fmt.Errorf("failed to upload journal to %v: %w", URL, err)
	}
	s.logger.WithFields(logrus.Fields{"url": URL, "entries": len(entries)}).Debug("journal flushed")
	return URL, nil
}

// Load reads back a previously flushed journal document.
func (s *Service) Load(ctx context.Context, URL string) ([]Entry, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download journal from %v: %w", URL, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode journal %v: %w", URL, err)
	}
	return entries, nil
}
