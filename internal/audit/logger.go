package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogWriter writes audit entries to the structured log. It is used when no
// database is configured.
type LogWriter struct {
	logger zerolog.Logger
}

// NewLogWriter constructs a log backed audit logger.
func NewLogWriter(logger zerolog.Logger) *LogWriter {
	return &LogWriter{logger: logger.With().Str("component", "audit").Logger()}
}

// Log writes an audit entry.
func (w *LogWriter) Log(ctx context.Context, entry Entry) error {
	entry = prepare(entry, time.Now())
	event := w.logger.Info().
		Str("audit_id", entry.ID).
		Str("action", entry.Action).
		Str("outcome", entry.Outcome).
		Str("actor", entry.Actor).
		Str("resource_type", entry.ResourceType).
		Str("resource_id", entry.ResourceID).
		Str("request_id", entry.RequestID).
		Str("ip", entry.IP)
	if len(entry.Metadata) > 0 {
		event = event.RawJSON("metadata", entry.Metadata)
	}
	event.Msg("audit")
	return nil
}

// Memory keeps audit entries in memory.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemory constructs an in-memory audit logger.
func NewMemory() *Memory {
	return &Memory{}
}

// Log appends an entry.
func (m *Memory) Log(ctx context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, prepare(entry, time.Now()))
	return nil
}

// Entries returns a copy of the recorded entries.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
