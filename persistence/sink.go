// Package persistence stores session snapshots for audit and recovery.
// Sinks are fire-and-forget from the engine's point of view: a failed
// persist is logged by the caller and never blocks the session.
package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/chorus-ai/chorus/agent/session"
)

// Sink receives session snapshots at phase boundaries and at session end.
type Sink interface {
	// Persist stores one snapshot. Implementations must be safe for
	// concurrent use; later snapshots of the same session supersede
	// earlier ones but earlier ones may be kept for audit.
	Persist(ctx context.Context, snap *session.Snapshot) error

	// Close releases any underlying resources.
	Close() error
}

// MemorySink keeps snapshots in process memory. Useful for tests and
// for single-run CLI sessions where no durability is needed.
type MemorySink struct {
	mu        sync.RWMutex
	snapshots map[string][]*session.Snapshot
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{snapshots: make(map[string][]*session.Snapshot)}
}

// Persist appends the snapshot to the session's history.
func (s *MemorySink) Persist(_ context.Context, snap *session.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.SessionID] = append(s.snapshots[snap.SessionID], snap)
	return nil
}

// History returns all snapshots persisted for a session, oldest first.
func (s *MemorySink) History(sessionID string) []*session.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*session.Snapshot(nil), s.snapshots[sessionID]...)
}

// Latest returns the most recent snapshot for a session, or nil.
func (s *MemorySink) Latest(sessionID string) *session.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.snapshots[sessionID]
	if len(history) == 0 {
		return nil
	}
	return history[len(history)-1]
}

// Sessions returns the IDs of all sessions seen so far, sorted.
func (s *MemorySink) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close is a no-op for the in-memory sink.
func (s *MemorySink) Close() error { return nil }

var _ Sink = (*MemorySink)(nil)
