package ledger

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chorus-ai/chorus/types"
)

// Mirror receives a copy of every append. Implementations must not
// block the caller longer than a network round trip; errors are logged
// and dropped.
type Mirror interface {
	MirrorAppend(workerID string, resp *types.AgentResponse) error
}

// entry is one worker's exclusive section of the ledger. The entry
// mutex serializes same-key writers; distinct keys never contend.
type entry struct {
	mu        sync.RWMutex
	responses []*types.AgentResponse
}

// Ledger is the append-only per-worker response store.
type Ledger struct {
	mu      sync.RWMutex // guards the entries map and mirror, never held during appends
	entries map[string]*entry

	mirror Mirror
	logger *zap.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithMirror duplicates appends into an external store.
func WithMirror(m Mirror) Option {
	return func(l *Ledger) { l.mirror = m }
}

// New creates an empty ledger.
func New(logger *zap.Logger, opts ...Option) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		entries: make(map[string]*entry),
		logger:  logger.With(zap.String("component", "ledger")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetMirror attaches a mirror after construction. Mirrors are usually
// per-session (keyed by session ID), which only exists once the session
// state owning this ledger has been created.
func (l *Ledger) SetMirror(m Mirror) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mirror = m
}

// get returns the entry for a worker, creating it on first use.
func (l *Ledger) get(workerID string) *entry {
	l.mu.RLock()
	e, ok := l.entries[workerID]
	l.mu.RUnlock()
	if ok {
		return e
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok = l.entries[workerID]; ok {
		return e
	}
	e = &entry{}
	l.entries[workerID] = e
	return e
}

// Append adds a response to the worker's ordered sequence. Prior
// entries are never overwritten or removed. The response timestamp is
// stamped if the producer left it zero.
func (l *Ledger) Append(workerID string, resp *types.AgentResponse) error {
	if workerID == "" || resp == nil {
		return types.NewError(types.ErrEmptyInput, "ledger append requires a worker id and a response")
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now()
	}

	e := l.get(workerID)
	e.mu.Lock()
	e.responses = append(e.responses, resp)
	n := len(e.responses)
	e.mu.Unlock()

	l.logger.Debug("response appended",
		zap.String("worker_id", workerID),
		zap.Float64("confidence", resp.Confidence),
		zap.Int("history_len", n),
	)

	l.mu.RLock()
	mirror := l.mirror
	l.mu.RUnlock()
	if mirror != nil {
		if err := mirror.MirrorAppend(workerID, resp); err != nil {
			l.logger.Warn("ledger mirror append failed",
				zap.String("worker_id", workerID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Latest returns the most recently appended response for the worker,
// or nil when the worker has not produced one yet.
func (l *Ledger) Latest(workerID string) *types.AgentResponse {
	l.mu.RLock()
	e, ok := l.entries[workerID]
	l.mu.RUnlock()
	if !ok {
		return nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.responses) == 0 {
		return nil
	}
	return e.responses[len(e.responses)-1]
}

// AllLatest returns, for every worker with at least one response, its
// single most recent response. Workers are sorted by identity so the
// comparison set is stable regardless of completion order.
func (l *Ledger) AllLatest() []*types.AgentResponse {
	l.mu.RLock()
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	l.mu.RUnlock()
	sort.Strings(ids)

	out := make([]*types.AgentResponse, 0, len(ids))
	for _, id := range ids {
		if resp := l.Latest(id); resp != nil {
			out = append(out, resp)
		}
	}
	return out
}

// History returns the full ordered append history for a worker. The
// returned slice is a copy; the ledger's own backing array is never
// exposed.
func (l *Ledger) History(workerID string) []*types.AgentResponse {
	l.mu.RLock()
	e, ok := l.entries[workerID]
	l.mu.RUnlock()
	if !ok {
		return nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*types.AgentResponse(nil), e.responses...)
}

// Workers returns the sorted identities of all workers with history.
func (l *Ledger) Workers() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the total number of appended responses across workers.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := 0
	for _, e := range l.entries {
		e.mu.RLock()
		total += len(e.responses)
		e.mu.RUnlock()
	}
	return total
}
