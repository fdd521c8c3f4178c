package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chorus-ai/chorus/agent/ledger"
	"github.com/chorus-ai/chorus/types"
)

// DefaultMaxIterations is the hard iteration cap when the config leaves
// it unset.
const DefaultMaxIterations = 10

// State is the shared ledger plus phase tracker for one query
// resolution. The coordinator is its sole mutator; snapshot reads may
// happen concurrently from a progress-streaming caller, so reads and
// writes are guarded.
type State struct {
	mu sync.RWMutex

	sessionID string
	ledger    *ledger.Ledger
	tasks     map[string]*types.AgentTask
	conflicts []*types.ConflictReport
	consensus []*types.ConsensusResult

	currentPhase    Phase
	iterationCount  int
	maxIterations   int
	phaseTimestamps map[Phase]time.Time
	budgetExhausted bool

	logger *zap.Logger
}

// NewState creates session state in the analysis phase.
func NewState(l *ledger.Ledger, maxIterations int, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if l == nil {
		l = ledger.New(logger)
	}
	s := &State{
		sessionID:       uuid.New().String(),
		ledger:          l,
		tasks:           make(map[string]*types.AgentTask),
		currentPhase:    PhaseAnalysis,
		iterationCount:  1,
		maxIterations:   maxIterations,
		phaseTimestamps: map[Phase]time.Time{PhaseAnalysis: time.Now()},
		logger:          logger.With(zap.String("component", "session")),
	}
	return s
}

// ID returns the session identity.
func (s *State) ID() string { return s.sessionID }

// Ledger exposes the response ledger for appends from dispatched tasks.
func (s *State) Ledger() *ledger.Ledger { return s.ledger }

// Phase returns the current phase.
func (s *State) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPhase
}

// Transition moves the session to the target phase, rejecting anything
// not in the transition table, and stamps the phase entry time.
func (s *State) Transition(to Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !CanTransition(s.currentPhase, to) {
		return transitionError(s.currentPhase, to)
	}
	s.logger.Info("phase transition",
		zap.String("session_id", s.sessionID),
		zap.String("from", string(s.currentPhase)),
		zap.String("to", string(to)),
		zap.Int("iteration", s.iterationCount),
	)
	s.currentPhase = to
	s.phaseTimestamps[to] = time.Now()
	return nil
}

// PhaseEnteredAt returns when the phase was last entered, used for
// latency accounting and stalled-phase detection.
func (s *State) PhaseEnteredAt(p Phase) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.phaseTimestamps[p]
	return ts, ok
}

// Iteration returns the current iteration count, starting at 1.
func (s *State) Iteration() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.iterationCount
}

// BeginIteration increments the iteration count. It fails with a
// BUDGET_EXHAUSTED error when the cap is already reached; the invariant
// iteration_count <= max_iterations always holds.
func (s *State) BeginIteration() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.iterationCount >= s.maxIterations {
		s.budgetExhausted = true
		return types.NewError(types.ErrBudgetExhausted, "max iterations reached")
	}
	s.iterationCount++
	return nil
}

// MarkBudgetExhausted flags the session as having run out of budget.
func (s *State) MarkBudgetExhausted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgetExhausted = true
}

// AddTask registers a delegated task. Task IDs are unique; re-adding an
// existing ID is ignored because tasks are never replaced.
func (s *State) AddTask(task *types.AgentTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.TaskID]; exists {
		return
	}
	s.tasks[task.TaskID] = task
}

// Task returns the task with the given ID, or nil.
func (s *State) Task(taskID string) *types.AgentTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks[taskID]
}

// Tasks returns the task map. The coordinator owns mutation; other
// callers must treat the result as read-only.
func (s *State) Tasks() map[string]*types.AgentTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*types.AgentTask, len(s.tasks))
	for id, t := range s.tasks {
		out[id] = t
	}
	return out
}

// AddConflicts appends newly detected conflicts to the session history.
func (s *State) AddConflicts(reports []*types.ConflictReport) {
	if len(reports) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = append(s.conflicts, reports...)
}

// ResolveConflict records a resolution decision on the stored conflict,
// returning false for unknown IDs. Mutation happens under the session
// lock so a concurrent snapshot never observes a torn report.
func (s *State) ResolveConflict(conflictID string, strategy types.ResolutionStrategy, notes string, resolved bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conflicts {
		if c.ConflictID == conflictID {
			c.ResolutionStrategy = strategy
			c.ResolutionNotes = notes
			c.IsResolved = resolved
			return true
		}
	}
	return false
}

// Conflicts returns the full conflict history for the session.
func (s *State) Conflicts() []*types.ConflictReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*types.ConflictReport(nil), s.conflicts...)
}

// UnresolvedConflicts returns conflicts not yet resolved or escalated.
func (s *State) UnresolvedConflicts() []*types.ConflictReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*types.ConflictReport
	for _, c := range s.conflicts {
		if !c.IsResolved {
			out = append(out, c)
		}
	}
	return out
}

// AddConsensus appends a consensus result to the session history.
func (s *State) AddConsensus(result *types.ConsensusResult) {
	if result == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consensus = append(s.consensus, result)
}

// LatestConsensus returns the most recent consensus result, or nil.
func (s *State) LatestConsensus() *types.ConsensusResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.consensus) == 0 {
		return nil
	}
	return s.consensus[len(s.consensus)-1]
}

// BestConsensus returns the highest-confidence consensus seen so far,
// used for best-effort degradation on budget exhaustion.
func (s *State) BestConsensus() *types.ConsensusResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *types.ConsensusResult
	for _, c := range s.consensus {
		if best == nil || c.ConsensusConfidence > best.ConsensusConfidence {
			best = c
		}
	}
	return best
}

// Snapshot is the read-only view exposed for progress streaming and
// persistence.
type Snapshot struct {
	SessionID       string                  `json:"session_id"`
	Phase           Phase                   `json:"phase"`
	Iteration       int                     `json:"iteration"`
	MaxIterations   int                     `json:"max_iterations"`
	BudgetExhausted bool                    `json:"budget_exhausted"`
	Conflicts       []*types.ConflictReport `json:"conflicts,omitempty"`
	LatestConsensus *types.ConsensusResult  `json:"latest_consensus,omitempty"`
	PhaseTimestamps map[Phase]time.Time     `json:"phase_timestamps"`
	ResponseCount   int                     `json:"response_count"`
}

// Snapshot captures the current state for an outside reader.
func (s *State) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stamps := make(map[Phase]time.Time, len(s.phaseTimestamps))
	for p, ts := range s.phaseTimestamps {
		stamps[p] = ts
	}
	// Reports are copied, not aliased: a held snapshot must not change
	// when a later ResolveConflict flips their fields.
	conflicts := make([]*types.ConflictReport, len(s.conflicts))
	for i, c := range s.conflicts {
		cp := *c
		conflicts[i] = &cp
	}
	var latest *types.ConsensusResult
	if len(s.consensus) > 0 {
		latest = s.consensus[len(s.consensus)-1]
	}
	return &Snapshot{
		SessionID:       s.sessionID,
		Phase:           s.currentPhase,
		Iteration:       s.iterationCount,
		MaxIterations:   s.maxIterations,
		BudgetExhausted: s.budgetExhausted,
		Conflicts:       conflicts,
		LatestConsensus: latest,
		PhaseTimestamps: stamps,
		ResponseCount:   s.ledger.Len(),
	}
}

// FinalResult is the terminal output: the accepted (or best-effort)
// consensus plus the full conflict history for audit.
type FinalResult struct {
	SessionID       string                  `json:"session_id"`
	Consensus       *types.ConsensusResult  `json:"consensus"`
	Conflicts       []*types.ConflictReport `json:"conflicts,omitempty"`
	Escalated       []*types.ConflictReport `json:"escalated,omitempty"`
	Iterations      int                     `json:"iterations"`
	BudgetExhausted bool                    `json:"budget_exhausted"`
}

// Final assembles the terminal result around the given consensus.
func (s *State) Final(consensus *types.ConsensusResult) *FinalResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var escalated []*types.ConflictReport
	for _, c := range s.conflicts {
		if c.ResolutionStrategy == types.ResolveEscalate {
			escalated = append(escalated, c)
		}
	}
	return &FinalResult{
		SessionID:       s.sessionID,
		Consensus:       consensus,
		Conflicts:       append([]*types.ConflictReport(nil), s.conflicts...),
		Escalated:       escalated,
		Iterations:      s.iterationCount,
		BudgetExhausted: s.budgetExhausted,
	}
}
