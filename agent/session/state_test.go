package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chorus-ai/chorus/agent/ledger"
	"github.com/chorus-ai/chorus/types"
)

func newState(t *testing.T, maxIterations int) *State {
	t.Helper()
	return NewState(ledger.New(zap.NewNop()), maxIterations, zap.NewNop())
}

func TestState_StartsInAnalysis(t *testing.T) {
	t.Parallel()
	s := newState(t, 0)
	assert.Equal(t, PhaseAnalysis, s.Phase())
	assert.Equal(t, 1, s.Iteration())
	assert.NotEmpty(t, s.ID())

	_, stamped := s.PhaseEnteredAt(PhaseAnalysis)
	assert.True(t, stamped)
	_, stamped = s.PhaseEnteredAt(PhaseSynthesis)
	assert.False(t, stamped)
}

func TestState_TransitionStampsTimestamp(t *testing.T) {
	t.Parallel()
	s := newState(t, 0)

	require.NoError(t, s.Transition(PhaseDelegation))
	assert.Equal(t, PhaseDelegation, s.Phase())
	ts, ok := s.PhaseEnteredAt(PhaseDelegation)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestState_TransitionRejectsOffTable(t *testing.T) {
	t.Parallel()
	s := newState(t, 0)

	err := s.Transition(PhaseSynthesis)
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidTransition, types.CodeOf(err))
	assert.Equal(t, PhaseAnalysis, s.Phase(), "phase unchanged on rejection")
}

func TestState_IterationBudget(t *testing.T) {
	t.Parallel()
	s := newState(t, 3)

	require.NoError(t, s.BeginIteration()) // 2
	require.NoError(t, s.BeginIteration()) // 3
	err := s.BeginIteration()
	require.Error(t, err)
	assert.Equal(t, types.ErrBudgetExhausted, types.CodeOf(err))
	assert.Equal(t, 3, s.Iteration(), "iteration_count never exceeds max_iterations")
	assert.True(t, s.Snapshot().BudgetExhausted)
}

func TestState_DefaultMaxIterations(t *testing.T) {
	t.Parallel()
	s := newState(t, 0)
	for i := 0; i < DefaultMaxIterations-1; i++ {
		require.NoError(t, s.BeginIteration())
	}
	assert.Error(t, s.BeginIteration())
	assert.Equal(t, DefaultMaxIterations, s.Iteration())
}

func TestState_TasksNeverReplaced(t *testing.T) {
	t.Parallel()
	s := newState(t, 0)

	original := &types.AgentTask{TaskID: "t1", Status: types.TaskPending}
	s.AddTask(original)
	s.AddTask(&types.AgentTask{TaskID: "t1", Status: types.TaskFailed})

	assert.Same(t, original, s.Task("t1"))
	assert.Len(t, s.Tasks(), 1)
}

func TestState_ConflictTracking(t *testing.T) {
	t.Parallel()
	s := newState(t, 0)

	s.AddConflicts([]*types.ConflictReport{
		{ConflictID: "c1"},
		{ConflictID: "c2", IsResolved: true},
	})

	assert.Len(t, s.Conflicts(), 2)
	unresolved := s.UnresolvedConflicts()
	require.Len(t, unresolved, 1)
	assert.Equal(t, "c1", unresolved[0].ConflictID)
}

func TestState_ResolveConflict(t *testing.T) {
	t.Parallel()
	s := newState(t, 0)
	s.AddConflicts([]*types.ConflictReport{{ConflictID: "c1"}})

	snap := s.Snapshot()
	require.True(t, s.ResolveConflict("c1", types.ResolveMediate, "mediated by m-1", true))
	assert.False(t, s.ResolveConflict("unknown", types.ResolveMerge, "", true))

	got := s.Conflicts()[0]
	assert.True(t, got.IsResolved)
	assert.Equal(t, types.ResolveMediate, got.ResolutionStrategy)
	assert.Equal(t, "mediated by m-1", got.ResolutionNotes)

	// The snapshot taken before the decision keeps the state it captured.
	require.Len(t, snap.Conflicts, 1)
	assert.False(t, snap.Conflicts[0].IsResolved)
	assert.Empty(t, snap.Conflicts[0].ResolutionStrategy)
}

func TestState_BestConsensus(t *testing.T) {
	t.Parallel()
	s := newState(t, 0)

	s.AddConsensus(&types.ConsensusResult{ConsensusConfidence: 0.4})
	s.AddConsensus(&types.ConsensusResult{ConsensusConfidence: 0.75})
	s.AddConsensus(&types.ConsensusResult{ConsensusConfidence: 0.6})

	assert.Equal(t, 0.6, s.LatestConsensus().ConsensusConfidence)
	assert.Equal(t, 0.75, s.BestConsensus().ConsensusConfidence)
}

func TestState_SnapshotAndFinal(t *testing.T) {
	t.Parallel()
	s := newState(t, 5)
	require.NoError(t, s.Ledger().Append("w1", &types.AgentResponse{
		WorkerID: "w1", Confidence: 0.9, Content: "x",
	}))
	s.AddConflicts([]*types.ConflictReport{
		{ConflictID: "c1", ResolutionStrategy: types.ResolveEscalate, IsResolved: true},
		{ConflictID: "c2", ResolutionStrategy: types.ResolveHighestConfidence, IsResolved: true},
	})
	consensus := &types.ConsensusResult{ConsensusConfidence: 0.8}
	s.AddConsensus(consensus)

	snap := s.Snapshot()
	assert.Equal(t, s.ID(), snap.SessionID)
	assert.Equal(t, PhaseAnalysis, snap.Phase)
	assert.Equal(t, 1, snap.ResponseCount)
	assert.Equal(t, consensus, snap.LatestConsensus)
	assert.Len(t, snap.Conflicts, 2)

	final := s.Final(consensus)
	assert.Equal(t, consensus, final.Consensus)
	assert.Len(t, final.Conflicts, 2)
	require.Len(t, final.Escalated, 1)
	assert.Equal(t, "c1", final.Escalated[0].ConflictID)
}
