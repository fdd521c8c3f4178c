package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_ForwardOrder(t *testing.T) {
	t.Parallel()
	forward := []Phase{
		PhaseAnalysis, PhaseDelegation, PhaseExecution,
		PhaseDeliberation, PhaseResolution, PhaseSynthesis,
	}
	for i := 0; i < len(forward)-1; i++ {
		assert.True(t, CanTransition(forward[i], forward[i+1]),
			"%s -> %s", forward[i], forward[i+1])
	}
}

func TestCanTransition_SkipAndBackEdges(t *testing.T) {
	t.Parallel()
	// Resolution is skipped when there is nothing to resolve.
	assert.True(t, CanTransition(PhaseDeliberation, PhaseSynthesis))
	// Re-iteration returns to execution.
	assert.True(t, CanTransition(PhaseSynthesis, PhaseExecution))
	assert.True(t, CanTransition(PhaseDeliberation, PhaseExecution))
}

func TestCanTransition_Rejected(t *testing.T) {
	t.Parallel()
	tests := []struct {
		from Phase
		to   Phase
	}{
		{PhaseAnalysis, PhaseExecution},
		{PhaseAnalysis, PhaseSynthesis},
		{PhaseExecution, PhaseAnalysis},
		{PhaseResolution, PhaseExecution},
		{PhaseSynthesis, PhaseAnalysis},
		{PhaseDelegation, PhaseDeliberation},
	}
	for _, tt := range tests {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestPhaseValid(t *testing.T) {
	t.Parallel()
	assert.True(t, PhaseAnalysis.Valid())
	assert.True(t, PhaseSynthesis.Valid())
	assert.False(t, Phase("review").Valid())
	assert.False(t, Phase("").Valid())
}
