package session

import "github.com/chorus-ai/chorus/types"

// Phase is one stage of the fixed query-resolution lifecycle.
type Phase string

const (
	PhaseAnalysis     Phase = "analysis"
	PhaseDelegation   Phase = "delegation"
	PhaseExecution    Phase = "execution"
	PhaseDeliberation Phase = "deliberation"
	PhaseResolution   Phase = "resolution"
	PhaseSynthesis    Phase = "synthesis"
)

// phaseTransitions is the closed transition table. Forward order is
// fixed; resolution is skipped when deliberation finds no conflicts;
// the only back-edges return to execution on re-iteration.
var phaseTransitions = map[Phase][]Phase{
	PhaseAnalysis:     {PhaseDelegation},
	PhaseDelegation:   {PhaseExecution},
	PhaseExecution:    {PhaseDeliberation},
	PhaseDeliberation: {PhaseResolution, PhaseSynthesis, PhaseExecution},
	PhaseResolution:   {PhaseSynthesis},
	PhaseSynthesis:    {PhaseExecution},
}

// CanTransition reports whether from -> to is in the table.
func CanTransition(from, to Phase) bool {
	for _, allowed := range phaseTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Valid reports whether p is one of the six named phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseAnalysis, PhaseDelegation, PhaseExecution,
		PhaseDeliberation, PhaseResolution, PhaseSynthesis:
		return true
	}
	return false
}

func transitionError(from, to Phase) error {
	return types.NewError(types.ErrInvalidTransition,
		"phase transition "+string(from)+" -> "+string(to)+" not permitted")
}
