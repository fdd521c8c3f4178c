package types

import "time"

// ConsensusResult is the reconciled answer for one consensus invocation.
// It is never mutated after creation; a re-run produces a new result.
type ConsensusResult struct {
	// PrimaryResponse is the highest-ranked response.
	PrimaryResponse *AgentResponse `json:"primary_response"`
	// SupportingResponses are the remaining responses in rank order.
	SupportingResponses []*AgentResponse `json:"supporting_responses,omitempty"`
	// ConsensusConfidence is mean confidence scaled by agreement level,
	// in [0,1]. A single high outlier cannot inflate it.
	ConsensusConfidence float64 `json:"consensus_confidence"`
	// AgreementLevel is the fraction of responses above the
	// high-confidence threshold.
	AgreementLevel float64 `json:"agreement_level"`
	SynthesisNotes string  `json:"synthesis_notes,omitempty"`
	// MinorityOpinions lists responses below the low-confidence
	// threshold, kept for transparency.
	MinorityOpinions []*AgentResponse `json:"minority_opinions,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}
