package types

import "time"

// ConflictType classifies what two workers disagree about.
type ConflictType string

const (
	// ConflictInformationMismatch occurs when workers report contradictory facts.
	ConflictInformationMismatch ConflictType = "information_mismatch"
	// ConflictApproachDifference occurs when workers disagree on execution approach.
	ConflictApproachDifference ConflictType = "approach_difference"
	// ConflictPriority occurs when there is disagreement about task priorities.
	ConflictPriority ConflictType = "priority_conflict"
	// ConflictResourceCompetition occurs when workers compete for resources.
	ConflictResourceCompetition ConflictType = "resource_competition"
)

// ConflictLevel buckets the confidence gap between two responses. It picks
// a resolution strategy; it never gates detection.
type ConflictLevel string

const (
	ConflictNone   ConflictLevel = "none"
	ConflictLow    ConflictLevel = "low"    // gap < 0.3
	ConflictMedium ConflictLevel = "medium" // 0.3 <= gap <= 0.6
	ConflictHigh   ConflictLevel = "high"   // gap > 0.6
)

// ResolutionStrategy defines how a conflict gets resolved.
type ResolutionStrategy string

const (
	// ResolveHighestConfidence keeps the higher-confidence response.
	ResolveHighestConfidence ResolutionStrategy = "highest_confidence"
	// ResolveMerge combines both responses into one annotated answer.
	ResolveMerge ResolutionStrategy = "merge"
	// ResolveMediate re-invokes a conflict_resolver worker to arbitrate.
	ResolveMediate ResolutionStrategy = "mediate"
	// ResolveEscalate flags the conflict as unresolved-but-acknowledged.
	ResolveEscalate ResolutionStrategy = "escalate"
)

// ConflictReport records a detected mismatch between two responses.
// The detector creates it; the session records the resolution decision
// under its own lock.
type ConflictReport struct {
	ConflictID string       `json:"conflict_id"`
	Type       ConflictType `json:"conflict_type"`
	// InvolvedWorkers holds the identities of the disagreeing workers.
	InvolvedWorkers []string `json:"involved_workers"`
	// ConflictingResponses are the responses that were compared.
	ConflictingResponses []*AgentResponse `json:"conflicting_responses"`
	Description          string           `json:"description"`
	// Severity is the confidence gap between the pair, in [0,1].
	Severity   float64   `json:"severity"`
	DetectedAt time.Time `json:"detected_at"`
	// ResolutionStrategy is set once the resolver has chosen one.
	ResolutionStrategy ResolutionStrategy `json:"resolution_strategy,omitempty"`
	IsResolved         bool               `json:"is_resolved"`
	// ResolutionNotes explains how the conflict was settled or why it
	// was escalated.
	ResolutionNotes string `json:"resolution_notes,omitempty"`
}
