package types

import "time"

// AgentResponse is one scored answer produced by exactly one worker
// invocation. Responses are immutable once created; the ledger owns the
// entry a response is appended to and never mutates it.
type AgentResponse struct {
	// WorkerID identifies the invocation that produced this response.
	WorkerID string `json:"worker_id"`
	// Role is the functional capability of the producing worker.
	Role WorkerRole `json:"role"`
	// Content is the text answer.
	Content string `json:"content"`
	// Confidence is the worker's self-reported confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// Evidence is the ordered sequence of supporting statements.
	Evidence []string `json:"evidence,omitempty"`
	// Sources is the set of provenance identifiers backing the answer.
	Sources []string `json:"sources,omitempty"`
	// CreatedAt is the production timestamp, used as the deterministic
	// tie-breaker when ranking equal-confidence responses.
	CreatedAt time.Time `json:"created_at"`
	// Reasoning is an optional explanation trace.
	Reasoning string `json:"reasoning,omitempty"`
}

// Clone returns a deep copy. Consumers that re-order or annotate response
// sets work on copies so the ledger history stays untouched.
func (r *AgentResponse) Clone() *AgentResponse {
	if r == nil {
		return nil
	}
	out := *r
	if r.Evidence != nil {
		out.Evidence = append([]string(nil), r.Evidence...)
	}
	if r.Sources != nil {
		out.Sources = append([]string(nil), r.Sources...)
	}
	return &out
}

// Document is a knowledge-base lookup hit handed to specialists before
// they answer.
type Document struct {
	ID      string  `json:"id"`
	Title   string  `json:"title,omitempty"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
	Source  string  `json:"source,omitempty"`
}
