package agent

import (
	"context"

	"github.com/chorus-ai/chorus/types"
)

// InvocationContext carries everything a worker may consult before
// answering a sub-query.
type InvocationContext struct {
	// SessionID identifies the query resolution this invocation
	// belongs to.
	SessionID string
	// ConversationContext is prior dialogue relevant to the query.
	ConversationContext string
	// Documents are knowledge-base hits pre-fetched for the sub-query.
	Documents []types.Document
	// PriorResponses are earlier answers from other workers, present
	// on re-iteration so specialists can refine rather than repeat.
	PriorResponses []*types.AgentResponse
	// Iteration is the current session iteration, starting at 1.
	Iteration int
}

// Worker is the per-domain specialist invocation capability. Invoke
// must return within the deadline carried by ctx or the coordinator
// treats the task as failed.
type Worker interface {
	// ID returns the worker's invocation identity.
	ID() string
	// Role returns the functional capability this worker serves.
	Role() types.WorkerRole
	// Invoke answers one sub-query with a scored response.
	Invoke(ctx context.Context, subQuery string, ictx *InvocationContext) (*types.AgentResponse, error)
}

// Analyzer is the query-analysis capability.
type Analyzer interface {
	Analyze(ctx context.Context, rawQuery, conversationContext string) (*types.QueryAnalysis, error)
}

// KnowledgeBase is the document lookup capability specialists consult
// before responding.
type KnowledgeBase interface {
	Search(ctx context.Context, query string, limit int) ([]types.Document, error)
}
