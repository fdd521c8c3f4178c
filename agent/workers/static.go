// Package workers ships reference Worker implementations: a canned
// StaticWorker for demos and tests, and a KnowledgeWorker that answers
// from knowledge-base lookups. Production deployments plug in their own
// Worker implementations; the engine only sees the agent.Worker contract.
package workers

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chorus-ai/chorus/agent"
	"github.com/chorus-ai/chorus/types"
)

// CannedAnswer is one keyword-triggered response of a StaticWorker.
type CannedAnswer struct {
	// Keywords trigger this answer when any of them appears in the
	// sub-query (case-insensitive).
	Keywords   []string
	Content    string
	Confidence float64
	Evidence   []string
	Sources    []string
}

// StaticWorker answers from a fixed rule table. The first canned answer
// whose keywords match wins; unmatched queries get the fallback.
type StaticWorker struct {
	id       string
	role     types.WorkerRole
	answers  []CannedAnswer
	fallback CannedAnswer
	// delay simulates invocation latency, for timeout tests.
	delay time.Duration
}

// StaticOption customizes a StaticWorker.
type StaticOption func(*StaticWorker)

// WithDelay makes every invocation sleep before answering.
func WithDelay(d time.Duration) StaticOption {
	return func(w *StaticWorker) { w.delay = d }
}

// WithFallback replaces the default low-confidence fallback answer.
func WithFallback(answer CannedAnswer) StaticOption {
	return func(w *StaticWorker) { w.fallback = answer }
}

// NewStatic creates a canned worker for the given role.
func NewStatic(role types.WorkerRole, answers []CannedAnswer, opts ...StaticOption) *StaticWorker {
	w := &StaticWorker{
		id:      string(role) + "-" + uuid.New().String()[:8],
		role:    role,
		answers: answers,
		fallback: CannedAnswer{
			Content:    "no specific knowledge for this query",
			Confidence: 0.2,
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ID returns the worker's invocation identity.
func (w *StaticWorker) ID() string { return w.id }

// Role returns the functional capability this worker serves.
func (w *StaticWorker) Role() types.WorkerRole { return w.role }

// Invoke matches the sub-query against the rule table.
func (w *StaticWorker) Invoke(ctx context.Context, subQuery string, _ *agent.InvocationContext) (*types.AgentResponse, error) {
	if w.delay > 0 {
		select {
		case <-time.After(w.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	answer := w.match(subQuery)
	return &types.AgentResponse{
		WorkerID:   w.id,
		Role:       w.role,
		Content:    answer.Content,
		Confidence: answer.Confidence,
		Evidence:   append([]string(nil), answer.Evidence...),
		Sources:    append([]string(nil), answer.Sources...),
		CreatedAt:  time.Now(),
	}, nil
}

func (w *StaticWorker) match(subQuery string) CannedAnswer {
	query := strings.ToLower(subQuery)
	for _, answer := range w.answers {
		for _, kw := range answer.Keywords {
			if strings.Contains(query, strings.ToLower(kw)) {
				return answer
			}
		}
	}
	return w.fallback
}

var _ agent.Worker = (*StaticWorker)(nil)
