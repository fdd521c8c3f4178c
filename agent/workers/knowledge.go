package workers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chorus-ai/chorus/agent"
	"github.com/chorus-ai/chorus/agent/conflict"
	"github.com/chorus-ai/chorus/types"
)

// KnowledgeWorker answers from knowledge-base hits. Confidence is
// derived from hit scores so a thin retrieval produces a low-confidence
// answer instead of a confident guess.
type KnowledgeWorker struct {
	id       string
	role     types.WorkerRole
	kb       agent.KnowledgeBase
	maxDocs  int
	minScore float64
}

// KnowledgeOption customizes a KnowledgeWorker.
type KnowledgeOption func(*KnowledgeWorker)

// WithMaxDocuments caps the hits consulted per sub-query.
func WithMaxDocuments(n int) KnowledgeOption {
	return func(w *KnowledgeWorker) { w.maxDocs = n }
}

// WithMinScore drops hits scored below the floor.
func WithMinScore(score float64) KnowledgeOption {
	return func(w *KnowledgeWorker) { w.minScore = score }
}

// NewKnowledge creates a knowledge-backed worker for the given role.
func NewKnowledge(role types.WorkerRole, kb agent.KnowledgeBase, opts ...KnowledgeOption) *KnowledgeWorker {
	w := &KnowledgeWorker{
		id:      string(role) + "-" + uuid.New().String()[:8],
		role:    role,
		kb:      kb,
		maxDocs: 5,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ID returns the worker's invocation identity.
func (w *KnowledgeWorker) ID() string { return w.id }

// Role returns the functional capability this worker serves.
func (w *KnowledgeWorker) Role() types.WorkerRole { return w.role }

// Invoke searches the knowledge base and composes an answer from the
// best hits. Pre-fetched documents in the invocation context are merged
// with the worker's own search results.
func (w *KnowledgeWorker) Invoke(ctx context.Context, subQuery string, ictx *agent.InvocationContext) (*types.AgentResponse, error) {
	hits, err := w.kb.Search(ctx, subQuery, w.maxDocs)
	if err != nil {
		return nil, types.NewError(types.ErrWorkerFailed, "knowledge search failed").WithCause(err)
	}
	if ictx != nil {
		hits = append(hits, ictx.Documents...)
	}
	hits = w.filter(hits)

	if len(hits) == 0 {
		return &types.AgentResponse{
			WorkerID:   w.id,
			Role:       w.role,
			Content:    "no relevant knowledge found",
			Confidence: 0.1,
			CreatedAt:  time.Now(),
		}, nil
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > w.maxDocs {
		hits = hits[:w.maxDocs]
	}

	evidence := make([]string, 0, len(hits))
	sources := make([]string, 0, len(hits))
	for _, doc := range hits {
		evidence = append(evidence, doc.Content)
		if doc.Source != "" {
			sources = append(sources, doc.Source)
		} else {
			sources = append(sources, doc.ID)
		}
	}

	return &types.AgentResponse{
		WorkerID:   w.id,
		Role:       w.role,
		Content:    hits[0].Content,
		Confidence: confidenceFrom(hits),
		Evidence:   evidence,
		Sources:    sources,
		CreatedAt:  time.Now(),
		Reasoning:  fmt.Sprintf("composed from %d knowledge-base hits", len(hits)),
	}, nil
}

func (w *KnowledgeWorker) filter(hits []types.Document) []types.Document {
	if w.minScore <= 0 {
		return hits
	}
	out := hits[:0]
	for _, doc := range hits {
		if doc.Score >= w.minScore {
			out = append(out, doc)
		}
	}
	return out
}

// confidenceFrom blends the top hit's score with hit coverage. A single
// strong hit still caps out below a corroborated answer.
func confidenceFrom(hits []types.Document) float64 {
	top := hits[0].Score
	if top > 1 {
		top = 1
	}
	coverage := float64(len(hits)) / 5.0
	if coverage > 1 {
		coverage = 1
	}
	conf := top * (0.7 + 0.3*coverage)
	if conf > 1 {
		conf = 1
	}
	return conf
}

// MemoryKnowledgeBase is an in-process KnowledgeBase over a fixed
// document set, scored by term overlap with the query.
type MemoryKnowledgeBase struct {
	docs       []types.Document
	similarity conflict.Similarity
}

// NewMemoryKnowledgeBase indexes the given documents.
func NewMemoryKnowledgeBase(docs []types.Document) *MemoryKnowledgeBase {
	return &MemoryKnowledgeBase{docs: docs, similarity: conflict.Jaccard}
}

// Search scores every document against the query and returns the top
// limit hits, best first. Zero-score documents are dropped.
func (kb *MemoryKnowledgeBase) Search(ctx context.Context, query string, limit int) ([]types.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	query = strings.ToLower(query)
	var hits []types.Document
	for _, doc := range kb.docs {
		score := kb.similarity(query, doc.Title+" "+doc.Content)
		if score <= 0 {
			continue
		}
		scored := doc
		scored.Score = score
		hits = append(hits, scored)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

var _ agent.Worker = (*KnowledgeWorker)(nil)
var _ agent.KnowledgeBase = (*MemoryKnowledgeBase)(nil)
