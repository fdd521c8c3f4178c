package conflict

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chorus-ai/chorus/types"
)

func resp(workerID string, conf float64, content string) *types.AgentResponse {
	return &types.AgentResponse{
		WorkerID:   workerID,
		Role:       types.RoleGeneralAssistant,
		Content:    content,
		Confidence: conf,
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDetect_InformationMismatchScenario(t *testing.T) {
	t.Parallel()
	d := NewDetector(DefaultDetectorConfig(), zap.NewNop())

	set := []*types.AgentResponse{
		resp("hr-1", 0.9, "policy X applies"),
		resp("fin-1", 0.55, "policy Y applies, totally different wording"),
	}

	conflicts := d.Detect(set)
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, types.ConflictInformationMismatch, c.Type)
	assert.InDelta(t, 0.35, c.Severity, 1e-9)
	assert.ElementsMatch(t, []string{"hr-1", "fin-1"}, c.InvolvedWorkers)
	assert.Len(t, c.ConflictingResponses, 2)
	assert.False(t, c.IsResolved)
	assert.NotEmpty(t, c.ConflictID)
}

func TestDetect_NoConflictBelowThresholds(t *testing.T) {
	t.Parallel()
	d := NewDetector(DefaultDetectorConfig(), zap.NewNop())

	tests := []struct {
		name string
		set  []*types.AgentResponse
	}{
		{
			"small confidence gap",
			[]*types.AgentResponse{
				resp("a", 0.8, "policy X applies"),
				resp("b", 0.6, "something else entirely different"),
			},
		},
		{
			"high similarity",
			[]*types.AgentResponse{
				resp("a", 0.95, "the travel policy applies to contractors"),
				resp("b", 0.4, "the travel policy applies to contractors too"),
			},
		},
		{
			"single response",
			[]*types.AgentResponse{resp("a", 0.9, "alone")},
		},
		{
			"empty set",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Empty(t, d.Detect(tt.set))
		})
	}
}

func TestDetect_SeveritySymmetric(t *testing.T) {
	t.Parallel()
	d := NewDetector(DefaultDetectorConfig(), zap.NewNop())

	a := resp("a", 0.9, "use vendor alpha for the rollout")
	b := resp("b", 0.5, "procurement must pick vendor beta")

	ab := d.Detect([]*types.AgentResponse{a, b})
	ba := d.Detect([]*types.AgentResponse{b, a})
	require.Len(t, ab, 1)
	require.Len(t, ba, 1)
	assert.Equal(t, ab[0].Severity, ba[0].Severity)
}

func TestDetect_AllPairsCompared(t *testing.T) {
	t.Parallel()
	d := NewDetector(DefaultDetectorConfig(), zap.NewNop())

	// Three mutually disagreeing responses: every unordered pair with a
	// gap over 0.3 is flagged, so (0.9,0.5), (0.9,0.1), (0.5,0.1).
	set := []*types.AgentResponse{
		resp("a", 0.9, "alpha"),
		resp("b", 0.5, "beta"),
		resp("c", 0.1, "gamma"),
	}
	assert.Len(t, d.Detect(set), 3)
}

func TestDetect_CustomThresholdsAndSimilarity(t *testing.T) {
	t.Parallel()
	cfg := DetectorConfig{
		ConfidenceGapThreshold: 0.1,
		SimilarityThreshold:    0.9,
		Similarity:             func(a, b string) float64 { return 0.0 },
	}
	d := NewDetector(cfg, zap.NewNop())

	set := []*types.AgentResponse{
		resp("a", 0.8, "same words"),
		resp("b", 0.65, "same words"),
	}
	assert.Len(t, d.Detect(set), 1, "injected measure overrides Jaccard")
}

func TestConflictID_CollisionFreeUnderConcurrency(t *testing.T) {
	t.Parallel()
	d := NewDetector(DefaultDetectorConfig(), zap.NewNop())

	// Identical pair, identical timestamps, many concurrent runs: IDs
	// must still never collide.
	set := []*types.AgentResponse{
		resp("a", 0.9, "alpha"),
		resp("b", 0.4, "beta"),
	}

	const runs = 50
	ids := make(chan string, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- d.Detect(set)[0].ConflictID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, runs)
	for id := range ids {
		require.False(t, seen[id], "duplicate conflict id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, runs)
}

func TestDetect_NoDeduplicationAcrossRuns(t *testing.T) {
	t.Parallel()
	d := NewDetector(DefaultDetectorConfig(), zap.NewNop())
	set := []*types.AgentResponse{
		resp("a", 0.9, "alpha"),
		resp("b", 0.4, "beta"),
	}

	first := d.Detect(set)
	second := d.Detect(set)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ConflictID, second[0].ConflictID,
		"re-detection re-flags with a fresh id; dedup is the caller's call")
}

func TestDefaultDetectorConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultDetectorConfig()
	assert.Equal(t, 0.3, cfg.ConfidenceGapThreshold)
	assert.Equal(t, 0.5, cfg.SimilarityThreshold)
	assert.NotNil(t, cfg.Similarity)
}

func BenchmarkDetect(b *testing.B) {
	d := NewDetector(DefaultDetectorConfig(), zap.NewNop())
	set := make([]*types.AgentResponse, 10)
	for i := range set {
		set[i] = resp(fmt.Sprintf("w%d", i), float64(i)/10.0, fmt.Sprintf("answer variant %d about the policy", i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Detect(set)
	}
}
