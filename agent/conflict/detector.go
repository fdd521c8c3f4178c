package conflict

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chorus-ai/chorus/types"
)

// DetectorConfig holds the detection tunables. Zero values are replaced
// by defaults in NewDetector.
type DetectorConfig struct {
	// ConfidenceGapThreshold flags pairs whose confidence difference
	// exceeds it. Default 0.3.
	ConfidenceGapThreshold float64 `yaml:"confidence_gap_threshold"`
	// SimilarityThreshold flags pairs whose content similarity falls
	// below it. Default 0.5.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	// Similarity replaces the default Jaccard measure. Swapping in a
	// semantic scorer is a configuration choice, not a silent change.
	Similarity Similarity `yaml:"-"`
}

// DefaultDetectorConfig returns the default thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		ConfidenceGapThreshold: 0.3,
		SimilarityThreshold:    0.5,
		Similarity:             Jaccard,
	}
}

// Detector runs pairwise conflict detection over a comparison set.
type Detector struct {
	config DetectorConfig
	logger *zap.Logger
	// seq disambiguates conflict IDs for identical pairs detected in
	// the same run; wall-clock alone is not collision-free.
	seq atomic.Uint64
}

// NewDetector creates a detector, filling config zero values with
// defaults.
func NewDetector(config DetectorConfig, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ConfidenceGapThreshold <= 0 {
		config.ConfidenceGapThreshold = 0.3
	}
	if config.SimilarityThreshold <= 0 {
		config.SimilarityThreshold = 0.5
	}
	if config.Similarity == nil {
		config.Similarity = Jaccard
	}
	return &Detector{
		config: config,
		logger: logger.With(zap.String("component", "conflict_detector")),
	}
}

// Detect compares every unordered pair in the comparison set and
// returns the newly found conflicts. It performs no deduplication
// against previously reported conflicts; callers decide whether to
// merge or re-flag.
func (d *Detector) Detect(responses []*types.AgentResponse) []*types.ConflictReport {
	var conflicts []*types.ConflictReport

	for i := 0; i < len(responses); i++ {
		for j := i + 1; j < len(responses); j++ {
			if report := d.compare(responses[i], responses[j]); report != nil {
				conflicts = append(conflicts, report)
			}
		}
	}

	if len(conflicts) > 0 {
		d.logger.Info("conflicts detected",
			zap.Int("count", len(conflicts)),
			zap.Int("comparison_set", len(responses)),
		)
	}
	return conflicts
}

// compare evaluates one unordered pair. Both the gap and the
// similarity are symmetric, so argument order cannot change the result.
func (d *Detector) compare(a, b *types.AgentResponse) *types.ConflictReport {
	gap := a.Confidence - b.Confidence
	if gap < 0 {
		gap = -gap
	}
	if gap <= d.config.ConfidenceGapThreshold {
		return nil
	}

	similarity := d.config.Similarity(a.Content, b.Content)
	if similarity >= d.config.SimilarityThreshold {
		return nil
	}

	d.logger.Debug("pair flagged",
		zap.String("worker_a", a.WorkerID),
		zap.String("worker_b", b.WorkerID),
		zap.Float64("confidence_gap", gap),
		zap.Float64("similarity", similarity),
	)

	return &types.ConflictReport{
		ConflictID:           d.conflictID(a, b),
		Type:                 types.ConflictInformationMismatch,
		InvolvedWorkers:      []string{a.WorkerID, b.WorkerID},
		ConflictingResponses: []*types.AgentResponse{a, b},
		Description: fmt.Sprintf(
			"workers %s and %s disagree: confidence gap %.2f, content similarity %.2f",
			a.WorkerID, b.WorkerID, gap, similarity),
		Severity:   gap,
		DetectedAt: time.Now(),
	}
}

// conflictID derives a collision-resistant identifier from the worker
// pair and the response timestamps, plus a monotonic counter so
// concurrent detection runs over the same pair still get distinct IDs.
func (d *Detector) conflictID(a, b *types.AgentResponse) string {
	first, second := a, b
	if second.WorkerID < first.WorkerID {
		first, second = second, first
	}

	h := sha256.New()
	h.Write([]byte(first.WorkerID))
	h.Write([]byte{0})
	h.Write([]byte(second.WorkerID))
	h.Write([]byte{0})
	h.Write([]byte(first.CreatedAt.UTC().Format(time.RFC3339Nano)))
	h.Write([]byte{0})
	h.Write([]byte(second.CreatedAt.UTC().Format(time.RFC3339Nano)))

	return "cf-" + hex.EncodeToString(h.Sum(nil))[:16] + "-" + strconv.FormatUint(d.seq.Add(1), 10)
}
