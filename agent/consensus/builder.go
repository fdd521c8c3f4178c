package consensus

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/chorus-ai/chorus/types"
)

// BuilderConfig holds the consensus tunables.
type BuilderConfig struct {
	// HighConfidenceThreshold: responses strictly above it count toward
	// the agreement level. Default 0.7.
	HighConfidenceThreshold float64 `yaml:"high_confidence_threshold"`
	// LowConfidenceThreshold: responses strictly below it are listed as
	// minority opinions. Default 0.5.
	LowConfidenceThreshold float64 `yaml:"low_confidence_threshold"`
}

// DefaultBuilderConfig returns the default thresholds.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		HighConfidenceThreshold: 0.7,
		LowConfidenceThreshold:  0.5,
	}
}

// Builder ranks response sets into consensus results.
type Builder struct {
	config BuilderConfig
	logger *zap.Logger
}

// NewBuilder creates a builder, filling config zero values with
// defaults.
func NewBuilder(config BuilderConfig, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.HighConfidenceThreshold <= 0 {
		config.HighConfidenceThreshold = 0.7
	}
	if config.LowConfidenceThreshold <= 0 {
		config.LowConfidenceThreshold = 0.5
	}
	return &Builder{
		config: config,
		logger: logger.With(zap.String("component", "consensus_builder")),
	}
}

// Build ranks the response set and computes the consensus metrics.
//
// Ranking sorts by confidence descending, ties broken by earliest
// CreatedAt so the result is deterministic. consensus_confidence is the
// mean confidence scaled by the agreement level: an average inflated by
// one high outlier still yields a low consensus when few responses are
// actually high-confidence.
func (b *Builder) Build(responses []*types.AgentResponse) (*types.ConsensusResult, error) {
	if len(responses) == 0 {
		return nil, types.NewError(types.ErrEmptyInput, "consensus requires at least one response")
	}

	ranked := make([]*types.AgentResponse, len(responses))
	copy(ranked, responses)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
	})

	var sum float64
	highCount := 0
	var minority []*types.AgentResponse
	for _, r := range ranked {
		sum += r.Confidence
		if r.Confidence > b.config.HighConfidenceThreshold {
			highCount++
		}
		if r.Confidence < b.config.LowConfidenceThreshold {
			minority = append(minority, r)
		}
	}

	n := float64(len(ranked))
	agreement := float64(highCount) / n
	confidence := (sum / n) * agreement

	result := &types.ConsensusResult{
		PrimaryResponse:     ranked[0],
		SupportingResponses: ranked[1:],
		ConsensusConfidence: confidence,
		AgreementLevel:      agreement,
		MinorityOpinions:    minority,
		SynthesisNotes: fmt.Sprintf(
			"%d responses ranked; %d above the high-confidence threshold",
			len(ranked), highCount),
		CreatedAt: ranked[0].CreatedAt,
	}

	b.logger.Debug("consensus built",
		zap.Int("responses", len(ranked)),
		zap.Float64("agreement_level", agreement),
		zap.Float64("consensus_confidence", confidence),
	)
	return result, nil
}
