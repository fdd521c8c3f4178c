package conflict

import "github.com/chorus-ai/chorus/types"

// Confidence-gap boundaries for level classification.
const (
	lowGapBound  = 0.3
	highGapBound = 0.6
)

// Classify buckets a confidence gap into a conflict level. The level
// picks a resolution strategy downstream; it never gates detection.
func Classify(confidenceGap float64) types.ConflictLevel {
	switch {
	case confidenceGap <= 0:
		return types.ConflictNone
	case confidenceGap < lowGapBound:
		return types.ConflictLow
	case confidenceGap <= highGapBound:
		return types.ConflictMedium
	default:
		return types.ConflictHigh
	}
}

// ClassifyReport classifies an existing report by its severity.
func ClassifyReport(report *types.ConflictReport) types.ConflictLevel {
	if report == nil {
		return types.ConflictNone
	}
	return Classify(report.Severity)
}
