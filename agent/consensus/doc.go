// Package consensus reconciles a set of worker responses into one
// ranked, confidence-weighted result.
//
// Build is a pure function: identical input always yields an identical
// ConsensusResult, which keeps re-runs idempotent and the output
// testable. Calling it with an empty response set is a caller contract
// violation, surfaced as a fatal EMPTY_INPUT error, never a silent
// default.
package consensus
