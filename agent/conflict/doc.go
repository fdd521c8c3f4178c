// Package conflict detects disagreements between workers' latest
// responses.
//
// Detection is pairwise over the comparison set: a pair is flagged when
// the confidence gap exceeds the gap threshold and content similarity
// falls below the similarity threshold. Both thresholds and the
// similarity measure itself are configuration, not behavior baked into
// the detector; the default measure is token-set Jaccard.
//
// The package also provides the conflict level classification
// (none/low/medium/high) used by the resolver to pick a strategy.
package conflict
