package conflict

import "strings"

// Similarity scores how alike two answer texts are, in [0,1].
// Implementations must be symmetric. The detector treats the measure as
// a configuration choice so a semantic scorer can replace the default
// without changing detection semantics.
type Similarity func(a, b string) float64

// Jaccard is the default similarity measure: lowercase whitespace
// tokenization into sets, |intersection| / |union|. Returns 0.0 when
// either token set is empty.
func Jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
