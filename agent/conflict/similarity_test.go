package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJaccard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "policy x applies", "policy x applies", 1.0},
		{"case and duplicates ignored", "Policy POLICY x", "policy x", 1.0},
		{"disjoint", "alpha beta", "gamma delta", 0.0},
		{"half overlap", "a b c d", "c d e f", 1.0 / 3.0},
		{"empty left", "", "a b", 0.0},
		{"empty right", "a b", "", 0.0},
		{"both empty", "", "", 0.0},
		{"whitespace only", "   \t  ", "a", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestJaccard_Symmetric(t *testing.T) {
	t.Parallel()
	a := "the reimbursement policy covers travel"
	b := "travel budget approvals go through finance"
	assert.Equal(t, Jaccard(a, b), Jaccard(b, a))
}

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		gap  float64
		want string
	}{
		{0.0, "none"},
		{-0.1, "none"},
		{0.1, "low"},
		{0.29, "low"},
		{0.3, "medium"},
		{0.45, "medium"},
		{0.6, "medium"},
		{0.61, "high"},
		{1.0, "high"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(Classify(tt.gap)), "gap=%v", tt.gap)
	}
}
