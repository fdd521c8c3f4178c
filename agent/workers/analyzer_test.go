package workers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorus-ai/chorus/types"
)

func TestKeywordAnalyzer_SingleDomain(t *testing.T) {
	t.Parallel()
	a := NewKeywordAnalyzer()

	analysis, err := a.Analyze(context.Background(), "How many vacation days do I get?", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"hr"}, analysis.RequiredDomains)
	assert.False(t, analysis.NeedsSynthesis)
	assert.Less(t, analysis.Complexity, 0.5)
}

func TestKeywordAnalyzer_CrossDomain(t *testing.T) {
	t.Parallel()
	a := NewKeywordAnalyzer()

	analysis, err := a.Analyze(context.Background(),
		"What is the budget for new laptop purchases and who approves the expense?", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"finance", "it"}, analysis.RequiredDomains)
	assert.Equal(t, types.QueryCrossDomain, analysis.QueryType)
	assert.True(t, analysis.NeedsSynthesis)
	assert.GreaterOrEqual(t, analysis.Complexity, 0.45)
}

func TestKeywordAnalyzer_UnknownDomainFallsBackToGeneral(t *testing.T) {
	t.Parallel()
	a := NewKeywordAnalyzer()

	analysis, err := a.Analyze(context.Background(), "Tell me a story", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"general"}, analysis.RequiredDomains)
}

func TestKeywordAnalyzer_UsesConversationContext(t *testing.T) {
	t.Parallel()
	a := NewKeywordAnalyzer()

	analysis, err := a.Analyze(context.Background(), "And how long does that take?",
		"user asked about vpn access earlier")
	require.NoError(t, err)
	assert.Equal(t, []string{"it"}, analysis.RequiredDomains)
}

func TestKeywordAnalyzer_EmptyQuery(t *testing.T) {
	t.Parallel()
	a := NewKeywordAnalyzer()

	_, err := a.Analyze(context.Background(), "   ", "")
	require.Error(t, err)
	assert.Equal(t, types.ErrEmptyInput, types.CodeOf(err))
	assert.True(t, types.IsFatal(err))
}

func TestKeywordAnalyzer_ProceduralClassification(t *testing.T) {
	t.Parallel()
	a := NewKeywordAnalyzer()

	analysis, err := a.Analyze(context.Background(), "How do I reset my password?", "")
	require.NoError(t, err)
	assert.Equal(t, types.QueryProcedural, analysis.QueryType)
	assert.Equal(t, []string{"it"}, analysis.RequiredDomains)
}
