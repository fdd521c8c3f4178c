package workers

import (
	"context"
	"sort"
	"strings"

	"github.com/chorus-ai/chorus/agent"
	"github.com/chorus-ai/chorus/types"
)

// domainKeywords maps knowledge domains to trigger terms. The analyzer
// tags a query with every domain whose terms appear in it.
var domainKeywords = map[string][]string{
	"hr":      {"vacation", "leave", "holiday", "onboarding", "benefits", "payroll policy", "sick", "hiring", "pto"},
	"finance": {"budget", "expense", "reimbursement", "invoice", "cost", "salary", "tax", "payment"},
	"it":      {"laptop", "vpn", "password", "access", "software", "account", "email", "network", "server"},
}

// KeywordAnalyzer is a heuristic agent.Analyzer over fixed keyword
// tables. Deployments with an LLM-backed analyzer replace it; the
// engine only sees the contract.
type KeywordAnalyzer struct{}

// NewKeywordAnalyzer creates the heuristic analyzer.
func NewKeywordAnalyzer() *KeywordAnalyzer { return &KeywordAnalyzer{} }

// Analyze tags domains by keyword hits and estimates complexity from
// domain spread and query length.
func (a *KeywordAnalyzer) Analyze(ctx context.Context, rawQuery, conversationContext string) (*types.QueryAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	refined := strings.TrimSpace(rawQuery)
	if refined == "" {
		return nil, types.NewError(types.ErrEmptyInput, "empty query")
	}

	haystack := strings.ToLower(refined + " " + conversationContext)
	var domains []string
	for domain, keywords := range domainKeywords {
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				domains = append(domains, domain)
				break
			}
		}
	}
	sort.Strings(domains)
	if len(domains) == 0 {
		domains = []string{"general"}
	}

	return &types.QueryAnalysis{
		RefinedQuery:    refined,
		QueryType:       classify(haystack, len(domains)),
		Complexity:      complexity(refined, len(domains)),
		RequiredDomains: domains,
		NeedsSynthesis:  len(domains) > 1,
	}, nil
}

func classify(haystack string, domainCount int) types.QueryType {
	if domainCount > 1 {
		return types.QueryCrossDomain
	}
	switch {
	case strings.Contains(haystack, "how do i") || strings.Contains(haystack, "how to"):
		return types.QueryProcedural
	case strings.Contains(haystack, "why") || strings.Contains(haystack, "compare"):
		return types.QueryAnalytical
	default:
		return types.QueryFactual
	}
}

// complexity grows with domain spread and query length, clamped to [0,1].
func complexity(query string, domainCount int) float64 {
	score := 0.2 + 0.25*float64(domainCount-1)
	words := len(strings.Fields(query))
	if words > 10 {
		score += 0.2
	}
	if words > 25 {
		score += 0.2
	}
	if score > 1 {
		score = 1
	}
	return score
}

var _ agent.Analyzer = (*KeywordAnalyzer)(nil)
