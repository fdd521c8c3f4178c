package types

// QueryType classifies an analyzed user query.
type QueryType string

const (
	QueryFactual     QueryType = "factual"
	QueryProcedural  QueryType = "procedural"
	QueryAnalytical  QueryType = "analytical"
	QueryCrossDomain QueryType = "cross_domain"
)

// QueryAnalysis is the structured output of the external query-analysis
// capability. The distributor turns it into an execution plan.
type QueryAnalysis struct {
	// RefinedQuery is the cleaned-up form of the raw user query.
	RefinedQuery string    `json:"refined_query"`
	QueryType    QueryType `json:"query_type"`
	// Complexity scores how involved the query is, in [0,1].
	Complexity float64 `json:"complexity"`
	// RequiredDomains lists the knowledge domains the query touches
	// (e.g. "hr", "finance", "it").
	RequiredDomains []string `json:"required_domains"`
	// NeedsSynthesis indicates a domain ordering dependency: a final
	// cross-domain synthesis task must wait for all domain tasks.
	NeedsSynthesis bool `json:"needs_synthesis,omitempty"`
}
