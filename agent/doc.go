// Package agent defines the capability contracts the chorus engine
// consumes from its collaborators.
//
// The engine itself never talks to a model provider, a vector store, or
// a database. It orchestrates already-produced structured responses:
// workers answer sub-queries, the analyzer classifies raw queries, the
// knowledge base serves document lookups to specialists, and the
// optional sink receives finalized session snapshots fire-and-forget.
package agent
