// Package types defines the shared data model of the chorus engine.
//
// The types package is the lowest-level package with no internal
// dependencies, so every other package (ledger, conflict, consensus,
// distributor, coordinator) can import it without circular imports.
//
// It contains:
//
//   - WorkerRole: the closed set of specialist roles
//   - AgentResponse: one scored answer produced by one worker invocation
//   - AgentTask: a delegated unit of work with a guarded status machine
//   - ConflictReport: a detected disagreement between two workers
//   - ConsensusResult: the ranked reconciliation of a response set
//   - QueryAnalysis: the analyzed form of a raw user query
//   - Error: the structured error type used across the engine
package types
