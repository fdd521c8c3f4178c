// Package ledger provides the append-only response ledger shared by
// concurrently running workers.
//
// The ledger keeps, per worker identity, the full ordered history of
// produced responses. Nothing is ever overwritten or removed, which
// keeps a whole query resolution replayable and auditable. Appends to
// different worker keys proceed in parallel; appends to the same key
// serialize on a per-key lock, so there is no single global write lock.
//
// AllLatest returns the comparison set (one most-recent response per
// worker) consumed by conflict detection and consensus building.
//
// An optional Mirror duplicates appends into Redis fire-and-forget so a
// session can be inspected or recovered out of process; reads always
// come from memory.
package ledger
