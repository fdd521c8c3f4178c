// Package session holds the per-query shared state: the response
// ledger, the task map, conflict and consensus history, and the phase
// tracker.
//
// The phase is a closed enumeration with an explicit transition table.
// Anything not in the table is rejected with an INVALID_TRANSITION
// error, which removes the class of bugs a free-form string phase
// invites. The State is exclusively owned by the phase coordinator for
// the duration of one query; all mutation goes through its methods.
package session
