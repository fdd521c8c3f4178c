// Package distributor turns an analyzed query into an execution plan:
// a strategy, the worker roles to involve, one sub-query per role, and
// the AgentTasks the coordinator will dispatch.
//
// Tasks carry dependencies; Tiers groups them into dependency tiers so
// that everything inside one tier can run concurrently. A cyclic task
// graph is a caller contract violation and is rejected up front.
package distributor
