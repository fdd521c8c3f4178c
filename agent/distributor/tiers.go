package distributor

import (
	"sort"

	"github.com/chorus-ai/chorus/types"
)

// Tiers groups tasks into dependency tiers: tier 0 has no
// dependencies, tier N depends only on tasks in tiers < N. All tasks
// within one tier may run concurrently. A dependency on an unknown
// task ID or a cycle yields a fatal CYCLIC_DEPENDENCY error.
func Tiers(tasks []*types.AgentTask) ([][]*types.AgentTask, error) {
	byID := make(map[string]*types.AgentTask, len(tasks))
	for _, t := range tasks {
		byID[t.TaskID] = t
	}

	indegree := make(map[string]int, len(tasks))
	dependents := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if _, ok := byID[dep]; !ok {
				return nil, types.NewError(types.ErrCyclicDependency,
					"task "+t.TaskID+" depends on unknown task "+dep)
			}
			indegree[t.TaskID]++
			dependents[dep] = append(dependents[dep], t.TaskID)
		}
	}

	// Kahn's algorithm, peeled one tier at a time.
	var current []string
	for _, t := range tasks {
		if indegree[t.TaskID] == 0 {
			current = append(current, t.TaskID)
		}
	}

	var tiers [][]*types.AgentTask
	placed := 0
	for len(current) > 0 {
		sort.Strings(current)
		tier := make([]*types.AgentTask, 0, len(current))
		var next []string
		for _, id := range current {
			tier = append(tier, byID[id])
			placed++
			for _, dep := range dependents[id] {
				indegree[dep]--
				if indegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		// Higher priority first inside a tier.
		sort.SliceStable(tier, func(i, j int) bool { return tier[i].Priority > tier[j].Priority })
		tiers = append(tiers, tier)
		current = next
	}

	if placed != len(tasks) {
		return nil, types.NewError(types.ErrCyclicDependency, "task graph contains a dependency cycle")
	}
	return tiers, nil
}
