package graph

import "sort"

// TopologicalLayers computes the parallel-batch plan: an ordered list of
// layers where every task in layer k has all of its dependencies in layers
// 0..k-1. Each task appears in exactly one layer, the earliest at which all
// of its dependencies are satisfied. All tasks in one layer may run
// concurrently; layers must run in order.
//
// This is Kahn's algorithm processed level by level rather than as a single
// flattened order. Within a layer, tasks are sorted by descending priority
// then ascending ID; this is the dispatch order the engine uses when
// concurrency is constrained.
//
// The graph must be validated first: on a cyclic graph the result would be
// incomplete.
func (g *TaskGraph) TopologicalLayers() [][]string {
	inDegree := make(map[string]int, len(g.tasks))
	for id, t := range g.tasks {
		inDegree[id] = len(t.DependsOn)
	}

	var layers [][]string
	completed := make(map[string]bool, len(g.tasks))

	for len(completed) < len(g.tasks) {
		var layer []string
		for _, id := range g.order {
			if !completed[id] && inDegree[id] == 0 {
				layer = append(layer, id)
			}
		}

		if len(layer) == 0 {
			// Remaining tasks are on a cycle; Validate would have caught
			// this. Return what was schedulable.
			break
		}

		sort.Slice(layer, func(i, j int) bool {
			a, b := g.tasks[layer[i]], g.tasks[layer[j]]
			if a.Priority != b.Priority {
				return a.Priority > b.Priority
			}
			return a.ID < b.ID
		})

		layers = append(layers, layer)

		for _, id := range layer {
			completed[id] = true
			for _, depID := range g.dependents[id] {
				inDegree[depID]--
			}
		}
	}

	return layers
}
