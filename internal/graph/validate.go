package graph

import "sort"

// dfs colors for cycle detection.
type color int

const (
	white color = iota // unvisited
	gray               // on the current DFS stack
	black              // fully explored, known cycle-free
)

// Validate checks the graph for dependency cycles. It returns a
// *CyclicDependencyError carrying the exact cycle, in dependency order, so
// the caller can show which tasks are mutually blocking. On success the
// graph is marked validated and its structure is considered frozen.
//
// The check is a depth-first search with three-coloring: encountering a
// gray node means the DFS stack from that node to the current node forms a
// cycle, and that stack slice is reported verbatim.
func (g *TaskGraph) Validate() error {
	colors := make(map[string]color, len(g.tasks))
	var stack []string

	var visit func(id string) *CyclicDependencyError
	visit = func(id string) *CyclicDependencyError {
		colors[id] = gray
		stack = append(stack, id)

		deps := append([]string(nil), g.tasks[id].DependsOn...)
		sort.Strings(deps)
		for _, depID := range deps {
			switch colors[depID] {
			case black:
				continue
			case gray:
				// The cycle is the stack slice from depID to the current
				// node.
				start := 0
				for i, sid := range stack {
					if sid == depID {
						start = i
						break
					}
				}
				cycle := append([]string(nil), stack[start:]...)
				return &CyclicDependencyError{Cycle: cycle}
			default:
				if cerr := visit(depID); cerr != nil {
					return cerr
				}
			}
		}

		stack = stack[:len(stack)-1]
		colors[id] = black
		return nil
	}

	for _, id := range g.order {
		if colors[id] != white {
			continue
		}
		if cerr := visit(id); cerr != nil {
			return cerr
		}
	}

	g.validated = true
	return nil
}
