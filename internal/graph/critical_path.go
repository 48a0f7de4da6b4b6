package graph

// pathInfo is the memoized best downstream path from a node.
type pathInfo struct {
	weight float64
	chain  []string
}

// CriticalPath returns the maximum-weight path from any source (no
// incoming edges) to any sink (no outgoing edges), along with its total
// estimated cost. It lower-bounds total plan duration under unlimited
// concurrency and is used only for reporting, never to gate execution.
//
// When two paths have equal weight, the one with the lexicographically
// smaller ID chain wins, so reports are reproducible for a fixed graph.
func (g *TaskGraph) CriticalPath() ([]string, float64) {
	if len(g.tasks) == 0 {
		return nil, 0
	}

	memo := make(map[string]pathInfo, len(g.tasks))

	var bestFrom func(id string) pathInfo
	bestFrom = func(id string) pathInfo {
		if info, ok := memo[id]; ok {
			return info
		}

		t := g.tasks[id]
		best := pathInfo{weight: t.EstimatedCost, chain: []string{id}}
		for _, depID := range g.dependents[id] {
			sub := bestFrom(depID)
			candidate := pathInfo{
				weight: t.EstimatedCost + sub.weight,
				chain:  append([]string{id}, sub.chain...),
			}
			if candidate.weight > best.weight ||
				(candidate.weight == best.weight && lessChain(candidate.chain, best.chain)) {
				best = candidate
			}
		}

		memo[id] = best
		return best
	}

	var overall pathInfo
	for _, id := range g.order {
		if len(g.tasks[id].DependsOn) > 0 {
			continue // not a source
		}
		info := bestFrom(id)
		if overall.chain == nil || info.weight > overall.weight ||
			(info.weight == overall.weight && lessChain(info.chain, overall.chain)) {
			overall = info
		}
	}

	return overall.chain, overall.weight
}

// lessChain reports whether chain a is lexicographically smaller than b,
// comparing element-wise with length as the final tie-break.
func lessChain(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
