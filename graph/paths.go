package graph

// ExecutionPaths enumerates every structural path from the given start agent
// to a leaf (a node without outgoing edges). Like ExportDOT it is a pure
// projection of the graph structure: conditions and transforms are not
// evaluated, so a run may execute fewer paths than enumerated here.
//
// Paths follow edge insertion order, each as node names from start to leaf.
// A start without outgoing edges yields the single path [start].
func (w *Workflow) ExecutionPaths(start string) ([][]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	idx, ok := w.index[start]
	if !ok {
		return nil, &NotFoundError{Name: start}
	}

	var paths [][]string

	// The graph is acyclic, so plain DFS terminates without a visited set.
	var walk func(cur int, trail []string)
	walk = func(cur int, trail []string) {
		trail = append(trail, w.nodes[cur].agent.Name())
		if len(w.nodes[cur].outgoing) == 0 {
			paths = append(paths, append([]string(nil), trail...))
			return
		}
		for _, eid := range w.nodes[cur].outgoing {
			walk(w.edges[eid].to, trail)
		}
	}
	walk(idx, nil)

	return paths, nil
}
