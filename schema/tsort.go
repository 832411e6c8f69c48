package schema

// topologicalSort performs a topological sort on items based on their
// dependencies using depth-first search (DFS). It returns the sorted items
// in dependency order, or ok=false with the set of vertices still
// "visiting" when a cycle is detected.
//
// Adapted from the teacher's generic DFS three-color sorter: unvisited,
// visiting, visited marking detects a back-edge (cycle) in one pass.
func topologicalSort[T any](items []T, dependencies map[string][]string, getID func(T) string) (sorted []T, ok bool, cycle []string) {
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	itemMap := make(map[string]T)
	stack := []string{}

	for _, item := range items {
		id := getID(item)
		itemMap[id] = item
	}

	var cycleVertices []string
	var visit func(string) bool
	visit = func(id string) bool {
		if visiting[id] {
			// Found the back-edge; collect the cycle from the DFS stack.
			start := -1
			for i, v := range stack {
				if v == id {
					start = i
					break
				}
			}
			if start >= 0 {
				cycleVertices = append(cycleVertices, stack[start:]...)
			}
			return false
		}
		if visited[id] {
			return true
		}

		visiting[id] = true
		stack = append(stack, id)

		for _, dep := range dependencies[id] {
			if _, exists := itemMap[dep]; exists {
				if !visit(dep) {
					return false
				}
			}
		}

		stack = stack[:len(stack)-1]
		visiting[id] = false
		visited[id] = true

		if item, exists := itemMap[id]; exists {
			sorted = append(sorted, item)
		}
		return true
	}

	for _, item := range items {
		id := getID(item)
		if !visited[id] {
			if !visit(id) {
				return nil, false, cycleVertices
			}
		}
	}

	return sorted, true, nil
}
