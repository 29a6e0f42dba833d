// Package graph provides the reachability search both backends use to keep
// specific links acyclic.
package graph

// EdgeFunc returns the direct successors of a node.
type EdgeFunc[N comparable] func(node N) ([]N, error)

// Reaches reports whether goal can be reached from start by following edges.
// A node always reaches itself, so start == goal is true without consulting
// edges. The search is an iterative depth-first walk with a visited set; it
// terminates on graphs that already contain cycles.
func Reaches[N comparable](start, goal N, edges EdgeFunc[N]) (bool, error) {
	if start == goal {
		return true, nil
	}

	visited := make(map[N]struct{})
	stack := []N{start}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == goal {
			return true, nil
		}
		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}

		next, err := edges(current)
		if err != nil {
			return false, err
		}
		for _, n := range next {
			if _, seen := visited[n]; !seen {
				stack = append(stack, n)
			}
		}
	}
	return false, nil
}

// ClosesCycle reports whether adding the edge from -> to would create a
// cycle, i.e. whether from is already reachable from to.
func ClosesCycle[N comparable](from, to N, edges EdgeFunc[N]) (bool, error) {
	return Reaches(to, from, edges)
}
