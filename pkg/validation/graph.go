package validation

import (
	"sort"

	"github.com/dukex/flowlint/pkg/models"
)

// findCycle detects a directed cycle among the workflow's main-type edges
// using DFS with three-color marking. It returns the first cycle found as
// a node name path ("A", "B", "A"), traversing in sorted order so the
// result is deterministic. AI-type edges are excluded: they wire agent
// components, not data flow, and legally form fan-in shapes.
func findCycle(workflow *models.Workflow) []string {
	adjacency := make(map[string][]string)

	for _, conn := range workflow.Connections {
		if connType(conn) != models.ConnectionTypeMain {
			continue
		}

		source := conn.SourceNode()
		target := conn.TargetNode()

		if source == "" || target == "" {
			continue
		}

		adjacency[source] = append(adjacency[source], target)
	}

	starts := make([]string, 0, len(adjacency))
	for name := range adjacency {
		starts = append(starts, name)
	}

	sort.Strings(starts)

	const (
		white = 0 // unvisited
		gray  = 1 // on the current path
		black = 2 // fully explored
	)

	color := make(map[string]int)

	var (
		path  []string
		cycle []string
	)

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		path = append(path, node)

		neighbors := append([]string(nil), adjacency[node]...)
		sort.Strings(neighbors)

		for _, neighbor := range neighbors {
			if color[neighbor] == gray {
				start := 0
				for i, name := range path {
					if name == neighbor {
						start = i

						break
					}
				}

				cycle = append(append([]string(nil), path[start:]...), neighbor)

				return true
			}

			if color[neighbor] == white && visit(neighbor) {
				return true
			}
		}

		path = path[:len(path)-1]
		color[node] = black

		return false
	}

	for _, start := range starts {
		if color[start] == white && visit(start) {
			return cycle
		}
	}

	return nil
}
