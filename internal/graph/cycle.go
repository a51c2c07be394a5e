package graph

import (
	"fmt"
	"strings"

	"github.com/orga-pm/ganttcore/internal/model"
)

// CycleError reports a dependency cycle. Path holds the task IDs along the
// cycle, closed (first and last entries are the same task) so callers can
// present it directly.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}

// WouldCreateCycle checks whether inserting candidate into the current
// edge set would close a cycle, without inserting it. It must run against
// the same snapshot the insertion will mutate; the caller's serializable
// transaction closes the check-to-insert gap.
//
// A self-loop is rejected without searching. Otherwise the check walks the
// existing dependency chain from candidate.DependsOn: if that chain
// reaches candidate.TaskID, the new edge would close the loop, and the
// returned CycleError names the closed path starting at
// candidate.DependsOn.
func (g *Graph) WouldCreateCycle(candidate model.Edge) error {
	if candidate.TaskID == candidate.DependsOn {
		return &CycleError{Path: []string{candidate.TaskID, candidate.TaskID}}
	}

	visited := make(map[string]bool)
	var path []string
	if g.findDependencyPath(candidate.DependsOn, candidate.TaskID, visited, &path) {
		return &CycleError{Path: append(path, candidate.DependsOn)}
	}
	return nil
}

// findDependencyPath does a DFS from current along depends-on edges,
// recording the path when target is reachable.
func (g *Graph) findDependencyPath(current, target string, visited map[string]bool, path *[]string) bool {
	if visited[current] {
		return false
	}
	visited[current] = true
	*path = append(*path, current)

	if current == target {
		return true
	}

	for _, e := range g.pred[current] {
		if g.findDependencyPath(e.DependsOn, target, visited, path) {
			return true
		}
	}

	*path = (*path)[:len(*path)-1]
	return false
}
