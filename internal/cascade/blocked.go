package cascade

import (
	"sort"

	"github.com/orga-pm/ganttcore/internal/graph"
	"github.com/orga-pm/ganttcore/internal/model"
)

// IsBlocked reports whether a task has any incomplete Finish-to-Start
// predecessor. This is the only edge reading in Off mode, where
// dependencies are advisory: no dates move, the UI just flags the task.
func IsBlocked(g *graph.Graph, taskID string) bool {
	for _, e := range g.Predecessors(taskID) {
		if e.Type != model.FinishToStart {
			continue
		}
		if !g.Satisfied(e) {
			return true
		}
	}
	return false
}

// BlockedTasks returns the IDs of all blocked tasks, sorted.
func BlockedTasks(g *graph.Graph) []string {
	var blocked []string
	for id := range g.Tasks {
		if IsBlocked(g, id) {
			blocked = append(blocked, id)
		}
	}
	sort.Strings(blocked)
	return blocked
}
