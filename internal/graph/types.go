package graph

import "github.com/orga-pm/ganttcore/internal/model"

// Graph is the in-memory dependency graph for one project. It is built
// fresh from a snapshot per operation and owns no I/O; every engine
// computation takes it read-only.
type Graph struct {
	Project    model.Project
	Tasks      map[string]*model.Task
	Milestones map[string]*model.Milestone

	succ map[string][]model.Edge // predecessor task -> outgoing edges
	pred map[string][]model.Edge // dependent task -> incoming edges

	Roots  []string // tasks with no predecessors
	Leaves []string // tasks with no successors
}

// Successors returns the edges whose predecessor is id, sorted by
// dependent task ID for determinism.
func (g *Graph) Successors(id string) []model.Edge { return g.succ[id] }

// Predecessors returns the edges whose dependent is id, sorted by
// predecessor task ID for determinism.
func (g *Graph) Predecessors(id string) []model.Edge { return g.pred[id] }

// Task returns the task with the given ID, or nil.
func (g *Graph) Task(id string) *model.Task { return g.Tasks[id] }

// TaskCount returns the number of tasks in the graph.
func (g *Graph) TaskCount() int { return len(g.Tasks) }

// Satisfied reports whether an edge's constraint is already met as a
// business rule: a Completed predecessor never blocks its dependents,
// regardless of stored dates. This is applied before any date-propagation
// logic looks at the edge.
func (g *Graph) Satisfied(e model.Edge) bool {
	pred := g.Tasks[e.DependsOn]
	return pred != nil && pred.Status == model.StatusCompleted
}
