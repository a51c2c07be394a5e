// Package graph builds the dependency graph for one project and owns the
// structural operations over it: neighbor lookup, topological ordering and
// the pre-insertion cycle guard.
package graph

import (
	"fmt"
	"sort"

	"github.com/orga-pm/ganttcore/internal/model"
)

// Build constructs a Graph from a validated snapshot. Edges between
// unknown tasks and edges from or to milestones are rejected by snapshot
// validation before this runs. The edge set must already be acyclic;
// a cycle here means the durable store was mutated without the guard.
func Build(snap *model.Snapshot) (*Graph, error) {
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}

	g := &Graph{
		Project:    snap.Project,
		Tasks:      make(map[string]*model.Task, len(snap.Tasks)),
		Milestones: make(map[string]*model.Milestone, len(snap.Milestones)),
		succ:       make(map[string][]model.Edge),
		pred:       make(map[string][]model.Edge),
	}

	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		g.Tasks[t.ID] = t
	}
	for i := range snap.Milestones {
		m := &snap.Milestones[i]
		g.Milestones[m.ID] = m
	}

	// Deduplicate on the (task, depends_on) pair; the first edge wins,
	// matching how the durable store keys dependency rows.
	edgeSet := make(map[[2]string]bool, len(snap.Edges))
	for _, e := range snap.Edges {
		key := [2]string{e.DependsOn, e.TaskID}
		if edgeSet[key] {
			continue
		}
		edgeSet[key] = true
		g.succ[e.DependsOn] = append(g.succ[e.DependsOn], e)
		g.pred[e.TaskID] = append(g.pred[e.TaskID], e)
	}

	for id := range g.succ {
		es := g.succ[id]
		sort.Slice(es, func(a, b int) bool { return es[a].TaskID < es[b].TaskID })
	}
	for id := range g.pred {
		es := g.pred[id]
		sort.Slice(es, func(a, b int) bool { return es[a].DependsOn < es[b].DependsOn })
	}

	for id := range g.Tasks {
		if len(g.pred[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.succ[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}
	sort.Strings(g.Roots)
	sort.Strings(g.Leaves)

	if cycle := g.detectCycle(); cycle != nil {
		return nil, &CycleError{Path: cycle}
	}

	return g, nil
}

// TopoOrder returns the task IDs in topological order (predecessors before
// dependents) using Kahn's algorithm, with ready sets sorted by ID so the
// order is deterministic. Build guarantees acyclicity, so the order always
// covers every task.
func (g *Graph) TopoOrder() []string {
	inDegree := make(map[string]int, len(g.Tasks))
	for id := range g.Tasks {
		inDegree[id] = len(g.pred[id])
	}

	var queue []string
	for id := range g.Tasks {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(g.Tasks))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var newReady []string
		for _, e := range g.succ[node] {
			inDegree[e.TaskID]--
			if inDegree[e.TaskID] == 0 {
				newReady = append(newReady, e.TaskID)
			}
		}
		sort.Strings(newReady)
		queue = append(queue, newReady...)
	}

	return order
}

// detectCycle returns a cycle path if one exists, or nil. DFS with
// coloring: white (unvisited), gray (in progress), black (done).
func (g *Graph) detectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, e := range g.succ[node] {
			next := e.TaskID
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	ids := make([]string, 0, len(g.Tasks))
	for id := range g.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
