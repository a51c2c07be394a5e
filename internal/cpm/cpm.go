// Package cpm computes earliest/latest start-finish times, slack and the
// critical set for a project graph using the critical path method.
//
// Day-boundary convention, shared with the cascade engine: an FS edge puts
// the dependent's start on the day after the predecessor's finish
// (start >= finish + lag + 1); SS and FF couple like boundaries with no
// offset; SF mirrors FS. Durations are due - start in days, so a task's
// finish offset is start offset + duration.
package cpm

import (
	"fmt"
	"sort"

	"github.com/orga-pm/ganttcore/internal/graph"
	"github.com/orga-pm/ganttcore/internal/model"
)

// Analyze runs the forward and backward pass over the graph's topological
// order. The project's start date is the implicit root: tasks with no
// constraining predecessors anchor there. Completed tasks are pinned to
// their stored dates so the history that produced the current finish stays
// visible in the result.
func Analyze(g *graph.Graph, opts Options) *Result {
	order := g.TopoOrder()
	defaultDur := opts.defaultDuration()
	anchor := anchorDate(g)

	result := &Result{
		Tasks:     make(map[string]*TaskSchedule, len(order)),
		TopoOrder: order,
	}
	for _, id := range order {
		result.Tasks[id] = &TaskSchedule{TaskID: id}
	}

	durations := make(map[string]int, len(order))
	for id, t := range g.Tasks {
		if t.Scheduled() {
			durations[id] = t.Duration()
		} else {
			durations[id] = defaultDur
		}
	}

	warned := make(map[string]bool)
	warn := func(predID string) {
		if warned[predID] {
			return
		}
		warned[predID] = true
		result.Warnings = append(result.Warnings, Warning{
			TaskID:  predID,
			Message: fmt.Sprintf("predecessor %s has no dates; assuming %d day(s)", predID, defaultDur),
		})
	}

	// Forward pass: ES = max over FS/SS predecessors of the predecessor's
	// boundary offset plus lag. Completed tasks keep their actual dates.
	for _, id := range order {
		ts := result.Tasks[id]
		task := g.Task(id)

		if task.Status == model.StatusCompleted && task.Scheduled() {
			ts.ES = task.StartDate.DaysSince(anchor)
			ts.EF = ts.ES + durations[id]
			continue
		}

		es := 0
		for _, e := range g.Predecessors(id) {
			pred := result.Tasks[e.DependsOn]
			if !g.Task(e.DependsOn).Scheduled() {
				warn(e.DependsOn)
			}
			var candidate int
			switch e.Type {
			case model.FinishToStart:
				candidate = pred.EF + e.LagDays + 1
			case model.StartToStart:
				candidate = pred.ES + e.LagDays
			case model.FinishToFinish, model.StartToFinish:
				// Finish-side couplings do not move an earliest start
				// under the preserved-duration model.
				continue
			}
			if candidate > es {
				es = candidate
			}
		}
		ts.ES = es
		ts.EF = es + durations[id]
	}

	// Implied project finish: the latest earliest finish.
	finish := 0
	for _, ts := range result.Tasks {
		if ts.EF > finish {
			finish = ts.EF
		}
	}
	result.TotalDuration = finish

	// Backward pass: LF = min over successors of the inverse constraint,
	// seeded at the implied finish for terminal tasks.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		ts := result.Tasks[id]

		lf := finish
		for _, e := range g.Successors(id) {
			succ := result.Tasks[e.TaskID]
			var candidate int
			switch e.Type {
			case model.FinishToStart:
				candidate = succ.LS - e.LagDays - 1
			case model.StartToStart:
				// The successor bounds this task's latest start; convert
				// to a latest finish through the duration.
				candidate = succ.LS - e.LagDays + durations[id]
			case model.FinishToFinish, model.StartToFinish:
				continue
			}
			if candidate < lf {
				lf = candidate
			}
		}
		ts.LF = lf
		ts.LS = lf - durations[id]

		ts.SlackDays = ts.LS - ts.ES
		if ts.SlackDays < 0 {
			// Stored dates can contradict the dependency structure
			// (a completed task pinned later than its chain allows);
			// slack is floored so the task reads as critical, never
			// as negative float.
			ts.SlackDays = 0
		}
		ts.Critical = ts.SlackDays == 0
	}

	for _, id := range order {
		if result.Tasks[id].Critical {
			result.Critical = append(result.Critical, id)
		}
	}

	if !anchor.IsZero() {
		result.ProjectFinish = anchor.AddDays(finish)
		for _, ts := range result.Tasks {
			ts.EarliestStart = anchor.AddDays(ts.ES)
			ts.EarliestFinish = anchor.AddDays(ts.EF)
			ts.LatestStart = anchor.AddDays(ts.LS)
			ts.LatestFinish = anchor.AddDays(ts.LF)
		}
	}

	return result
}

// anchorDate picks the day that offset 0 maps to: the project's own start
// date, or the earliest scheduled task start when the project record has
// none.
func anchorDate(g *graph.Graph) model.Date {
	if !g.Project.StartDate.IsZero() {
		return g.Project.StartDate
	}
	var earliest model.Date
	ids := make([]string, 0, len(g.Tasks))
	for id := range g.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		t := g.Tasks[id]
		if t.StartDate.IsZero() {
			continue
		}
		if earliest.IsZero() || t.StartDate.Before(earliest) {
			earliest = t.StartDate
		}
	}
	return earliest
}
