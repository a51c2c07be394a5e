package cascade

import (
	"fmt"

	"github.com/orga-pm/ganttcore/internal/graph"
	"github.com/orga-pm/ganttcore/internal/model"
)

// AdvanceOnCompletion computes the pull-in when a task completes: each
// Finish-to-Start successor whose FS predecessors are now all complete
// snaps to the earliest valid start, preserving its duration.
//
// Completion happens today, so the actual finish is today and successors
// may start tomorrow: finishing early pulls them in, finishing late pushes
// them out, finishing on time keeps the planned handoff. Successors in a
// terminal state, successors still waiting on other predecessors, and
// successors already at the new start are left alone. This is a single-hop
// adjustment; callers skip it entirely when the project mode is Off.
func AdvanceOnCompletion(g *graph.Graph, taskID string, today model.Date) (*Result, error) {
	completed := g.Task(taskID)
	if completed == nil {
		return nil, fmt.Errorf("task %s not in graph", taskID)
	}
	if completed.Status != model.StatusCompleted {
		return nil, fmt.Errorf("task %s is not completed (status %s)", taskID, completed.Status)
	}

	anchor := today.AddDays(1)

	result := &Result{TaskID: taskID}
	seen := make(map[string]bool)

	for _, e := range g.Successors(taskID) {
		if e.Type != model.FinishToStart || seen[e.TaskID] {
			continue
		}
		seen[e.TaskID] = true

		succ := g.Task(e.TaskID)
		if succ.Status.Terminal() || succ.StartDate.IsZero() {
			continue
		}
		if !allFSPredecessorsComplete(g, e.TaskID) {
			continue
		}

		newStart := anchor.AddDays(e.LagDays)
		if newStart.Equal(succ.StartDate) {
			continue
		}
		shift := newStart.DaysSince(succ.StartDate)

		result.Entries = append(result.Entries, Entry{
			TaskID:    e.TaskID,
			Subject:   succ.Subject,
			Field:     "start_date",
			OldValue:  succ.StartDate,
			NewValue:  newStart,
			DaysShift: shift,
		})
		if !succ.DueDate.IsZero() {
			result.Entries = append(result.Entries, Entry{
				TaskID:    e.TaskID,
				Subject:   succ.Subject,
				Field:     "due_date",
				OldValue:  succ.DueDate,
				NewValue:  succ.DueDate.AddDays(shift),
				DaysShift: shift,
			})
		}
	}

	result.TotalAffected = len(seenShifted(result))
	return result, nil
}

func allFSPredecessorsComplete(g *graph.Graph, taskID string) bool {
	for _, e := range g.Predecessors(taskID) {
		if e.Type != model.FinishToStart {
			continue
		}
		if pred := g.Task(e.DependsOn); pred != nil && pred.Status != model.StatusCompleted {
			return false
		}
	}
	return true
}

func seenShifted(r *Result) map[string]bool {
	ids := make(map[string]bool, len(r.Entries))
	for _, e := range r.Entries {
		ids[e.TaskID] = true
	}
	return ids
}
