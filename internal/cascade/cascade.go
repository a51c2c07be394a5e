// Package cascade propagates date changes through dependent tasks under
// the project's dependency mode. Compute is side-effect-free; callers in
// Strict mode apply the result in the same transaction as the trigger
// change, callers in Flexible mode show it as a preview and re-validate on
// apply, and Off mode uses only the blocked predicate.
package cascade

import (
	"fmt"

	"github.com/orga-pm/ganttcore/internal/graph"
	"github.com/orga-pm/ganttcore/internal/model"
)

// window is a task's dates after any pending shift.
type window struct {
	start, due model.Date
}

// Compute returns the transitive set of shifts required on dependents if
// the given task's dates change to newStart/newEnd (either may be unset to
// leave that boundary alone). A dependent shifts only when its edge
// constraint is actually violated, by exactly the violation amount;
// diamond paths take the largest implied shift. Completed dependents are
// never shifted and their branches stop propagating.
func Compute(g *graph.Graph, taskID string, newStart, newEnd model.Date) (*Result, error) {
	trigger := g.Task(taskID)
	if trigger == nil {
		return nil, fmt.Errorf("task %s not in graph", taskID)
	}

	result := &Result{TaskID: taskID, NewStart: newStart, NewEnd: newEnd}

	startChanged := !newStart.IsZero() && !newStart.Equal(trigger.StartDate)
	endChanged := !newEnd.IsZero() && !newEnd.Equal(trigger.DueDate)
	if !startChanged && !endChanged {
		return result, nil
	}

	// moved holds post-change dates for the trigger and every shifted
	// task. A task absent from moved propagates nothing: that is how
	// completed and unscheduled branches stop.
	moved := make(map[string]window)
	triggerWindow := window{start: trigger.StartDate, due: trigger.DueDate}
	if !newStart.IsZero() {
		triggerWindow.start = newStart
	}
	if !newEnd.IsZero() {
		triggerWindow.due = newEnd
	}
	moved[taskID] = window{start: triggerWindow.start, due: triggerWindow.due}

	shifts := make(map[string]int)
	warned := make(map[string]bool)

	// One pass in topological order visits every dependent exactly once,
	// after all of its shifted predecessors have settled.
	for _, id := range g.TopoOrder() {
		if id == taskID {
			continue
		}
		task := g.Task(id)
		if task.Status == model.StatusCompleted {
			// Never shifted; branches through it end here.
			continue
		}

		required := 0
		for _, e := range g.Predecessors(id) {
			pred, ok := moved[e.DependsOn]
			if !ok {
				continue
			}
			// A finish-only change leaves start-driven edges alone (and
			// vice versa) when the predecessor is the trigger itself;
			// transitively shifted tasks move both boundaries.
			if e.DependsOn == taskID {
				if e.Type.ConstrainedByFinish() && !endChanged {
					continue
				}
				if !e.Type.ConstrainedByFinish() && !startChanged {
					continue
				}
			}
			if g.Satisfied(e) {
				continue
			}

			shift, ok := requiredShift(e, pred, task)
			if !ok {
				if !warned[id] {
					warned[id] = true
					result.Warnings = append(result.Warnings, Warning{
						TaskID:  id,
						Message: fmt.Sprintf("task %s has no dates; dependency from %s cannot cascade", id, e.DependsOn),
					})
				}
				continue
			}
			if shift > required {
				required = shift
			}
		}

		if required <= 0 {
			continue
		}

		shifts[id] = required
		moved[id] = window{
			start: shiftDate(task.StartDate, required),
			due:   shiftDate(task.DueDate, required),
		}
	}

	// Entries in topological order, one per present date field.
	for _, id := range g.TopoOrder() {
		shift, ok := shifts[id]
		if !ok {
			continue
		}
		task := g.Task(id)
		if !task.StartDate.IsZero() {
			result.Entries = append(result.Entries, Entry{
				TaskID:    id,
				Subject:   task.Subject,
				Field:     "start_date",
				OldValue:  task.StartDate,
				NewValue:  task.StartDate.AddDays(shift),
				DaysShift: shift,
			})
		}
		if !task.DueDate.IsZero() {
			result.Entries = append(result.Entries, Entry{
				TaskID:    id,
				Subject:   task.Subject,
				Field:     "due_date",
				OldValue:  task.DueDate,
				NewValue:  task.DueDate.AddDays(shift),
				DaysShift: shift,
			})
		}
	}
	result.TotalAffected = len(shifts)

	return result, nil
}

// requiredShift computes how many days the dependent must move forward so
// the edge constraint holds against the predecessor's post-change window.
// The boolean is false when the dependent lacks the date the constraint
// needs.
//
// Day-boundary convention (shared with package cpm): FS puts the
// dependent's start on the day after the predecessor's finish; SS and FF
// couple like boundaries directly; SF mirrors FS.
func requiredShift(e model.Edge, pred window, task *model.Task) (int, bool) {
	switch e.Type {
	case model.FinishToStart:
		if pred.due.IsZero() || task.StartDate.IsZero() {
			return 0, false
		}
		return pred.due.AddDays(e.LagDays + 1).DaysSince(task.StartDate), true
	case model.StartToStart:
		if pred.start.IsZero() || task.StartDate.IsZero() {
			return 0, false
		}
		return pred.start.AddDays(e.LagDays).DaysSince(task.StartDate), true
	case model.FinishToFinish:
		if pred.due.IsZero() || task.DueDate.IsZero() {
			return 0, false
		}
		return pred.due.AddDays(e.LagDays).DaysSince(task.DueDate), true
	case model.StartToFinish:
		if pred.start.IsZero() || task.DueDate.IsZero() {
			return 0, false
		}
		return pred.start.AddDays(e.LagDays - 1).DaysSince(task.DueDate), true
	default:
		return 0, false
	}
}

func shiftDate(d model.Date, days int) model.Date {
	if d.IsZero() {
		return d
	}
	return d.AddDays(days)
}

// Apply recomputes the cascade from the live graph for the same trigger
// change and, when a previously shown preview is supplied, fails with
// ErrStalePreview if the graph produced a different answer in the
// meantime. The returned result is the one to persist; the caller owns
// the transaction that makes it durable together with the trigger change.
func Apply(g *graph.Graph, taskID string, newStart, newEnd model.Date, preview *Result) (*Result, error) {
	result, err := Compute(g, taskID, newStart, newEnd)
	if err != nil {
		return nil, err
	}
	if preview != nil && !Equivalent(result, preview) {
		return nil, fmt.Errorf("cascade for %s: %w", taskID, ErrStalePreview)
	}
	return result, nil
}

// ApplyToSnapshot writes the trigger change and every cascade entry into
// the snapshot in memory. The snapshot is only mutated on success, so a
// validation failure leaves it untouched (all-or-nothing, mirroring the
// Strict-mode transaction).
func ApplyToSnapshot(snap *model.Snapshot, res *Result) error {
	idx := make(map[string]int, len(snap.Tasks))
	for i := range snap.Tasks {
		idx[snap.Tasks[i].ID] = i
	}

	i, ok := idx[res.TaskID]
	if !ok {
		return fmt.Errorf("task %s not in snapshot", res.TaskID)
	}

	start, due := snap.Tasks[i].StartDate, snap.Tasks[i].DueDate
	if !res.NewStart.IsZero() {
		start = res.NewStart
	}
	if !res.NewEnd.IsZero() {
		due = res.NewEnd
	}
	if !start.IsZero() && !due.IsZero() && start.After(due) {
		return fmt.Errorf("task %s: due date %s before start date %s", res.TaskID, due, start)
	}
	for _, e := range res.Entries {
		if _, ok := idx[e.TaskID]; !ok {
			return fmt.Errorf("cascade entry references unknown task %s", e.TaskID)
		}
	}

	if !res.NewStart.IsZero() {
		snap.Tasks[i].StartDate = res.NewStart
	}
	if !res.NewEnd.IsZero() {
		snap.Tasks[i].DueDate = res.NewEnd
	}
	for _, e := range res.Entries {
		t := &snap.Tasks[idx[e.TaskID]]
		switch e.Field {
		case "start_date":
			t.StartDate = e.NewValue
		case "due_date":
			t.DueDate = e.NewValue
		}
	}
	return nil
}
