// Package model defines the project snapshot consumed by every engine
// operation: tasks, milestones and typed dependency edges for one project.
// The snapshot is rebuilt per operation by the caller and never cached.
package model

import (
	"errors"
	"fmt"
)

// Status is a task's workflow state. Completed is special: completed
// predecessors never block dependents and are never shifted by a cascade.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusReview     Status = "Review"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

// IsValid reports whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusReview, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the task can no longer change (Completed or
// Cancelled). Terminal tasks are skipped by advance-on-completion.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Mode is the project-wide cascade policy.
type Mode string

const (
	ModeStrict   Mode = "Strict"
	ModeFlexible Mode = "Flexible"
	ModeOff      Mode = "Off"
)

// ParseMode defaults to Flexible when unset, matching project records that
// predate the dependency_mode field.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStrict, ModeFlexible, ModeOff:
		return Mode(s), nil
	case "":
		return ModeFlexible, nil
	}
	return "", fmt.Errorf("unknown dependency mode %q", s)
}

// Task is a graph node. StartDate and DueDate are both optional; a task
// with either missing is unscheduled and contributes no date constraint.
type Task struct {
	ID        string  `json:"id"`
	Subject   string  `json:"subject"`
	Status    Status  `json:"status"`
	StartDate Date    `json:"start_date,omitempty"`
	DueDate   Date    `json:"due_date,omitempty"`
	SortOrder float64 `json:"sort_order"`
}

// Scheduled reports whether the task has both dates set.
func (t *Task) Scheduled() bool {
	return !t.StartDate.IsZero() && !t.DueDate.IsZero()
}

// Duration returns the task's span in days (due − start). Callers must
// check Scheduled first; unscheduled tasks take the configured default.
func (t *Task) Duration() int {
	return t.DueDate.DaysSince(t.StartDate)
}

// Milestone is a dependency-free node: a single due date that shares the
// sort_order space with tasks.
type Milestone struct {
	ID        string  `json:"id"`
	Subject   string  `json:"subject"`
	DueDate   Date    `json:"due_date,omitempty"`
	SortOrder float64 `json:"sort_order"`
}

// Edge states that Task cannot satisfy its type constraint until DependsOn
// does. LagDays may be negative for lead time.
type Edge struct {
	TaskID    string  `json:"task"`
	DependsOn string  `json:"depends_on"`
	Type      DepType `json:"dependency_type"`
	LagDays   int     `json:"lag_days"`
}

// Project carries the scheduling inputs that are not per-task.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	StartDate Date   `json:"start_date,omitempty"`
	EndDate   Date   `json:"end_date,omitempty"`
	Mode      Mode   `json:"dependency_mode,omitempty"`
}

// Snapshot is one project's full scheduling state. Array order is creation
// order and breaks sort_order ties.
type Snapshot struct {
	Project    Project     `json:"project"`
	Tasks      []Task      `json:"tasks"`
	Milestones []Milestone `json:"milestones,omitempty"`
	Edges      []Edge      `json:"edges,omitempty"`
}

// Validate checks the snapshot's internal consistency. All violations are
// reported together so the caller can surface a complete list.
func (s *Snapshot) Validate() error {
	var errs []error

	seen := make(map[string]bool, len(s.Tasks)+len(s.Milestones))
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("task %d: missing id", i))
			continue
		}
		if seen[t.ID] {
			errs = append(errs, fmt.Errorf("task %s: duplicate id", t.ID))
		}
		seen[t.ID] = true
		if !t.Status.IsValid() {
			errs = append(errs, fmt.Errorf("task %s: unknown status %q", t.ID, t.Status))
		}
		if t.Scheduled() && t.StartDate.After(t.DueDate) {
			errs = append(errs, fmt.Errorf("task %s: due date %s before start date %s", t.ID, t.DueDate, t.StartDate))
		}
	}

	for i := range s.Milestones {
		m := &s.Milestones[i]
		if m.ID == "" {
			errs = append(errs, fmt.Errorf("milestone %d: missing id", i))
			continue
		}
		if seen[m.ID] {
			errs = append(errs, fmt.Errorf("milestone %s: duplicate id", m.ID))
		}
		seen[m.ID] = true
	}

	taskIDs := make(map[string]bool, len(s.Tasks))
	for i := range s.Tasks {
		taskIDs[s.Tasks[i].ID] = true
	}
	for _, e := range s.Edges {
		if !e.Type.IsValid() {
			errs = append(errs, fmt.Errorf("edge %s->%s: unknown dependency type %q", e.DependsOn, e.TaskID, e.Type))
		}
		if !taskIDs[e.TaskID] {
			errs = append(errs, fmt.Errorf("edge references unknown task %q", e.TaskID))
		}
		if !taskIDs[e.DependsOn] {
			errs = append(errs, fmt.Errorf("edge references unknown task %q", e.DependsOn))
		}
	}

	return errors.Join(errs...)
}
