package cpm

import "github.com/orga-pm/ganttcore/internal/model"

// Result holds the complete critical path analysis for one project.
// It is a pure function of the graph snapshot; recompute freely.
type Result struct {
	Tasks map[string]*TaskSchedule `json:"tasks"`

	// Critical lists the zero-slack task IDs in topological order.
	Critical []string `json:"critical"`

	// TotalDuration is the implied project length in days: the maximum
	// earliest finish across all tasks, measured from the project start.
	TotalDuration int `json:"total_duration"`

	// ProjectFinish is the implied finish date (unset when the project
	// has no anchor date).
	ProjectFinish model.Date `json:"project_finish"`

	TopoOrder []string `json:"topo_order"`

	// Warnings surfaces schedule gaps (unscheduled predecessors) that
	// were tolerated rather than treated as errors.
	Warnings []Warning `json:"warnings,omitempty"`
}

// TaskSchedule holds the computed schedule for a single task. Offsets are
// days from the project start; the date fields are the same values
// anchored to the calendar, unset when the project has no anchor.
type TaskSchedule struct {
	TaskID string `json:"task_id"`

	ES int `json:"es"` // earliest start/finish offsets
	EF int `json:"ef"`
	LS int `json:"ls"` // latest start/finish offsets
	LF int `json:"lf"`

	EarliestStart  model.Date `json:"earliest_start"`
	EarliestFinish model.Date `json:"earliest_finish"`
	LatestStart    model.Date `json:"latest_start"`
	LatestFinish   model.Date `json:"latest_finish"`

	SlackDays int  `json:"slack_days"`
	Critical  bool `json:"critical"`
}

// Warning flags an incomplete schedule: a predecessor with no dates was
// given the default duration instead of failing the analysis.
type Warning struct {
	TaskID  string `json:"task_id"` // the unscheduled predecessor
	Message string `json:"message"`
}

// Options tunes the analysis.
type Options struct {
	// DefaultDurationDays is the duration assumed for unscheduled tasks.
	// Zero means 1.
	DefaultDurationDays int
}

func (o Options) defaultDuration() int {
	if o.DefaultDurationDays <= 0 {
		return 1
	}
	return o.DefaultDurationDays
}
