package cascade

import (
	"errors"

	"github.com/orga-pm/ganttcore/internal/model"
)

// ErrStalePreview is returned by Apply when the recomputed cascade no
// longer matches the preview the user confirmed. The change must be
// reviewed again; it is never applied silently.
var ErrStalePreview = errors.New("schedule changed since preview; please review again")

// Entry is one field shift on one dependent task.
type Entry struct {
	TaskID    string     `json:"task_id"`
	Subject   string     `json:"subject"`
	Field     string     `json:"field"` // "start_date" or "due_date"
	OldValue  model.Date `json:"old_value"`
	NewValue  model.Date `json:"new_value"`
	DaysShift int        `json:"days_shift"`
}

// Result is the full set of shifts implied by one date change. Entries
// are ordered topologically (upstream shifts first) and deterministic for
// a given graph, so previews can be compared byte-for-byte.
type Result struct {
	TaskID   string     `json:"task_id"`
	NewStart model.Date `json:"new_start,omitempty"`
	NewEnd   model.Date `json:"new_end,omitempty"`

	Entries []Entry `json:"entries"`

	// TotalAffected counts distinct dependent tasks, not entries.
	TotalAffected int `json:"total_affected"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// Warning flags a dependency that could not participate in the cascade
// because a task in the chain has no dates.
type Warning struct {
	TaskID  string `json:"task_id"`
	Message string `json:"message"`
}

// Empty reports whether the cascade requires no shifts.
func (r *Result) Empty() bool { return len(r.Entries) == 0 }

// entryKey identifies an entry for preview comparison.
type entryKey struct {
	taskID, field, oldValue, newValue string
	shift                             int
}

// Equivalent reports whether two results demand the same shifts. Subjects
// and warnings are display-only and ignored; entry order is not, because
// both sides are produced in topological order.
func Equivalent(a, b *Result) bool {
	if a.TotalAffected != b.TotalAffected || len(a.Entries) != len(b.Entries) {
		return false
	}
	for i := range a.Entries {
		if keyOf(a.Entries[i]) != keyOf(b.Entries[i]) {
			return false
		}
	}
	return true
}

func keyOf(e Entry) entryKey {
	return entryKey{
		taskID:   e.TaskID,
		field:    e.Field,
		oldValue: e.OldValue.String(),
		newValue: e.NewValue.String(),
		shift:    e.DaysShift,
	}
}
