// Package reporter renders engine results as terminal tables. Machine
// output is plain JSON of the same result structs and lives in the CLI;
// everything here is for humans.
package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/orga-pm/ganttcore/internal/cascade"
	"github.com/orga-pm/ganttcore/internal/cpm"
	"github.com/orga-pm/ganttcore/internal/graph"
	"github.com/orga-pm/ganttcore/internal/model"
	"github.com/orga-pm/ganttcore/internal/ui"
)

// PrintAnalysis writes the critical-path table: one line per task in
// schedule order with earliest/latest window and slack, the critical path
// as a footer, and any warnings last.
func PrintAnalysis(w io.Writer, g *graph.Graph, res *cpm.Result) {
	fmt.Fprintf(w, "%s %s\n", ui.BoldCyan("Schedule analysis"), ui.Dim(g.Project.ID))
	if !res.ProjectFinish.IsZero() {
		fmt.Fprintf(w, "Finish:    %s\n", ui.Bold(res.ProjectFinish.String()))
	}
	fmt.Fprintf(w, "Duration:  %s\n\n", ui.Bold(fmt.Sprintf("%d days", res.TotalDuration+1)))

	for _, id := range res.TopoOrder {
		ts := res.Tasks[id]
		task := g.Task(id)
		if ts == nil || task == nil {
			continue
		}

		window := fmt.Sprintf("day %d..%d", ts.ES, ts.EF)
		if !ts.EarliestStart.IsZero() {
			window = fmt.Sprintf("%s .. %s", ts.EarliestStart, ts.EarliestFinish)
		}
		slack := ui.Dim(fmt.Sprintf("slack %dd", ts.SlackDays))
		if ts.Critical {
			slack = ui.BoldYellow("slack 0d")
		}

		fmt.Fprintf(w, "  %s %s %-10s %-30s %-26s %s\n",
			ui.StatusIcon(string(task.Status)),
			ui.CriticalMark(ts.Critical),
			ui.BoldMagenta(id),
			truncate(task.Subject, 30),
			window,
			slack)
	}

	if len(res.Critical) > 0 {
		fmt.Fprintf(w, "\nCritical:  %s\n", ui.BoldYellow("⚡ "+strings.Join(res.Critical, " → ")))
	}
	printWarnings(w, res.Warnings)
}

// PrintCascade writes the shift preview: one line per changed field.
func PrintCascade(w io.Writer, res *cascade.Result) {
	if res.Empty() {
		fmt.Fprintf(w, "%s\n", ui.Green("No dependent tasks affected."))
		printCascadeWarnings(w, res.Warnings)
		return
	}

	fmt.Fprintf(w, "%s\n", ui.BoldCyan("Cascade"))
	for _, e := range res.Entries {
		fmt.Fprintf(w, "  %-10s %-28s %-10s %s → %s  %s\n",
			ui.BoldMagenta(e.TaskID),
			truncate(e.Subject, 28),
			e.Field,
			ui.Dim(e.OldValue.String()),
			ui.Bold(e.NewValue.String()),
			shiftLabel(e.DaysShift))
	}
	fmt.Fprintf(w, "\n%s\n", ui.Bold(fmt.Sprintf("%d task(s) affected", res.TotalAffected)))
	printCascadeWarnings(w, res.Warnings)
}

// PrintBlocked lists tasks waiting on incomplete predecessors.
func PrintBlocked(w io.Writer, g *graph.Graph, blocked []string) {
	if len(blocked) == 0 {
		fmt.Fprintf(w, "%s\n", ui.Green("No blocked tasks."))
		return
	}
	fmt.Fprintf(w, "%s\n", ui.BoldCyan("Blocked tasks"))
	for _, id := range blocked {
		task := g.Task(id)
		if task == nil {
			continue
		}
		var waiting []string
		for _, e := range g.Predecessors(id) {
			if e.Type == model.FinishToStart && !g.Satisfied(e) {
				waiting = append(waiting, e.DependsOn)
			}
		}
		fmt.Fprintf(w, "  %s %-10s %-30s %s\n",
			ui.BlockedMark(true),
			ui.BoldMagenta(id),
			truncate(task.Subject, 30),
			ui.Dim("waiting on "+strings.Join(waiting, ", ")))
	}
}

// Row is one Gantt line: tasks and milestones merged into sort order.
type Row struct {
	ID           string     `json:"id"`
	Subject      string     `json:"subject"`
	Milestone    bool       `json:"milestone,omitempty"`
	Start        model.Date `json:"start_date"`
	End          model.Date `json:"end_date"`
	DurationDays int        `json:"duration_days"`
	Status       string     `json:"status,omitempty"`
	SortOrder    float64    `json:"sort_order"`
	Blocked      bool       `json:"blocked,omitempty"`
	Critical     bool       `json:"critical,omitempty"`
	Dependencies []string   `json:"dependencies,omitempty"`
}

// BuildRows merges tasks and milestones into display order. A milestone's
// due date serves as both boundaries; dependency info is encoded as
// "CODE:predecessor" with a lag suffix when nonzero.
func BuildRows(snap *model.Snapshot, g *graph.Graph, res *cpm.Result) []Row {
	rows := make([]Row, 0, len(snap.Tasks)+len(snap.Milestones))

	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		row := Row{
			ID:        t.ID,
			Subject:   t.Subject,
			Start:     t.StartDate,
			End:       t.DueDate,
			Status:    string(t.Status),
			SortOrder: t.SortOrder,
			Blocked:   cascade.IsBlocked(g, t.ID),
		}
		if t.Scheduled() {
			row.DurationDays = t.Duration() + 1
		}
		if res != nil {
			if ts := res.Tasks[t.ID]; ts != nil {
				row.Critical = ts.Critical
			}
		}
		for _, e := range g.Predecessors(t.ID) {
			dep := fmt.Sprintf("%s:%s", e.Type, e.DependsOn)
			if e.LagDays != 0 {
				dep += fmt.Sprintf("%+d", e.LagDays)
			}
			row.Dependencies = append(row.Dependencies, dep)
		}
		rows = append(rows, row)
	}

	for i := range snap.Milestones {
		m := &snap.Milestones[i]
		rows = append(rows, Row{
			ID:        m.ID,
			Subject:   m.Subject,
			Milestone: true,
			Start:     m.DueDate,
			End:       m.DueDate,
			SortOrder: m.SortOrder,
		})
	}

	// Shared sort_order space; array position breaks ties (creation order).
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].SortOrder < rows[b].SortOrder
	})
	return rows
}

// PrintRows writes the Gantt table.
func PrintRows(w io.Writer, rows []Row) {
	for _, row := range rows {
		kind := " "
		if row.Milestone {
			kind = ui.Cyan("◇")
		}
		span := ui.Dim("unscheduled")
		if !row.Start.IsZero() || !row.End.IsZero() {
			span = fmt.Sprintf("%s .. %s", row.Start, row.End)
		}
		deps := ""
		if len(row.Dependencies) > 0 {
			deps = ui.Dim("(" + strings.Join(row.Dependencies, ", ") + ")")
		}
		fmt.Fprintf(w, "  %s %s %s %-10s %-30s %-26s %s\n",
			ui.StatusIcon(row.Status),
			ui.CriticalMark(row.Critical),
			kind,
			ui.BoldMagenta(row.ID),
			truncate(row.Subject, 30),
			span,
			deps)
		if row.Blocked {
			fmt.Fprintf(w, "      %s\n", ui.Red("blocked"))
		}
	}
}

func printWarnings(w io.Writer, warnings []cpm.Warning) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "%s %s\n", ui.Yellow("warning:"), warning.Message)
	}
}

func printCascadeWarnings(w io.Writer, warnings []cascade.Warning) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "%s %s\n", ui.Yellow("warning:"), warning.Message)
	}
}

func shiftLabel(days int) string {
	label := fmt.Sprintf("%+dd", days)
	if days > 0 {
		return ui.Red(label)
	}
	return ui.Green(label)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
