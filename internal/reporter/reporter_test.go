package reporter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/orga-pm/ganttcore/internal/cascade"
	"github.com/orga-pm/ganttcore/internal/cpm"
	"github.com/orga-pm/ganttcore/internal/graph"
	"github.com/orga-pm/ganttcore/internal/model"
)

func date(day int) model.Date {
	return model.NewDate(2026, time.January, day)
}

func makeSnapshot() *model.Snapshot {
	// a(Jan 1-5) -> b(Jan 6-10), plus a ship milestone.
	return &model.Snapshot{
		Project: model.Project{ID: "p1", StartDate: date(1)},
		Tasks: []model.Task{
			{ID: "a", Subject: "Design the launch plan", Status: model.StatusOpen, StartDate: date(1), DueDate: date(5), SortOrder: 1000},
			{ID: "b", Subject: "Build", Status: model.StatusOpen, StartDate: date(6), DueDate: date(10), SortOrder: 2000},
		},
		Milestones: []model.Milestone{
			{ID: "m1", Subject: "Ship", DueDate: date(20), SortOrder: 1500},
		},
		Edges: []model.Edge{
			{TaskID: "b", DependsOn: "a", Type: model.FinishToStart},
		},
	}
}

func makeGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Build(makeSnapshot())
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func TestPrintAnalysis(t *testing.T) {
	g := makeGraph(t)
	res := cpm.Analyze(g, cpm.Options{})

	var buf bytes.Buffer
	PrintAnalysis(&buf, g, res)
	output := buf.String()

	if !strings.Contains(output, "p1") {
		t.Error("expected output to contain the project ID")
	}
	if !strings.Contains(output, "Design the launch plan") {
		t.Error("expected output to contain task subjects")
	}
	if !strings.Contains(output, "2026-01-10") {
		t.Error("expected output to contain the project finish date")
	}
	if !strings.Contains(output, "⚡") {
		t.Error("expected output to contain the critical marker")
	}
	if !strings.Contains(output, "a → b") {
		t.Error("expected output to contain the critical path")
	}
}

func TestPrintCascade(t *testing.T) {
	g := makeGraph(t)
	res, err := cascade.Compute(g, "a", model.Date{}, date(8))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	var buf bytes.Buffer
	PrintCascade(&buf, res)
	output := buf.String()

	if !strings.Contains(output, "2026-01-09") {
		t.Error("expected output to contain b's new start date")
	}
	if !strings.Contains(output, "+3d") {
		t.Error("expected output to contain the shift magnitude")
	}
	if !strings.Contains(output, "1 task(s) affected") {
		t.Error("expected output to contain the affected count")
	}
}

func TestPrintCascade_Empty(t *testing.T) {
	g := makeGraph(t)
	res, err := cascade.Compute(g, "a", model.Date{}, date(3))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	var buf bytes.Buffer
	PrintCascade(&buf, res)
	if !strings.Contains(buf.String(), "No dependent tasks affected") {
		t.Error("expected empty-cascade message")
	}
}

func TestPrintBlocked(t *testing.T) {
	g := makeGraph(t)

	var buf bytes.Buffer
	PrintBlocked(&buf, g, cascade.BlockedTasks(g))
	output := buf.String()

	if !strings.Contains(output, "b") || !strings.Contains(output, "waiting on a") {
		t.Errorf("expected b to be reported as waiting on a, got %q", output)
	}
}

func TestBuildRows(t *testing.T) {
	snap := makeSnapshot()
	g, err := graph.Build(snap)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	res := cpm.Analyze(g, cpm.Options{})

	rows := BuildRows(snap, g, res)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// Sort order interleaves the milestone between the tasks.
	if rows[0].ID != "a" || rows[1].ID != "m1" || rows[2].ID != "b" {
		t.Errorf("unexpected row order: %s, %s, %s", rows[0].ID, rows[1].ID, rows[2].ID)
	}
	if !rows[1].Milestone || !rows[1].Start.Equal(rows[1].End) {
		t.Errorf("milestone row should span its due date only: %+v", rows[1])
	}
	if rows[0].DurationDays != 5 {
		t.Errorf("expected a to span 5 days, got %d", rows[0].DurationDays)
	}
	if !rows[2].Blocked {
		t.Error("b should be flagged blocked while a is incomplete")
	}
	if len(rows[2].Dependencies) != 1 || rows[2].Dependencies[0] != "FS:a" {
		t.Errorf("unexpected dependency encoding: %v", rows[2].Dependencies)
	}
	if !rows[0].Critical || !rows[2].Critical {
		t.Error("both tasks on the single chain should be critical")
	}

	var buf bytes.Buffer
	PrintRows(&buf, rows)
	if !strings.Contains(buf.String(), "Ship") {
		t.Error("expected rendered rows to contain the milestone subject")
	}
}
