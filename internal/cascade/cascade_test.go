package cascade

import (
	"errors"
	"testing"
	"time"

	"github.com/orga-pm/ganttcore/internal/graph"
	"github.com/orga-pm/ganttcore/internal/model"
)

func date(day int) model.Date {
	return model.NewDate(2026, time.January, day)
}

func task(id string, startDay, dueDay int) model.Task {
	t := model.Task{ID: id, Subject: id, Status: model.StatusOpen}
	if startDay > 0 {
		t.StartDate = date(startDay)
	}
	if dueDay > 0 {
		t.DueDate = date(dueDay)
	}
	return t
}

func edge(taskID, dependsOn string, dt model.DepType, lag int) model.Edge {
	return model.Edge{TaskID: taskID, DependsOn: dependsOn, Type: dt, LagDays: lag}
}

func chainSnapshot() *model.Snapshot {
	// a(Jan 1-5) -> b(Jan 6-10) -> c(Jan 11-15), FS lag 0
	return &model.Snapshot{
		Project: model.Project{ID: "p", StartDate: date(1), Mode: model.ModeStrict},
		Tasks: []model.Task{
			task("a", 1, 5),
			task("b", 6, 10),
			task("c", 11, 15),
		},
		Edges: []model.Edge{
			edge("b", "a", model.FinishToStart, 0),
			edge("c", "b", model.FinishToStart, 0),
		},
	}
}

func buildTestGraph(t *testing.T, snap *model.Snapshot) *graph.Graph {
	t.Helper()
	g, err := graph.Build(snap)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func mustCompute(t *testing.T, g *graph.Graph, taskID string, newStart, newEnd model.Date) *Result {
	t.Helper()
	res, err := Compute(g, taskID, newStart, newEnd)
	if err != nil {
		t.Fatalf("compute cascade: %v", err)
	}
	return res
}

func findEntry(t *testing.T, res *Result, taskID, field string) Entry {
	t.Helper()
	for _, e := range res.Entries {
		if e.TaskID == taskID && e.Field == field {
			return e
		}
	}
	t.Fatalf("no entry for %s.%s in %+v", taskID, field, res.Entries)
	return Entry{}
}

func TestCompute_FSChainShift(t *testing.T) {
	// Moving a's end to Jan 8 pushes b to Jan 9-13 and c to Jan 14-18.
	g := buildTestGraph(t, chainSnapshot())

	res := mustCompute(t, g, "a", model.Date{}, date(8))

	if res.TotalAffected != 2 {
		t.Fatalf("expected total affected 2, got %d", res.TotalAffected)
	}

	bStart := findEntry(t, res, "b", "start_date")
	if bStart.NewValue.String() != "2026-01-09" || bStart.DaysShift != 3 {
		t.Errorf("expected b start Jan 9 shift 3, got %s shift %d", bStart.NewValue, bStart.DaysShift)
	}
	bDue := findEntry(t, res, "b", "due_date")
	if bDue.NewValue.String() != "2026-01-13" {
		t.Errorf("expected b due Jan 13, got %s", bDue.NewValue)
	}
	cStart := findEntry(t, res, "c", "start_date")
	if cStart.NewValue.String() != "2026-01-14" {
		t.Errorf("expected c start Jan 14, got %s", cStart.NewValue)
	}
	cDue := findEntry(t, res, "c", "due_date")
	if cDue.NewValue.String() != "2026-01-18" {
		t.Errorf("expected c due Jan 18, got %s", cDue.NewValue)
	}
}

func TestCompute_NoViolationNoShift(t *testing.T) {
	// Pulling a's end earlier leaves the constraint satisfied; nothing
	// cascades (pull-in happens only via AdvanceOnCompletion).
	g := buildTestGraph(t, chainSnapshot())

	res := mustCompute(t, g, "a", model.Date{}, date(3))

	if !res.Empty() {
		t.Errorf("expected empty cascade, got %+v", res.Entries)
	}
}

func TestCompute_SSEdgeIgnoresFinishOnlyChange(t *testing.T) {
	snap := &model.Snapshot{
		Project: model.Project{ID: "p", StartDate: date(1)},
		Tasks:   []model.Task{task("a", 1, 5), task("b", 1, 8)},
		Edges:   []model.Edge{edge("b", "a", model.StartToStart, 0)},
	}
	g := buildTestGraph(t, snap)

	res := mustCompute(t, g, "a", model.Date{}, date(9))

	if !res.Empty() {
		t.Errorf("SS edge should ignore a finish-only change, got %+v", res.Entries)
	}
}

func TestCompute_SSEdgeFollowsStartChange(t *testing.T) {
	snap := &model.Snapshot{
		Project: model.Project{ID: "p", StartDate: date(1)},
		Tasks:   []model.Task{task("a", 1, 5), task("b", 1, 8)},
		Edges:   []model.Edge{edge("b", "a", model.StartToStart, 0)},
	}
	g := buildTestGraph(t, snap)

	res := mustCompute(t, g, "a", date(4), model.Date{})

	bStart := findEntry(t, res, "b", "start_date")
	if bStart.NewValue.String() != "2026-01-04" || bStart.DaysShift != 3 {
		t.Errorf("expected b start Jan 4 shift 3, got %s shift %d", bStart.NewValue, bStart.DaysShift)
	}
}

func TestCompute_FinishToFinish(t *testing.T) {
	// FF lag 0: b must not finish before a does.
	snap := &model.Snapshot{
		Project: model.Project{ID: "p", StartDate: date(1)},
		Tasks:   []model.Task{task("a", 1, 5), task("b", 2, 5)},
		Edges:   []model.Edge{edge("b", "a", model.FinishToFinish, 0)},
	}
	g := buildTestGraph(t, snap)

	res := mustCompute(t, g, "a", model.Date{}, date(7))

	bDue := findEntry(t, res, "b", "due_date")
	if bDue.NewValue.String() != "2026-01-07" || bDue.DaysShift != 2 {
		t.Errorf("expected b due Jan 7 shift 2, got %s shift %d", bDue.NewValue, bDue.DaysShift)
	}
}

func TestCompute_StopsAtCompletedTask(t *testing.T) {
	snap := chainSnapshot()
	snap.Tasks[1].Status = model.StatusCompleted // b
	g := buildTestGraph(t, snap)

	res := mustCompute(t, g, "a", model.Date{}, date(8))

	// b is never shifted and c, which depends only on b, receives no
	// propagation through that branch.
	if res.TotalAffected != 0 {
		t.Errorf("expected cascade to stop at completed b, got %+v", res.Entries)
	}
}

func TestCompute_CompletedPredecessorNeverPushes(t *testing.T) {
	snap := chainSnapshot()
	snap.Tasks[0].Status = model.StatusCompleted // a
	g := buildTestGraph(t, snap)

	res := mustCompute(t, g, "a", model.Date{}, date(8))

	if !res.Empty() {
		t.Errorf("completed predecessor should not cascade, got %+v", res.Entries)
	}
}

func TestCompute_DiamondTakesLargestShift(t *testing.T) {
	//   a(1-5) --FS--> b(6-8) --FS--> d(13-15)
	//   a(1-5) --FS--> c(6-12) --FS-> d(13-15)
	// Moving a's end to Jan 8 shifts b and c by 3; d needs 3 via c
	// (c due Jan 15 => d start Jan 16) but only 1 via b. Largest wins.
	snap := &model.Snapshot{
		Project: model.Project{ID: "p", StartDate: date(1)},
		Tasks: []model.Task{
			task("a", 1, 5),
			task("b", 6, 8),
			task("c", 6, 12),
			task("d", 13, 15),
		},
		Edges: []model.Edge{
			edge("b", "a", model.FinishToStart, 0),
			edge("c", "a", model.FinishToStart, 0),
			edge("d", "b", model.FinishToStart, 0),
			edge("d", "c", model.FinishToStart, 0),
		},
	}
	g := buildTestGraph(t, snap)

	res := mustCompute(t, g, "a", model.Date{}, date(8))

	if res.TotalAffected != 3 {
		t.Fatalf("expected 3 affected tasks, got %d", res.TotalAffected)
	}
	dStart := findEntry(t, res, "d", "start_date")
	if dStart.NewValue.String() != "2026-01-16" || dStart.DaysShift != 3 {
		t.Errorf("expected d start Jan 16 shift 3, got %s shift %d", dStart.NewValue, dStart.DaysShift)
	}

	// Exactly one start entry per affected task: no revisits.
	starts := 0
	for _, e := range res.Entries {
		if e.Field == "start_date" {
			starts++
		}
	}
	if starts != 3 {
		t.Errorf("expected 3 start entries, got %d", starts)
	}
}

func TestCompute_UnscheduledDependentWarnsAndStops(t *testing.T) {
	snap := chainSnapshot()
	snap.Tasks[1].StartDate = model.Date{} // b has no dates
	snap.Tasks[1].DueDate = model.Date{}
	g := buildTestGraph(t, snap)

	res := mustCompute(t, g, "a", model.Date{}, date(8))

	if res.TotalAffected != 0 {
		t.Errorf("expected no shifts through unscheduled b, got %+v", res.Entries)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].TaskID != "b" {
		t.Errorf("expected warning about b, got %v", res.Warnings)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	// Applying a cascade and recomputing for the same trigger change
	// must yield an empty result.
	snap := chainSnapshot()
	g := buildTestGraph(t, snap)

	res := mustCompute(t, g, "a", model.Date{}, date(8))
	if err := ApplyToSnapshot(snap, res); err != nil {
		t.Fatalf("apply: %v", err)
	}

	g2 := buildTestGraph(t, snap)
	again := mustCompute(t, g2, "a", model.Date{}, date(8))
	if !again.Empty() {
		t.Errorf("expected empty cascade after apply, got %+v", again.Entries)
	}
}

func TestCompute_PreviewIsSideEffectFree(t *testing.T) {
	snap := chainSnapshot()
	g := buildTestGraph(t, snap)

	first := mustCompute(t, g, "a", model.Date{}, date(8))
	second := mustCompute(t, g, "a", model.Date{}, date(8))

	if !Equivalent(first, second) {
		t.Error("repeated previews over an unchanged graph diverged")
	}
	if snap.Tasks[1].StartDate.String() != "2026-01-06" {
		t.Error("preview mutated stored dates")
	}
}

func TestApply_StalePreview(t *testing.T) {
	snap := chainSnapshot()
	g := buildTestGraph(t, snap)
	preview := mustCompute(t, g, "a", model.Date{}, date(8))

	// The graph changes between preview and apply: b moved out a week.
	snap.Tasks[1].StartDate = date(13)
	snap.Tasks[1].DueDate = date(17)
	g2 := buildTestGraph(t, snap)

	_, err := Apply(g2, "a", model.Date{}, date(8), preview)
	if !errors.Is(err, ErrStalePreview) {
		t.Fatalf("expected ErrStalePreview, got %v", err)
	}
}

func TestApply_FreshPreviewSucceeds(t *testing.T) {
	snap := chainSnapshot()
	g := buildTestGraph(t, snap)
	preview := mustCompute(t, g, "a", model.Date{}, date(8))

	res, err := Apply(g, "a", model.Date{}, date(8), preview)
	if err != nil {
		t.Fatalf("apply with fresh preview: %v", err)
	}
	if !Equivalent(res, preview) {
		t.Error("apply result differs from confirmed preview")
	}
}

func TestApplyToSnapshot_RejectsInvertedTriggerDates(t *testing.T) {
	snap := chainSnapshot()
	g := buildTestGraph(t, snap)

	res := mustCompute(t, g, "a", model.Date{}, date(8))
	res.NewEnd = model.Date{}
	res.NewStart = date(20) // start after a's stored due date

	if err := ApplyToSnapshot(snap, res); err == nil {
		t.Fatal("expected rejection of inverted trigger dates")
	}
	if snap.Tasks[1].StartDate.String() != "2026-01-06" {
		t.Error("failed apply must leave the snapshot untouched")
	}
}

func TestIsBlocked(t *testing.T) {
	snap := chainSnapshot()
	g := buildTestGraph(t, snap)

	if !IsBlocked(g, "b") {
		t.Error("b should be blocked while a is incomplete")
	}

	snap.Tasks[0].Status = model.StatusCompleted
	g = buildTestGraph(t, snap)
	if IsBlocked(g, "b") {
		t.Error("b should be unblocked once a completes")
	}
	if !IsBlocked(g, "c") {
		t.Error("c should still be blocked by incomplete b")
	}
}

func TestBlockedTasks_IgnoresNonFSEdges(t *testing.T) {
	snap := &model.Snapshot{
		Project: model.Project{ID: "p", StartDate: date(1)},
		Tasks:   []model.Task{task("a", 1, 5), task("b", 2, 6)},
		Edges:   []model.Edge{edge("b", "a", model.StartToStart, 0)},
	}
	g := buildTestGraph(t, snap)

	if got := BlockedTasks(g); len(got) != 0 {
		t.Errorf("SS edges are advisory for blocking, got %v", got)
	}
}

func TestAdvanceOnCompletion(t *testing.T) {
	snap := chainSnapshot()
	snap.Tasks[0].Status = model.StatusCompleted // a done, due Jan 5
	g := buildTestGraph(t, snap)

	// Today is Jan 3: a finished two days early, so b pulls in to Jan 4
	// and keeps its 4-day duration. Today Jan 10: a finished late, b
	// pushes out to Jan 11.
	res, err := AdvanceOnCompletion(g, "a", date(3))
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	start := findEntry(t, res, "b", "start_date")
	if start.NewValue.String() != "2026-01-04" || start.DaysShift != -2 {
		t.Errorf("expected b pulled to Jan 4 shift -2, got %s shift %d", start.NewValue, start.DaysShift)
	}
	due := findEntry(t, res, "b", "due_date")
	if due.NewValue.String() != "2026-01-08" {
		t.Errorf("expected b due Jan 8, got %s", due.NewValue)
	}

	res, err = AdvanceOnCompletion(g, "a", date(10))
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	start = findEntry(t, res, "b", "start_date")
	if start.NewValue.String() != "2026-01-11" {
		t.Errorf("expected b pushed to Jan 11, got %s", start.NewValue)
	}
	due = findEntry(t, res, "b", "due_date")
	if due.NewValue.String() != "2026-01-15" {
		t.Errorf("expected b due Jan 15 (duration preserved), got %s", due.NewValue)
	}

	// Finished on the planned day: the handoff is already right.
	res, err = AdvanceOnCompletion(g, "a", date(5))
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(res.Entries) != 0 {
		t.Errorf("expected no change for an on-time finish, got %+v", res.Entries)
	}
}

func TestAdvanceOnCompletion_WaitsForOtherPredecessors(t *testing.T) {
	// c depends on both a (completed) and x (open): no advance.
	snap := chainSnapshot()
	snap.Tasks[0].Status = model.StatusCompleted
	snap.Tasks = append(snap.Tasks, task("x", 1, 20))
	snap.Edges = append(snap.Edges, edge("b", "x", model.FinishToStart, 0))
	g := buildTestGraph(t, snap)

	res, err := AdvanceOnCompletion(g, "a", date(10))
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(res.Entries) != 0 {
		t.Errorf("expected no advance while x is incomplete, got %+v", res.Entries)
	}
}
