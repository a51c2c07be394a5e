// Package sequencer maintains the float sort_order key that gives tasks
// and milestones one shared display order. Moving an item writes a single
// key, the midpoint of its new neighbors; only when floating-point
// precision runs out does the whole project get renumbered.
package sequencer

import (
	"fmt"
	"sort"

	"github.com/orga-pm/ganttcore/internal/model"
)

const (
	// DefaultInitialGap spaces keys on initial assignment and after a
	// renormalization, leaving room for ~10 midpoint insertions between
	// any two neighbors before precision matters again.
	DefaultInitialGap = 1000.0

	// DefaultMinGap is the neighbor distance below which a midpoint is
	// no longer trustworthy and the project is renumbered instead.
	DefaultMinGap = 0.001
)

// Options tune the key spacing. Zero values fall back to the defaults.
type Options struct {
	InitialGap float64
	MinGap     float64
}

func (o Options) initialGap() float64 {
	if o.InitialGap > 0 {
		return o.InitialGap
	}
	return DefaultInitialGap
}

func (o Options) minGap() float64 {
	if o.MinGap > 0 {
		return o.MinGap
	}
	return DefaultMinGap
}

// Assignment is one sort_order write the collaborator must persist.
type Assignment struct {
	ItemID    string  `json:"item_id"`
	Milestone bool    `json:"milestone,omitempty"`
	SortOrder float64 `json:"sort_order"`
}

// Result reports the outcome of a reorder. Assignments holds every key
// written: one entry in the common case, the whole project when
// Renormalized is true.
type Result struct {
	ItemID       string       `json:"item_id"`
	SortOrder    float64      `json:"sort_order"`
	Renormalized bool         `json:"renormalized,omitempty"`
	Assignments  []Assignment `json:"assignments"`
}

// item is a mutable view over a task's or milestone's sort_order.
type item struct {
	id        string
	milestone bool
	order     *float64
	created   int // snapshot array position; ties break by creation order
}

func collect(snap *model.Snapshot) []item {
	items := make([]item, 0, len(snap.Tasks)+len(snap.Milestones))
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		items = append(items, item{id: t.ID, order: &t.SortOrder, created: i})
	}
	for i := range snap.Milestones {
		m := &snap.Milestones[i]
		items = append(items, item{id: m.ID, milestone: true, order: &m.SortOrder, created: len(snap.Tasks) + i})
	}
	sort.SliceStable(items, func(a, b int) bool {
		if *items[a].order != *items[b].order {
			return *items[a].order < *items[b].order
		}
		return items[a].created < items[b].created
	})
	return items
}

func find(items []item, id string) *item {
	for i := range items {
		if items[i].id == id {
			return &items[i]
		}
	}
	return nil
}

// Midpoint returns the key for an item dropped between two neighbors. A
// missing previous neighbor counts as 0; a missing next neighbor counts as
// the previous key plus one. The boolean is false when the neighbors are
// too close for the midpoint to be distinct, in which case the caller must
// renormalize and retry.
func Midpoint(prev, next *float64, minGap float64) (float64, bool) {
	lo := 0.0
	if prev != nil {
		lo = *prev
	}
	hi := lo + 1
	if next != nil {
		hi = *next
	}
	mid := (lo + hi) / 2
	if hi-lo < minGap || mid == lo || mid == hi {
		return 0, false
	}
	return mid, true
}

// Reorder moves an item between two neighbors, identified by ID (empty ID
// means no neighbor on that side). It writes the moved item's key into the
// snapshot; when precision is exhausted it first renumbers every item to
// evenly spaced integer keys, preserving the current order, then retries
// the single insertion.
func Reorder(snap *model.Snapshot, itemID, prevID, nextID string, opts Options) (*Result, error) {
	items := collect(snap)

	moved := find(items, itemID)
	if moved == nil {
		return nil, fmt.Errorf("item %s not in snapshot", itemID)
	}

	neighbor := func(id string) (*float64, error) {
		if id == "" {
			return nil, nil
		}
		it := find(items, id)
		if it == nil {
			return nil, fmt.Errorf("neighbor %s not in snapshot", id)
		}
		return it.order, nil
	}

	prev, err := neighbor(prevID)
	if err != nil {
		return nil, err
	}
	next, err := neighbor(nextID)
	if err != nil {
		return nil, err
	}

	result := &Result{ItemID: itemID}

	key, ok := Midpoint(prev, next, opts.minGap())
	if !ok {
		result.Renormalized = true
		result.Assignments = renumber(items, opts.initialGap())
		// Neighbor pointers are still valid; their values changed.
		key, ok = Midpoint(prev, next, opts.minGap())
		if !ok {
			return nil, fmt.Errorf("no room between %s and %s after renormalization", prevID, nextID)
		}
	}

	*moved.order = key
	result.SortOrder = key
	result.Assignments = append(result.Assignments, Assignment{
		ItemID:    itemID,
		Milestone: moved.milestone,
		SortOrder: key,
	})
	return result, nil
}

// Initialize assigns evenly spaced keys to a project whose items have
// never been ordered (every sort_order still zero). Items keep their
// current display order: existing key, then schedule dates, then creation
// order. Projects with any nonzero key are left untouched.
func Initialize(snap *model.Snapshot, opts Options) []Assignment {
	items := collect(snap)
	for _, it := range items {
		if *it.order != 0 {
			return nil
		}
	}
	byDisplayOrder(snap, items)
	return renumber(items, opts.initialGap())
}

// Renormalize reassigns evenly spaced integer-valued keys to every item,
// preserving the current order.
func Renormalize(snap *model.Snapshot, opts Options) []Assignment {
	return renumber(collect(snap), opts.initialGap())
}

func renumber(items []item, gap float64) []Assignment {
	assignments := make([]Assignment, 0, len(items))
	for i := range items {
		key := float64(i+1) * gap
		*items[i].order = key
		assignments = append(assignments, Assignment{
			ItemID:    items[i].id,
			Milestone: items[i].milestone,
			SortOrder: key,
		})
	}
	return assignments
}

// byDisplayOrder sorts never-ordered items the way the Gantt shows them:
// scheduled items by date, then everything else by creation order.
func byDisplayOrder(snap *model.Snapshot, items []item) {
	dates := make(map[string]model.Date, len(items))
	for _, t := range snap.Tasks {
		if !t.StartDate.IsZero() {
			dates[t.ID] = t.StartDate
		} else if !t.DueDate.IsZero() {
			dates[t.ID] = t.DueDate
		}
	}
	for _, m := range snap.Milestones {
		if !m.DueDate.IsZero() {
			dates[m.ID] = m.DueDate
		}
	}
	sort.SliceStable(items, func(a, b int) bool {
		da, aok := dates[items[a].id]
		db, bok := dates[items[b].id]
		switch {
		case aok && bok && !da.Equal(db):
			return da.Before(db)
		case aok != bok:
			return aok // dated items sort ahead of undated ones
		default:
			return items[a].created < items[b].created
		}
	})
}
