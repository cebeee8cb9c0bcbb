package store

import (
	"sort"

	"planboard/internal/model"
)

// childIndex maintains the reverse lookup "children of parent X ordered by
// position". Buckets are marked stale on write and rebuilt on the next read,
// so a dispatch touching many rows of one parent pays for a single rebuild.
type childIndex[T model.Entity] struct {
	table    *Table[T]
	parentOf func(T) string
	position func(T) float64

	buckets map[string][]string
	stale   map[string]bool
}

func newChildIndex[T model.Entity](table *Table[T], parentOf func(T) string, position func(T) float64) *childIndex[T] {
	ix := &childIndex[T]{
		table:    table,
		parentOf: parentOf,
		position: position,
		buckets:  make(map[string][]string),
		stale:    make(map[string]bool),
	}
	table.watch(func(old, new *T) {
		if old != nil {
			ix.invalidate(parentOf(*old))
		}
		if new != nil {
			ix.invalidate(parentOf(*new))
		}
	})
	return ix
}

func (ix *childIndex[T]) invalidate(parentID string) {
	if parentID == "" {
		return
	}
	ix.stale[parentID] = true
}

// ChildrenOf returns the parent's children sorted ascending by position,
// ties broken by insertion sequence.
func (ix *childIndex[T]) ChildrenOf(parentID string) []T {
	ids, ok := ix.buckets[parentID]
	if !ok || ix.stale[parentID] {
		ids = ix.rebuild(parentID)
	}
	rows := make([]T, 0, len(ids))
	for _, id := range ids {
		if row, ok := ix.table.Get(id); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func (ix *childIndex[T]) rebuild(parentID string) []string {
	var rows []T
	for _, row := range ix.table.All() {
		if ix.parentOf(row) == parentID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		pi, pj := ix.position(rows[i]), ix.position(rows[j])
		if pi != pj {
			return pi < pj
		}
		return ix.table.seqOf(rows[i].EntityID()) < ix.table.seqOf(rows[j].EntityID())
	})
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.EntityID()
	}
	ix.buckets[parentID] = ids
	delete(ix.stale, parentID)
	return ids
}
