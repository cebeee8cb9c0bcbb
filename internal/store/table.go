package store

import (
	"sort"

	"planboard/internal/model"
)

type tableEntry[T model.Entity] struct {
	row T
	seq uint64
}

// Table is the normalized storage for one entity kind. Rows are addressed by
// id and copied on read, so callers never alias store-internal state. Every
// write notifies registered watchers, which is how relation indexes learn to
// invalidate themselves.
type Table[T model.Entity] struct {
	entries map[string]tableEntry[T]
	nextSeq uint64

	// watchers receive (old, new); old is nil on insert, new is nil on
	// delete.
	watchers []func(old, new *T)
}

func NewTable[T model.Entity]() *Table[T] {
	return &Table[T]{entries: make(map[string]tableEntry[T])}
}

func (t *Table[T]) Get(id string) (T, bool) {
	e, ok := t.entries[id]
	return e.row, ok
}

func (t *Table[T]) Has(id string) bool {
	_, ok := t.entries[id]
	return ok
}

func (t *Table[T]) Len() int {
	return len(t.entries)
}

// All returns every row in insertion order.
func (t *Table[T]) All() []T {
	rows := make([]T, 0, len(t.entries))
	for _, e := range t.entries {
		rows = append(rows, e.row)
	}
	ids := make(map[string]uint64, len(t.entries))
	for id, e := range t.entries {
		ids[id] = e.seq
	}
	sort.Slice(rows, func(i, j int) bool {
		return ids[rows[i].EntityID()] < ids[rows[j].EntityID()]
	})
	return rows
}

// Put inserts the row or replaces the existing one under the same id. The
// insertion sequence of a replaced row is preserved so ordering tie-breaks
// stay deterministic.
func (t *Table[T]) Put(row T) {
	id := row.EntityID()
	old, existed := t.entries[id]
	seq := old.seq
	if !existed {
		t.nextSeq++
		seq = t.nextSeq
	}
	t.entries[id] = tableEntry[T]{row: row, seq: seq}

	var oldRow *T
	if existed {
		oldRow = &old.row
	}
	for _, w := range t.watchers {
		w(oldRow, &row)
	}
}

// Rename re-keys a row under its new id, keeping the insertion sequence so
// ordering tie-breaks among equal positions survive reconciliation.
func (t *Table[T]) Rename(oldID string, row T) {
	old, ok := t.entries[oldID]
	if !ok {
		t.Put(row)
		return
	}
	delete(t.entries, oldID)
	t.entries[row.EntityID()] = tableEntry[T]{row: row, seq: old.seq}
	for _, w := range t.watchers {
		w(&old.row, &row)
	}
}

func (t *Table[T]) Delete(id string) bool {
	old, ok := t.entries[id]
	if !ok {
		return false
	}
	delete(t.entries, id)
	for _, w := range t.watchers {
		w(&old.row, nil)
	}
	return true
}

// Clear drops every row, notifying watchers per row.
func (t *Table[T]) Clear() {
	for id := range t.entries {
		old := t.entries[id]
		delete(t.entries, id)
		for _, w := range t.watchers {
			w(&old.row, nil)
		}
	}
}

func (t *Table[T]) seqOf(id string) uint64 {
	return t.entries[id].seq
}

func (t *Table[T]) watch(fn func(old, new *T)) {
	t.watchers = append(t.watchers, fn)
}
