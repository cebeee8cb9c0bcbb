package store

import "planboard/internal/model"

// placeAt writes moved back at index among ordered (the destination's
// siblings, moved excluded). When the fractional space between the two target
// neighbors is exhausted every sibling is renumbered to evenly spaced values
// instead; a move is never refused.
func placeAt[T model.Entity](ordered []T, moved T, index int,
	setPos func(*T, float64), positions []float64, put func(T)) {
	pos, renorm := insertPosition(positions, index)
	if !renorm {
		setPos(&moved, pos)
		put(moved)
		return
	}

	if index < 0 {
		index = 0
	}
	if index > len(ordered) {
		index = len(ordered)
	}
	final := make([]T, 0, len(ordered)+1)
	final = append(final, ordered[:index]...)
	final = append(final, moved)
	final = append(final, ordered[index:]...)
	for i, spaced := range renormalized(len(final)) {
		row := final[i]
		setPos(&row, spaced)
		put(row)
	}
}

// indexExcluding returns id's 0-based rank among rows with itself excluded,
// or -1 when absent. This matches the move request contract, whose index is
// relative to the sibling sequence without the moved row.
func indexExcluding[T model.Entity](rows []T, id string) int {
	n := 0
	for _, row := range rows {
		if row.EntityID() == id {
			return n
		}
		n++
	}
	return -1
}

// withoutID filters id out of rows, preserving order.
func withoutID[T model.Entity](rows []T, id string) []T {
	out := rows[:0:0]
	for _, row := range rows {
		if row.EntityID() != id {
			out = append(out, row)
		}
	}
	return out
}

func positionsOf[T model.Entity](rows []T, position func(T) float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = position(row)
	}
	return out
}
