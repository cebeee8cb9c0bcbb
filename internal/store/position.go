package store

// Positions are drawn from a fractional ordering space so a row can be placed
// between any two siblings without renumbering the rest. PositionGap is the
// step used for appends and for renormalization.
const PositionGap = 65536.0

// insertPosition computes the position for a row placed at index among
// siblings, given the siblings' positions in ascending order with the moved
// row itself excluded. renormalize reports that the space between the two
// neighbors can no longer be split under float64 and the caller must renumber
// the whole sibling list instead.
func insertPosition(siblings []float64, index int) (pos float64, renormalize bool) {
	if index < 0 {
		index = 0
	}
	if index > len(siblings) {
		index = len(siblings)
	}

	switch {
	case len(siblings) == 0:
		return PositionGap, false
	case index == 0:
		pos = siblings[0] / 2
		if pos <= 0 || pos >= siblings[0] {
			return 0, true
		}
		return pos, false
	case index == len(siblings):
		return siblings[len(siblings)-1] + PositionGap, false
	default:
		lo, hi := siblings[index-1], siblings[index]
		pos = lo + (hi-lo)/2
		if pos <= lo || pos >= hi {
			return 0, true
		}
		return pos, false
	}
}

// renormalized returns evenly spaced positions for n siblings.
func renormalized(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = PositionGap * float64(i+1)
	}
	return out
}
