package layout

import (
	"github.com/charmbracelet/log"
)

// linearOrder returns the units in topological order using Kahn's
// algorithm. Ready units are taken in label order. When only cycles remain,
// the unit with the fewest unresolved incoming arrows is released.
func linearOrder(ug *unitGraph, logger *log.Logger) []int {
	n := len(ug.units)
	inDegree := make([]int, n)
	for u := range ug.units {
		for _, a := range ug.arcs[u] {
			if a.out {
				inDegree[a.other]++
			}
		}
	}

	done := make([]bool, n)
	order := make([]int, 0, n)
	for len(order) < n {
		next := -1
		for u := range n {
			if !done[u] && inDegree[u] == 0 {
				next = u
				break
			}
		}
		if next < 0 {
			for u := range n {
				if !done[u] && (next < 0 || inDegree[u] < inDegree[next]) {
					next = u
				}
			}
			logger.Debug("released unit from cycle",
				"unit", ug.units[next].Label(),
				"unresolved", inDegree[next])
		}
		done[next] = true
		order = append(order, next)
		for _, a := range ug.arcs[next] {
			if a.out && !done[a.other] {
				inDegree[a.other]--
			}
		}
	}
	return order
}

func linearLayout(ug *unitGraph, orientation Orientation, logger *log.Logger) map[*Unit]Cell {
	placement := make(map[*Unit]Cell, len(ug.units))
	for i, u := range linearOrder(ug, logger) {
		cell := Cell{Col: i}
		if orientation == Vertical {
			cell = Cell{Row: i}
		}
		placement[ug.units[u]] = cell
	}
	return placement
}
