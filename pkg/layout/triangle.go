package layout

import (
	"github.com/charmbracelet/log"
)

// candidate is a scored cell for the unit being placed.
type candidate struct {
	cell      Cell
	cost      int // incremental arrow length
	skew      int // |width - height| of the bounding box
	area      int
	flow      int // rightward and downward arrow preference, larger is better
	evaluated bool
}

func (c candidate) better(o candidate) bool {
	if !o.evaluated {
		return true
	}
	if c.cost != o.cost {
		return c.cost < o.cost
	}
	if c.skew != o.skew {
		return c.skew < o.skew
	}
	if c.area != o.area {
		return c.area < o.area
	}
	if c.flow != o.flow {
		return c.flow > o.flow
	}
	return c.cell.Less(o.cell)
}

// neighbourhood lists the eight cells around a cell, row-major.
var neighbourhood = []Cell{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// ring lists the offsets at Chebyshev distance radius, row-major. Radius 1
// is the 8-neighbourhood; wider rings are searched only when every closer
// cell around the placed neighbours is taken.
func ring(radius int) []Cell {
	if radius == 1 {
		return neighbourhood
	}
	out := make([]Cell, 0, 8*radius)
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if max(abs(dr), abs(dc)) == radius {
				out = append(out, Cell{Row: dr, Col: dc})
			}
		}
	}
	return out
}

// triangleLayout places every component greedily and concatenates the
// blocks left to right, top aligned.
func triangleLayout(ug *unitGraph, logger *log.Logger) map[*Unit]Cell {
	placement := make(map[*Unit]Cell, len(ug.units))
	offset := 0
	for _, comp := range ug.components() {
		cells := placeComponent(ug, comp, logger)
		width := 0
		for u, c := range cells {
			placement[ug.units[u]] = Cell{Row: c.Row, Col: c.Col + offset}
			width = max(width, c.Col+1)
		}
		offset += width
	}
	return placement
}

type box struct{ minR, maxR, minC, maxC int }

func (b box) extend(c Cell) box {
	return box{
		minR: min(b.minR, c.Row), maxR: max(b.maxR, c.Row),
		minC: min(b.minC, c.Col), maxC: max(b.maxC, c.Col),
	}
}

// placeComponent lays out one connected component and returns cells
// normalized so the smallest row and column are zero.
func placeComponent(ug *unitGraph, comp []int, logger *log.Logger) map[int]Cell {
	placed := make(map[int]Cell, len(comp))
	taken := make(map[Cell]bool, len(comp))

	seed := comp[0]
	for _, u := range comp[1:] {
		if len(ug.nbrs[u]) > len(ug.nbrs[seed]) {
			seed = u
		}
	}
	placed[seed] = Cell{}
	taken[Cell{}] = true
	bounds := box{}
	logger.Debug("seeded component", "unit", ug.units[seed].Label(), "neighbours", len(ug.nbrs[seed]))

	for len(placed) < len(comp) {
		next, best := -1, -1
		for _, u := range comp {
			if _, ok := placed[u]; ok {
				continue
			}
			n := 0
			for _, v := range ug.nbrs[u] {
				if _, ok := placed[v]; ok {
					n++
				}
			}
			if n == 0 {
				continue
			}
			if n > best || (n == best && len(ug.nbrs[u]) > len(ug.nbrs[next])) {
				next, best = u, n
			}
		}

		var pick candidate
		for radius := 1; !pick.evaluated; radius++ {
			for _, v := range ug.nbrs[next] {
				pc, ok := placed[v]
				if !ok {
					continue
				}
				for _, d := range ring(radius) {
					cell := Cell{Row: pc.Row + d.Row, Col: pc.Col + d.Col}
					if taken[cell] {
						continue
					}
					if c := score(ug, next, cell, placed, bounds); c.better(pick) {
						pick = c
					}
				}
			}
		}

		placed[next] = pick.cell
		taken[pick.cell] = true
		bounds = bounds.extend(pick.cell)
		logger.Debug("placed unit",
			"unit", ug.units[next].Label(),
			"cell", pick.cell,
			"cost", pick.cost)
	}

	out := make(map[int]Cell, len(placed))
	for u, c := range placed {
		out[u] = Cell{Row: c.Row - bounds.minR, Col: c.Col - bounds.minC}
	}
	return out
}

func score(ug *unitGraph, u int, cell Cell, placed map[int]Cell, bounds box) candidate {
	c := candidate{cell: cell, evaluated: true}
	for _, a := range ug.arcs[u] {
		pc, ok := placed[a.other]
		if !ok {
			continue
		}
		c.cost += manhattan(cell, pc)
		from, to := pc, cell
		if a.out {
			from, to = cell, pc
		}
		c.flow += 2*(to.Col-from.Col) + (to.Row - from.Row)
	}
	b := bounds.extend(cell)
	w, h := b.maxC-b.minC+1, b.maxR-b.minR+1
	c.skew = abs(w - h)
	c.area = w * h
	return c
}
