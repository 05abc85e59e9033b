package layout

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/catdiagram/pkg/category"
)

// Cell is a grid coordinate. Rows grow downwards, columns to the right.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Less orders cells row-major.
func (c Cell) Less(o Cell) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

func manhattan(a, b Cell) int { return abs(a.Row-b.Row) + abs(a.Col-b.Col) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Unit is an atomic placement unit: a single object or a group.
type Unit struct {
	objects []category.Object // sorted by name
}

func newUnit(objs []category.Object) *Unit {
	u := &Unit{objects: slices.Clone(objs)}
	category.SortObjects(u.objects)
	return u
}

// Objects returns the members sorted by name.
func (u *Unit) Objects() []category.Object { return slices.Clone(u.objects) }

// IsGroup reports whether the unit holds more than one object.
func (u *Unit) IsGroup() bool { return len(u.objects) > 1 }

// Contains reports whether o is a member of the unit.
func (u *Unit) Contains(o category.Object) bool { return slices.Contains(u.objects, o) }

// Label returns the object name, or "{A,C}" for a group.
func (u *Unit) Label() string {
	if len(u.objects) == 1 {
		return u.objects[0].Name()
	}
	names := make([]string, len(u.objects))
	for i, o := range u.objects {
		names[i] = o.Name()
	}
	return "{" + strings.Join(names, ",") + "}"
}

func (u *Unit) String() string { return u.Label() }

// Grid assigns units to cells. Every unit occupies exactly one cell and no
// cell holds more than one unit. Coordinates start at (0,0).
type Grid struct {
	width, height int
	cells         map[Cell]*Unit
	pos           map[category.Object]Cell
}

func newGrid(placement map[*Unit]Cell) *Grid {
	g := &Grid{
		cells: make(map[Cell]*Unit, len(placement)),
		pos:   make(map[category.Object]Cell),
	}
	for u, c := range placement {
		g.cells[c] = u
		for _, o := range u.objects {
			g.pos[o] = c
		}
		g.width = max(g.width, c.Col+1)
		g.height = max(g.height, c.Row+1)
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// At returns the unit at (row, col), or nil for an empty cell.
func (g *Grid) At(row, col int) *Unit { return g.cells[Cell{Row: row, Col: col}] }

// Position returns the cell of the unit holding o.
func (g *Grid) Position(o category.Object) (Cell, bool) {
	c, ok := g.pos[o]
	return c, ok
}

// Cells returns the occupied cells in row-major order.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, 0, len(g.cells))
	for c := range g.cells {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Cell) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})
	return out
}

// Units returns the placed units in row-major order.
func (g *Grid) Units() []*Unit {
	cells := g.Cells()
	out := make([]*Unit, len(cells))
	for i, c := range cells {
		out[i] = g.cells[c]
	}
	return out
}

// Len returns the number of placed units.
func (g *Grid) Len() int { return len(g.cells) }

// Cost returns the sum of Manhattan arrow lengths over the non-identity
// morphisms of d whose endpoints are placed in distinct cells. Morphisms
// with an unplaced endpoint are ignored.
func (g *Grid) Cost(d *category.Diagram) int {
	total := 0
	for _, m := range d.NonIdentity() {
		a, okA := g.pos[m.Domain()]
		b, okB := g.pos[m.Codomain()]
		if okA && okB {
			total += manhattan(a, b)
		}
	}
	return total
}

// Transpose returns a copy of g with rows and columns swapped.
func (g *Grid) Transpose() *Grid {
	placement := make(map[*Unit]Cell, len(g.cells))
	for c, u := range g.cells {
		placement[u] = Cell{Row: c.Col, Col: c.Row}
	}
	return newGrid(placement)
}

// String draws the grid as rows of unit labels separated by " | ".
func (g *Grid) String() string {
	var sb strings.Builder
	for r := range g.height {
		row := make([]string, g.width)
		for c := range g.width {
			if u := g.At(r, c); u != nil {
				row[c] = u.Label()
			} else {
				row[c] = "."
			}
		}
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

type gridJSON struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Cells  []cellJSON `json:"cells"`
}

type cellJSON struct {
	Row     int      `json:"row"`
	Col     int      `json:"col"`
	Objects []string `json:"objects"`
}

// MarshalJSON encodes the grid as {"width","height","cells":[...]} with
// cells in row-major order.
func (g *Grid) MarshalJSON() ([]byte, error) {
	out := gridJSON{Width: g.width, Height: g.height, Cells: []cellJSON{}}
	for _, c := range g.Cells() {
		u := g.cells[c]
		names := make([]string, len(u.objects))
		for i, o := range u.objects {
			names[i] = o.Name()
		}
		out.Cells = append(out.Cells, cellJSON{Row: c.Row, Col: c.Col, Objects: names})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a grid produced by MarshalJSON. It rejects negative
// coordinates, empty cells, and objects or cells that appear twice.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var in gridJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	placement := make(map[*Unit]Cell, len(in.Cells))
	seenCell := make(map[Cell]bool, len(in.Cells))
	seenObj := make(map[string]bool)
	for _, cj := range in.Cells {
		c := Cell{Row: cj.Row, Col: cj.Col}
		if c.Row < 0 || c.Col < 0 {
			return fmt.Errorf("grid: negative cell %s", c)
		}
		if len(cj.Objects) == 0 {
			return fmt.Errorf("grid: cell %s has no objects", c)
		}
		if seenCell[c] {
			return fmt.Errorf("grid: cell %s listed twice", c)
		}
		seenCell[c] = true
		for _, name := range cj.Objects {
			if seenObj[name] {
				return fmt.Errorf("grid: object %q placed twice", name)
			}
			seenObj[name] = true
		}
		placement[newUnit(category.Objects(cj.Objects...))] = c
	}
	*g = *newGrid(placement)
	return nil
}
