package xypic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/catdiagram/pkg/category"
	"github.com/matzehuels/catdiagram/pkg/layout"
)

// ErrUnplaced is returned when a drawn morphism has an endpoint that the grid
// does not place.
var ErrUnplaced = errors.New("object not placed on grid")

// Arrow describes one \ar command. Formatters receive it after the defaults
// have been filled in and may change any field.
type Arrow struct {
	Morphism   category.Morphism
	Tags       category.Tags
	Conclusion bool

	// Direction is the cell offset in Xy-pic letters, e.g. "rd". Empty for
	// loops.
	Direction string
	// Style is the arrow shaft, emitted as @{Style}. "-->" draws dashed.
	Style string
	// Loop holds the exit and entry corners of a loop, e.g. "ur,ul".
	Loop string
	// Curving is "^" or "_"; Curve is the bend in millimetres.
	Curving string
	Curve   int
	// LabelPos is "^" (left of the arrow) or "_" (right of it).
	LabelPos string
	Label    string
}

// String returns the \ar command for the arrow.
func (a *Arrow) String() string {
	var sb strings.Builder
	sb.WriteString(`\ar`)
	if a.Style != "" {
		sb.WriteString("@{" + a.Style + "}")
	}
	if a.Loop != "" {
		sb.WriteString("@(" + a.Loop + ")")
	}
	if a.Curve > 0 && a.Curving != "" {
		sb.WriteString("@/" + a.Curving + strconv.Itoa(a.Curve) + "mm/")
	}
	sb.WriteString("[" + a.Direction + "]")
	if a.Label != "" {
		pos := a.LabelPos
		if pos == "" {
			pos = "^"
		}
		sb.WriteString(pos + "{" + a.Label + "}")
	}
	return sb.String()
}

var loopCorners = []string{"ur,ul", "dr,dl", "ul,dl", "ur,dr"}

// parallelStep is the extra bend, in millimetres, given to each further pair
// of parallel arrows.
const parallelStep = 3

// Draw renders d on grid as an \xymatrix. Every drawn morphism must have both
// endpoints on the grid. A morphism between two objects of the same group
// shares the group's cell at both ends and is drawn as a loop on that cell.
func Draw(d *category.Diagram, grid *layout.Grid, opts ...Option) (string, error) {
	cfg := newConfig(opts)

	var arrows []*Arrow
	from := make(map[*Arrow]layout.Cell)
	for _, m := range d.Morphisms() {
		if !cfg.drawn(d, m) {
			continue
		}
		src, ok := grid.Position(m.Domain())
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnplaced, m.Domain())
		}
		dst, ok := grid.Position(m.Codomain())
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnplaced, m.Codomain())
		}
		a := &Arrow{
			Morphism:   m,
			Tags:       d.Tags(m),
			Conclusion: d.IsConclusion(m),
			Direction:  direction(src, dst),
			LabelPos:   "^",
			Label:      texLabel(m),
		}
		if a.Conclusion {
			a.Style = "-->"
		}
		arrows = append(arrows, a)
		from[a] = src
	}

	bend(arrows, from, grid)

	for _, a := range arrows {
		for _, t := range a.Tags {
			if f, ok := cfg.formatters[t]; ok {
				f(a)
			}
		}
	}

	byCell := make(map[layout.Cell][]*Arrow)
	for _, a := range arrows {
		byCell[from[a]] = append(byCell[from[a]], a)
	}

	rows := make([]string, grid.Height())
	for r := range grid.Height() {
		cells := make([]string, grid.Width())
		for c := range grid.Width() {
			parts := []string{}
			if u := grid.At(r, c); u != nil {
				parts = append(parts, cellText(u))
			}
			for _, a := range byCell[layout.Cell{Row: r, Col: c}] {
				parts = append(parts, a.String())
			}
			cells[c] = strings.Join(parts, " ")
		}
		rows[r] = strings.Join(cells, " & ")
	}

	var sb strings.Builder
	sb.WriteString("\\xymatrix{\n")
	sb.WriteString(strings.Join(rows, " \\\\\n"))
	sb.WriteString("\n}\n")
	return sb.String(), nil
}

// bend assigns loop corners and curvature so that arrows sharing a cell pair
// do not overlap.
func bend(arrows []*Arrow, from map[*Arrow]layout.Cell, grid *layout.Grid) {
	type pair struct{ a, b layout.Cell }
	loops := make(map[layout.Cell]int)
	total := make(map[pair]int)
	keyOf := func(a *Arrow) pair {
		src := from[a]
		dst, _ := grid.Position(a.Morphism.Codomain())
		if dst.Less(src) {
			return pair{dst, src}
		}
		return pair{src, dst}
	}
	for _, a := range arrows {
		if a.Direction != "" {
			total[keyOf(a)]++
		}
	}

	seen := make(map[pair]int)
	for _, a := range arrows {
		if a.Direction == "" {
			i := loops[from[a]]
			loops[from[a]]++
			a.Loop = loopCorners[i%len(loopCorners)]
			continue
		}
		k := keyOf(a)
		if total[k] < 2 {
			continue
		}
		// Sides alternate relative to the pair's canonical orientation;
		// ^ and _ are relative to each arrow's own direction, so arrows
		// running against it take the opposite letter.
		i := seen[k]
		seen[k]++
		left := i%2 == 0
		if from[a] != k.a {
			left = !left
		}
		a.Curving = "^"
		if !left {
			a.Curving = "_"
		}
		a.Curve = parallelStep * (i/2 + 1)
		a.LabelPos = a.Curving
	}
}

func direction(src, dst layout.Cell) string {
	var sb strings.Builder
	if dc := dst.Col - src.Col; dc > 0 {
		sb.WriteString(strings.Repeat("r", dc))
	} else {
		sb.WriteString(strings.Repeat("l", -dc))
	}
	if dr := dst.Row - src.Row; dr > 0 {
		sb.WriteString(strings.Repeat("d", dr))
	} else {
		sb.WriteString(strings.Repeat("u", -dr))
	}
	return sb.String()
}

func texLabel(m category.Morphism) string {
	switch m.Kind() {
	case category.KindIdentity:
		return `\mathrm{id}_{` + m.Domain().Name() + "}"
	case category.KindComposite:
		parts := m.Components()
		names := make([]string, len(parts))
		for i, c := range parts {
			names[len(parts)-1-i] = c.Name()
		}
		return strings.Join(names, ` \circ `)
	default:
		return m.Name()
	}
}

func cellText(u *layout.Unit) string {
	objs := u.Objects()
	if len(objs) == 1 {
		return objs[0].Name()
	}
	names := make([]string, len(objs))
	for i, o := range objs {
		names[i] = o.Name()
	}
	return `\begin{matrix}` + strings.Join(names, ` \\ `) + `\end{matrix}`
}
