package layout

import (
	"slices"
	"strings"

	"github.com/matzehuels/catdiagram/pkg/category"
)

// arc is one morphism seen from one of its endpoint units.
type arc struct {
	other int
	out   bool // the unit is the source of the morphism
}

// unitGraph is the diagram collapsed onto placement units. Units are sorted
// by label, so comparing indices compares labels.
type unitGraph struct {
	units []*Unit
	arcs  [][]arc // one entry per morphism between distinct units
	nbrs  [][]int // distinct neighbouring units, ascending
}

// buildUnits validates groups and collapses d onto units.
func buildUnits(d *category.Diagram, groups [][]category.Object) (*unitGraph, error) {
	owner := make(map[category.Object]int)
	var units []*Unit
	for i, grp := range groups {
		if len(grp) == 0 {
			return nil, &LayoutError{Err: ErrEmptyGroup, Group: i}
		}
		var unknown, overlap []category.Object
		for _, o := range grp {
			if !d.HasObject(o) {
				unknown = append(unknown, o)
				continue
			}
			if _, taken := owner[o]; taken {
				overlap = append(overlap, o)
			}
		}
		if len(unknown) > 0 {
			return nil, &LayoutError{Err: ErrUnknownObject, Group: i, Objects: unknown}
		}
		if len(overlap) > 0 {
			return nil, &LayoutError{Err: ErrOverlappingGroups, Group: i, Objects: overlap}
		}
		u := newUnit(slices.Compact(sortedCopy(grp)))
		for _, o := range u.objects {
			owner[o] = len(units)
		}
		units = append(units, u)
	}
	for _, o := range d.Objects() {
		if _, ok := owner[o]; !ok {
			owner[o] = len(units)
			units = append(units, newUnit([]category.Object{o}))
		}
	}

	order := make([]int, len(units))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		return strings.Compare(units[a].Label(), units[b].Label())
	})
	rank := make([]int, len(units))
	sorted := make([]*Unit, len(units))
	for r, i := range order {
		rank[i] = r
		sorted[r] = units[i]
	}

	ug := &unitGraph{
		units: sorted,
		arcs:  make([][]arc, len(sorted)),
		nbrs:  make([][]int, len(sorted)),
	}
	for _, m := range d.NonIdentity() {
		a, b := rank[owner[m.Domain()]], rank[owner[m.Codomain()]]
		if a == b {
			continue
		}
		ug.arcs[a] = append(ug.arcs[a], arc{other: b, out: true})
		ug.arcs[b] = append(ug.arcs[b], arc{other: a, out: false})
	}
	for u, as := range ug.arcs {
		for _, a := range as {
			ug.nbrs[u] = append(ug.nbrs[u], a.other)
		}
		slices.Sort(ug.nbrs[u])
		ug.nbrs[u] = slices.Compact(ug.nbrs[u])
	}
	return ug, nil
}

func sortedCopy(objs []category.Object) []category.Object {
	out := slices.Clone(objs)
	category.SortObjects(out)
	return out
}

// components returns the connected components, each sorted ascending and
// ordered by their smallest unit.
func (ug *unitGraph) components() [][]int {
	seen := make([]bool, len(ug.units))
	var comps [][]int
	for start := range ug.units {
		if seen[start] {
			continue
		}
		comp := []int{start}
		seen[start] = true
		for i := 0; i < len(comp); i++ {
			for _, n := range ug.nbrs[comp[i]] {
				if !seen[n] {
					seen[n] = true
					comp = append(comp, n)
				}
			}
		}
		slices.Sort(comp)
		comps = append(comps, comp)
	}
	return comps
}
