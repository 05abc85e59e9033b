// Package layout places the objects of a diagram on an integer grid.
//
// # Overview
//
// [Layout] assigns every object of a [category.Diagram] to a cell of a
// [Grid] so that arrows stay short. Objects can be bundled into groups with
// [WithGroups]; a group is an atomic placement unit that occupies exactly one
// cell, and every ungrouped object is a singleton unit.
//
// # Cost
//
// The length of an arrow is the Manhattan distance between the cells of its
// endpoint units. The cost of a grid is the sum of these lengths over every
// non-identity morphism whose endpoints lie in distinct units; parallel
// morphisms count once each and self-loops count zero. [Grid.Cost] reports
// it.
//
// # Triangle Mode
//
// [Triangle] (the default) grows each connected component greedily. The unit
// with the most neighbours is placed first; the next unit is always the one
// connected to the most placed units, and it goes to the free cell around
// its placed neighbours with the lowest incremental cost. Ties prefer a
// squarer bounding box, then arrows pointing right and down, then the
// smaller (row, col). Components are laid out independently and concatenated
// left to right.
//
// The heuristic is local. It does not guarantee a minimum-cost grid.
//
// # Linear Mode
//
// [Linear] puts all units in a single row (or column with [Vertical]) in
// topological order, taking source-like units first and breaking ties by
// label. Cycles are broken by releasing the unit with the fewest unresolved
// incoming arrows.
//
// # Determinism
//
// Every choice has a total tie-break on unit labels or cell coordinates, so
// the same diagram, groups and options always produce the same grid.
package layout
