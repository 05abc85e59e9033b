// Package io reads and writes diagram documents and engine results.
//
// # Overview
//
// A document holds the diagram to lay out or check plus the axioms it is
// checked against. Documents are written in TOML or JSON; the format is
// chosen from the file extension by [ReadFile] or given to [Decode].
//
// # TOML Format
//
//	category = "sets"
//
//	[diagram]
//	name = "square"
//	groups = [["A", "C"]]
//
//	[[diagram.premise]]
//	name = "f"
//	from = "A"
//	to = "B"
//	tags = ["mono"]
//
//	[[diagram.premise]]
//	name = "g"
//	from = "B"
//	to = "C"
//
//	[[diagram.conclusion]]
//	compose = ["f", "g"]
//
//	[[axiom]]
//	name = "triangle"
//	# same shape as [diagram]
//
// The JSON form uses the same keys except that the arrays are named
// "premises", "conclusions" and "axioms".
//
// # Arrows
//
// A named arrow needs name, from and to. A composite arrow lists earlier
// arrow names under compose in application order, so ["f", "g"] is g∘f.
// Premises are closed under composition unless expand = false. Objects
// that no arrow touches are listed under objects.
//
// # Results
//
// [WriteGrid] and [WriteResult] export layout grids and check results as
// JSON. [ReadResult] reads a result back, typically to verify its cover
// again with [commute.Verify].
//
// [commute.Verify]: github.com/matzehuels/catdiagram/pkg/commute
package io
