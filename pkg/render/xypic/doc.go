// Package xypic renders laid-out diagrams as Xy-pic markup.
//
// [Draw] walks the grid row by row and emits an \xymatrix whose cells hold
// the placed objects. Each morphism becomes an \ar command in the cell of
// its domain pointing at the cell of its codomain:
//
//	\xymatrix{
//	A \ar[r]^{f} & B \ar[d]^{g} \\
//	 & C
//	}
//
// Loops rotate through the four cell corners. Arrows between the same pair
// of cells are bent alternately above and below with growing curvature.
// Conclusions are dashed. Tags can restyle arrows through [WithFormatter];
// [Mono] and [Epi] are provided for the common cases.
package xypic
