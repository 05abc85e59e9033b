// Package render turns laid-out diagrams into markup and images.
//
// # Overview
//
// Renderers consume a [category.Diagram] together with the [layout.Grid]
// computed for it and draw one arrow per morphism between the cells of its
// endpoints. They never move objects; all placement decisions belong to the
// layout engine.
//
//   - [xypic]: Xy-pic \xymatrix markup for LaTeX documents
//   - [nodelink]: Graphviz DOT with positions pinned to the grid, rendered
//     to SVG in-process
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	dot, err := nodelink.ToDOT(d, grid, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [category.Diagram]: github.com/matzehuels/catdiagram/pkg/category
// [layout.Grid]: github.com/matzehuels/catdiagram/pkg/layout
// [xypic]: github.com/matzehuels/catdiagram/pkg/render/xypic
// [nodelink]: github.com/matzehuels/catdiagram/pkg/render/nodelink
package render
