// Package nodelink renders laid-out diagrams as Graphviz node-link drawings.
//
// # Overview
//
// Each unit of a [layout.Grid] becomes a plain-text node pinned to its cell,
// and each drawn morphism becomes a labelled edge. Graphviz only routes the
// edges; it never moves the nodes.
//
// # Usage
//
// Convert a diagram and its grid to DOT format, then render to SVG:
//
//	dot, err := nodelink.ToDOT(d, grid, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # DOT Format
//
// The generated DOT sets layout=neato and gives every node a pos="x,y!"
// attribute, x growing with the column and y falling with the row, both
// scaled by [Options].Spacing inches. It can be rendered with [RenderSVG] or
// with an external `neato -n` run.
//
// Conclusions are dashed and tags are exposed as edge tooltips in the SVG.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
//
// [layout.Grid]: github.com/matzehuels/catdiagram/pkg/layout
package nodelink
