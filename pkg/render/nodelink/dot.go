package nodelink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/catdiagram/pkg/category"
	"github.com/matzehuels/catdiagram/pkg/layout"
	"github.com/matzehuels/catdiagram/pkg/render"
)

// DefaultSpacing is the distance between grid cells in inches.
const DefaultSpacing = 1.5

// ErrUnplaced is returned when a drawn morphism has an endpoint that the grid
// does not place.
var ErrUnplaced = errors.New("object not placed on grid")

// Options configures node-link diagram rendering.
type Options struct {
	// Spacing is the distance between neighbouring cells in inches.
	// Zero means [DefaultSpacing].
	Spacing float64

	// Identities draws identity morphisms as self-loops.
	Identities bool

	// Composites draws every composite. By default only composites that
	// are conclusions get an edge.
	Composites bool
}

// ToDOT converts a laid-out diagram to Graphviz DOT format.
// Every unit of the grid becomes a node pinned to its cell with pos="x,y!",
// so the neato engine used by [RenderSVG] keeps the layout as computed.
//
// Conclusions are drawn dashed. Tags are attached as edge tooltips.
func ToDOT(d *category.Diagram, grid *layout.Grid, opts Options) (string, error) {
	spacing := opts.Spacing
	if spacing <= 0 {
		spacing = DefaultSpacing
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=plaintext, fontsize=20, fontname=\"Times-Italic\"];\n")
	buf.WriteString("  edge [fontsize=14, arrowsize=0.7];\n")
	buf.WriteString("\n")

	for _, c := range grid.Cells() {
		u := grid.At(c.Row, c.Col)
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%s,%s!\"];\n",
			u.Label(), fmtLabel(u), fmtCoord(float64(c.Col)*spacing), fmtCoord(-float64(c.Row)*spacing))
	}

	buf.WriteString("\n")
	for _, m := range d.Morphisms() {
		if !drawn(d, m, opts) {
			continue
		}
		src, ok := unitOf(grid, m.Domain())
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnplaced, m.Domain())
		}
		dst, ok := unitOf(grid, m.Codomain())
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnplaced, m.Codomain())
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", src.Label(), dst.Label(), strings.Join(fmtAttrs(d, m), ", "))
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func drawn(d *category.Diagram, m category.Morphism, opts Options) bool {
	switch {
	case m.IsIdentity():
		return opts.Identities
	case m.IsComposite():
		return opts.Composites || d.IsConclusion(m)
	default:
		return true
	}
}

func unitOf(grid *layout.Grid, o category.Object) (*layout.Unit, bool) {
	c, ok := grid.Position(o)
	if !ok {
		return nil, false
	}
	return grid.At(c.Row, c.Col), true
}

func fmtLabel(u *layout.Unit) string {
	objs := u.Objects()
	names := make([]string, len(objs))
	for i, o := range objs {
		names[i] = o.Name()
	}
	return strings.Join(names, "\n")
}

func fmtAttrs(d *category.Diagram, m category.Morphism) []string {
	attrs := []string{fmt.Sprintf("label=%q", m.Label())}
	if d.IsConclusion(m) {
		attrs = append(attrs, "style=dashed")
	}
	if tags := d.Tags(m); len(tags) > 0 {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", tags.String()))
	}
	return attrs
}

func fmtCoord(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders a DOT graph to SVG using the Graphviz neato engine, which
// honours the pinned node positions written by [ToDOT].
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
