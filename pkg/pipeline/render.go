package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/catdiagram/pkg/category"
	dio "github.com/matzehuels/catdiagram/pkg/io"
	"github.com/matzehuels/catdiagram/pkg/layout"
	"github.com/matzehuels/catdiagram/pkg/render/nodelink"
	"github.com/matzehuels/catdiagram/pkg/render/xypic"
)

// Arrow styles applied to tagged arrows in Xy-pic output.
var xypicFormatters = map[category.Tag]xypic.Formatter{
	"mono": xypic.Mono,
	"epi":  xypic.Epi,
}

// RenderFormats generates output artifacts in the requested formats without
// touching the cache. The DOT source is generated once and shared by the
// dot, svg, pdf and png formats.
func RenderFormats(ctx context.Context, d *category.Diagram, grid *layout.Grid, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	dotSource := func() (string, error) {
		if dot != "" {
			return dot, nil
		}
		var err error
		dot, err = nodelink.ToDOT(d, grid, nodelink.Options{
			Spacing:    opts.Spacing,
			Identities: opts.Identities,
			Composites: opts.Composites,
		})
		return dot, err
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatXypic:
			var s string
			s, err = xypic.Draw(d, grid, xypicOptions(opts)...)
			data = []byte(s)
		case FormatDOT:
			var s string
			s, err = dotSource()
			data = []byte(s)
		case FormatSVG, FormatPDF, FormatPNG:
			var s string
			if s, err = dotSource(); err == nil {
				data, err = renderGraphviz(ctx, s, format, opts.Scale)
			}
		case FormatJSON:
			var buf bytes.Buffer
			err = dio.WriteGrid(&buf, grid)
			data = buf.Bytes()
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderGraphviz(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	switch format {
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	default:
		return nodelink.RenderPNG(ctx, dot, scale)
	}
}

func xypicOptions(opts Options) []xypic.Option {
	var out []xypic.Option
	if opts.Identities {
		out = append(out, xypic.WithIdentities())
	}
	if opts.Composites {
		out = append(out, xypic.WithComposites())
	}
	for tag, f := range xypicFormatters {
		out = append(out, xypic.WithFormatter(tag, f))
	}
	return out
}
