package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/catdiagram/pkg/errors"
	dio "github.com/matzehuels/catdiagram/pkg/io"
	"github.com/matzehuels/catdiagram/pkg/layout"
	"github.com/matzehuels/catdiagram/pkg/pipeline"
)

// extensions maps each output format to its file extension.
var extensions = map[string]string{
	pipeline.FormatXypic: "tex",
	pipeline.FormatDOT:   "dot",
	pipeline.FormatSVG:   "svg",
	pipeline.FormatPDF:   "pdf",
	pipeline.FormatPNG:   "png",
	pipeline.FormatJSON:  "json",
}

// formatExtensions is the inverse of extensions.
var formatExtensions = map[string]string{
	"tex":  pipeline.FormatXypic,
	"dot":  pipeline.FormatDOT,
	"svg":  pipeline.FormatSVG,
	"pdf":  pipeline.FormatPDF,
	"png":  pipeline.FormatPNG,
	"json": pipeline.FormatJSON,
}

// renderCommand creates the render command for producing diagram output.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output   string
		formats  string
		gridFile string
		noCache  bool
	)
	var flags pipeline.Options

	cmd := &cobra.Command{
		Use:   "render [diagram.toml]",
		Short: "Render a diagram as Xy-pic, DOT, SVG, PDF, PNG or JSON",
		Long: `Render a diagram as Xy-pic, DOT, SVG, PDF, PNG or JSON.

The diagram is laid out first (or the grid is read from --grid, as written by
'layout') and then rendered in every requested format. With a single format
and -o -, the output is written to stdout.

Formats:
  xypic  LaTeX \xymatrix source (default)
  dot    Graphviz source with pinned positions
  svg    Graphviz SVG
  pdf    Graphviz PDF
  png    Graphviz PNG
  json   the grid as JSON`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseFormats(formats)
			if err != nil {
				return err
			}
			flags.Formats = parsed
			return c.runRender(cmd.Context(), args[0], c.options(flags), renderTarget{
				output:   output,
				gridFile: gridFile,
				noCache:  noCache,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output format(s): xypic (default), dot, svg, pdf, png, json (comma-separated)")
	cmd.Flags().StringVar(&gridFile, "grid", "", "use a grid written by 'layout' instead of computing one")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &flags)
	cmd.Flags().Float64Var(&flags.Spacing, "spacing", 0, "distance between grid cells in Graphviz output")
	cmd.Flags().Float64Var(&flags.Scale, "scale", 0, "PNG scale factor")
	cmd.Flags().BoolVar(&flags.Identities, "identities", false, "draw identity arrows")
	cmd.Flags().BoolVar(&flags.Composites, "composites", false, "draw composite arrows")

	return cmd
}

// parseFormats parses a comma-separated format string into a slice.
// An empty string selects the configured or default formats.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	formats := errs.ParseFormats(s)
	if err := errs.ValidateFormats(formats); err != nil {
		return nil, err
	}
	return formats, nil
}

type renderTarget struct {
	output   string
	gridFile string
	noCache  bool
}

// runRender lays out (or loads) the grid and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, t renderTarget) error {
	doc, p, err := loadProblem(input)
	if err != nil {
		return err
	}
	withDocumentGroups(&opts, doc)

	runner, err := c.newRunner(ctx, t.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var grid *layout.Grid
	layoutHit := true
	if t.gridFile != "" {
		grid, err = readGridFile(t.gridFile)
		if err != nil {
			return err
		}
	} else {
		grid, layoutHit, err = c.computeLayout(ctx, runner, p, opts)
		if err != nil {
			return err
		}
	}

	prog := newProgress(c.Logger)
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, p.Target, grid, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(artifacts)))

	if t.output == "-" {
		if len(artifacts) != 1 {
			return fmt.Errorf("-o - needs exactly one format, got %d", len(artifacts))
		}
		for _, data := range artifacts {
			_, err := c.Out.Write(data)
			return err
		}
	}

	paths, err := writeArtifacts(artifacts, outputPaths(t.output, input, sortedFormats(artifacts)))
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, path := range paths {
		printFile(path)
	}
	printStats(len(p.Target.Objects()), len(p.Target.NonIdentity()), layoutHit && renderHit)
	return nil
}

func readGridFile(path string) (*layout.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid %s: %w", path, err)
	}
	defer f.Close()
	g, err := dio.ReadGrid(f)
	if err != nil {
		return nil, fmt.Errorf("read grid %s: %w", path, err)
	}
	return g, nil
}

func sortedFormats(artifacts map[string][]byte) []string {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// outputPaths names one file per format. A single format honours an
// explicit output path as given; otherwise files share a base path and
// differ in extension.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + extensions[f]
		if paths[f] == input {
			paths[f] = base + ".grid." + extensions[f]
		}
	}
	return paths
}

// writeArtifacts writes each artifact to its path and returns the paths in
// format order.
func writeArtifacts(artifacts map[string][]byte, paths map[string]string) ([]string, error) {
	var written []string
	for _, format := range sortedFormats(artifacts) {
		path := paths[format]
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

