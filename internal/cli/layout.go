package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	dio "github.com/matzehuels/catdiagram/pkg/io"
	"github.com/matzehuels/catdiagram/pkg/layout"
	"github.com/matzehuels/catdiagram/pkg/pipeline"
)

// layoutCommand creates the layout command for placing a diagram on a grid.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	var flags pipeline.Options

	cmd := &cobra.Command{
		Use:   "layout [diagram.toml]",
		Short: "Place the objects of a diagram on a grid",
		Long: `Place the objects of a diagram on a grid.

The layout command reads a diagram document (TOML or JSON), places every
object in a grid cell and writes the grid as JSON. The grid is also printed
as a table. The JSON file can be rendered with 'render --grid'.

Two modes are available: triangle (default) packs objects so that arrows
stay short, linear lays the diagram out as one row (or column with
--vertical) in source-to-target order.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], c.options(flags), output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &flags)

	return cmd
}

// addLayoutFlags binds the layout options shared by layout and render.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "", "layout mode: triangle (default), linear")
	cmd.Flags().BoolVar(&opts.Vertical, "vertical", false, "lay out top to bottom (linear mode)")
	cmd.Flags().BoolVar(&opts.Transpose, "transpose", false, "swap rows and columns of the result")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
}

// runLayout loads the diagram, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	doc, p, err := loadProblem(input)
	if err != nil {
		return err
	}
	withDocumentGroups(&opts, doc)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	grid, cacheHit, err := c.computeLayout(ctx, runner, p, opts)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}
	if err := dio.ExportFile(outputPath, func(w io.Writer) error { return dio.WriteGrid(w, grid) }); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printGrid(c.Out, grid)
	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(p.Target.Objects()), len(p.Target.NonIdentity()), cacheHit)
	printDetail("cost %d · %dx%d cells", grid.Cost(p.Target), grid.Height(), grid.Width())
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}

// computeLayout runs the layout stage behind a spinner.
func (c *CLI) computeLayout(ctx context.Context, runner *pipeline.Runner, p *dio.Problem, opts pipeline.Options) (*layout.Grid, bool, error) {
	mode := opts.Mode
	if mode == "" {
		mode = pipeline.DefaultMode
	}
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", mode))
	spinner.Start()

	grid, cacheHit, err := runner.Layout(ctx, p.Target, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, false, fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}
	return grid, cacheHit, nil
}

// withDocumentGroups applies the groups declared in the document when no
// groups were given on the command line or in the config.
func withDocumentGroups(opts *pipeline.Options, doc *dio.Document) {
	if len(opts.Groups) == 0 && doc.Diagram != nil {
		opts.Groups = doc.Diagram.Groups
	}
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .tex, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if _, ok := formatExtensions[ext]; ok {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}
