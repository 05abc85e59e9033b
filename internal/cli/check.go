package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/catdiagram/pkg/category"
	"github.com/matzehuels/catdiagram/pkg/commute"
	dio "github.com/matzehuels/catdiagram/pkg/io"
	"github.com/matzehuels/catdiagram/pkg/pipeline"
)

// errUndetermined is returned by check --strict when no cover was found.
var errUndetermined = errors.New("commutativity undetermined")

// checkCommand creates the check command for the commutativity search.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		strict  bool
		axioms  axiomFlags
	)
	var flags pipeline.Options

	cmd := &cobra.Command{
		Use:   "check [diagram.toml]",
		Short: "Decide whether a diagram commutes",
		Long: `Decide whether a diagram commutes.

The check command searches for a cover of the document's diagram: a set of
embeddings of axioms (diagrams known to commute) whose images together
contain every arrow of the diagram. Axioms come from the document itself,
from --axioms files and from stored --library entries.

A found cover proves commutativity. When none is found the result is
undetermined, which is not a proof of non-commutativity. The search is
bounded by --max-expansions and --timeout.

Write the result with -o to verify it later with 'verify'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.runCheck(cmd.Context(), args[0], c.options(flags), axioms, noCache)
			if err != nil {
				return err
			}
			if output != "" {
				if err := dio.ExportFile(output, func(w io.Writer) error { return dio.WriteResult(w, res) }); err != nil {
					return fmt.Errorf("write output %s: %w", output, err)
				}
				printFile(output)
			}
			if strict && !res.Commutative() {
				return errUndetermined
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result and its cover as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when the result is undetermined")
	axioms.register(cmd)
	addCheckFlags(cmd, &flags)

	return cmd
}

// addCheckFlags binds the search options shared by check and browse.
func addCheckFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Int64Var(&opts.MaxExpansions, "max-expansions", 0, fmt.Sprintf("search node budget (default %d)", pipeline.DefaultMaxExpansions))
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, fmt.Sprintf("search timeout (default %s)", pipeline.DefaultTimeout))
	cmd.Flags().IntVar(&opts.MaxCandidates, "max-candidates", 0, "candidates tried per axiom arrow (0 = all)")
	cmd.Flags().IntVar(&opts.Paths, "paths", 0, "longest target path an axiom arrow may map to")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "axioms searched concurrently (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
}

// runCheck loads the diagram and its axioms, runs the search and prints the
// outcome.
func (c *CLI) runCheck(ctx context.Context, input string, opts pipeline.Options, f axiomFlags, noCache bool) (*commute.Result, error) {
	res, set, cached, err := c.search(ctx, input, opts, f, noCache)
	if err != nil {
		return nil, err
	}
	printResult(c.Out, res, set)
	printSearchStats(res.Stats, cached)
	return res, nil
}

// search runs the commutativity search behind a spinner.
func (c *CLI) search(ctx context.Context, input string, opts pipeline.Options, f axiomFlags, noCache bool) (*commute.Result, *axiomSet, bool, error) {
	doc, p, err := loadProblem(input)
	if err != nil {
		return nil, nil, false, err
	}
	set, err := c.collectAxioms(ctx, input, doc, f)
	if err != nil {
		return nil, nil, false, err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, nil, false, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Searching %d axioms...", len(set.diagrams)))
	spinner.Start()
	res, cached, err := runner.Check(ctx, p.Target, set.diagrams, opts)
	spinner.Stop()
	if err != nil {
		return nil, nil, false, fmt.Errorf("check: %w", err)
	}
	return res, set, cached, nil
}

// verifyCommand creates the verify command for re-checking a saved cover.
func (c *CLI) verifyCommand() *cobra.Command {
	var axioms axiomFlags

	cmd := &cobra.Command{
		Use:   "verify [diagram.toml] [result.json]",
		Short: "Re-check a cover written by 'check -o'",
		Long: `Re-check a cover written by 'check -o'.

The cover is checked independently of the search: every embedding must be
injective and structure preserving and together they must cover every arrow
of the diagram. Pass the same --axioms and --library flags as the check that
produced the cover, since embeddings refer to axioms by position.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVerify(cmd.Context(), args[0], args[1], axioms)
		},
	}
	axioms.register(cmd)
	return cmd
}

func (c *CLI) runVerify(ctx context.Context, input, resultPath string, f axiomFlags) error {
	doc, p, err := loadProblem(input)
	if err != nil {
		return err
	}
	set, err := c.collectAxioms(ctx, input, doc, f)
	if err != nil {
		return err
	}

	file, err := os.Open(resultPath)
	if err != nil {
		return fmt.Errorf("open result %s: %w", resultPath, err)
	}
	defer file.Close()
	res, err := dio.ReadResult(file)
	if err != nil {
		return fmt.Errorf("read result %s: %w", resultPath, err)
	}
	if res.Cover == nil {
		return fmt.Errorf("%s carries no cover (status %s)", resultPath, res.Status)
	}

	if err := commute.Verify(p.Target, set.diagrams, res.Cover); err != nil {
		printError("Cover rejected")
		return err
	}
	printSuccess("Cover verified: %d embeddings cover %d morphisms", res.Cover.Len(), len(p.Target.NonIdentity()))
	if id := res.Cover.ContentID(); id != res.Cover.ID {
		printWarning("cover ID %s does not match its content (%s)", res.Cover.ID, id)
	}
	return nil
}

// =============================================================================
// Result Display
// =============================================================================

// printResult writes a check outcome to w: the embeddings of a cover, or
// the morphisms no embedding reached.
func printResult(w io.Writer, res *commute.Result, set *axiomSet) {
	if res.Commutative() {
		fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+StyleSuccess.Render("Diagram commutes"))
		fmt.Fprintln(w, StyleDim.Render("  cover "+res.Cover.ID.String()))
		fmt.Fprintln(w, coverTable(res.Cover, set))
		return
	}

	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+
		StyleWarning.Render(fmt.Sprintf("Commutativity undetermined (%s)", res.Reason)))
	for _, m := range res.Uncovered {
		fmt.Fprintln(w, "  "+StyleDim.Render("uncovered")+" "+StyleValue.Render(m.String()))
	}
}

// coverTable renders one row per embedding: the axiom it comes from, its
// object map and the target morphisms it covers.
func coverTable(cover *commute.Cover, set *axiomSet) string {
	rows := make([][]string, 0, cover.Len())
	for i, e := range cover.Embeddings {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			set.label(e.Axiom),
			objectMap(e),
			morphismList(e.Image()),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Axiom", "Objects", "Covers").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

// objectMap formats an embedding's object map as "A→X, B→Y" in axiom
// object order.
func objectMap(e commute.Embedding) string {
	objs := make([]category.Object, 0, len(e.Objects))
	for o := range e.Objects {
		objs = append(objs, o)
	}
	category.SortObjects(objs)
	parts := make([]string, len(objs))
	for i, o := range objs {
		parts[i] = o.Name() + iconArrow + e.Objects[o].Name()
	}
	return strings.Join(parts, ", ")
}

func morphismList(ms []category.Morphism) string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Label()
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
