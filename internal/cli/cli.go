// Package cli implements the catdiagram command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/catdiagram/internal/config"
	"github.com/matzehuels/catdiagram/pkg/buildinfo"
	"github.com/matzehuels/catdiagram/pkg/cache"
	"github.com/matzehuels/catdiagram/pkg/category"
	dio "github.com/matzehuels/catdiagram/pkg/io"
	"github.com/matzehuels/catdiagram/pkg/library"
	"github.com/matzehuels/catdiagram/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "catdiagram"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output. Progress and logs go to the logger.
	Out io.Writer

	configPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "catdiagram lays out and checks commutative diagrams",
		Long: `catdiagram places the objects of a category-theory diagram on a grid for
Xy-pic style rendering, and decides whether a diagram commutes by covering it
with embeddings of diagrams already known to commute.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/catdiagram/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.libraryCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	if c.configPath != "" {
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	return nil
}

// settings returns the loaded configuration, or the defaults when no
// command has loaded one yet.
func (c *CLI) settings() *config.Config {
	if c.config == nil {
		return config.Default()
	}
	return c.config
}

// options merges command-line options over the configured defaults.
func (c *CLI) options(flags pipeline.Options) pipeline.Options {
	opts := pipeline.Merge(c.settings().Options(), flags)
	opts.Logger = c.Logger
	return opts
}

// =============================================================================
// Runner and Backends
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := c.settings().CacheConfig()
	if noCache {
		cfg.Backend = cache.BackendNone
	}
	store, err := cache.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(store, nil, c.Logger)
	runner.TTL = c.settings().Cache.TTL
	return runner, nil
}

// openLibrary opens the configured axiom library.
func (c *CLI) openLibrary(ctx context.Context) (library.Library, error) {
	lib, err := library.Open(ctx, c.settings().LibraryConfig())
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	return lib, nil
}

// =============================================================================
// Inputs
// =============================================================================

// loadProblem reads and builds a diagram document.
func loadProblem(path string) (*dio.Document, *dio.Problem, error) {
	doc, err := dio.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	p, err := doc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	return doc, p, nil
}

// axiomSet is the list of axioms handed to a check, with a display label
// per axiom. Embedding indexes refer to positions in this list.
type axiomSet struct {
	diagrams []*category.Diagram
	labels   []string
}

func (s *axiomSet) add(source string, specs []dio.DiagramSpec) error {
	for i, spec := range specs {
		d, err := spec.Build()
		if err != nil {
			return fmt.Errorf("%s: axiom %s: %w", source, axiomName(spec, i), err)
		}
		s.diagrams = append(s.diagrams, d)
		s.labels = append(s.labels, source+":"+axiomName(spec, i))
	}
	return nil
}

// label names the axiom at index i.
func (s *axiomSet) label(i int) string {
	if i < 0 || i >= len(s.labels) {
		return fmt.Sprintf("#%d", i)
	}
	return s.labels[i]
}

func axiomName(spec dio.DiagramSpec, i int) string {
	if spec.Name != "" {
		return spec.Name
	}
	return fmt.Sprintf("#%d", i)
}

// axiomFlags selects the axioms of a check beyond the document's own.
type axiomFlags struct {
	files     []string
	libraries []string
}

func (f *axiomFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.files, "axioms", nil, "additional axiom files (repeatable)")
	cmd.Flags().StringSliceVar(&f.libraries, "library", nil, "stored axiom libraries to include (repeatable)")
}

// collectAxioms gathers the document's axioms, then the axiom files, then the
// library entries, in that order.
func (c *CLI) collectAxioms(ctx context.Context, input string, doc *dio.Document, f axiomFlags) (*axiomSet, error) {
	set := &axiomSet{}
	if err := set.add(sourceName(input), doc.Axioms); err != nil {
		return nil, err
	}
	for _, path := range f.files {
		extra, err := dio.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load axioms %s: %w", path, err)
		}
		if err := set.add(sourceName(path), extra.Axioms); err != nil {
			return nil, err
		}
	}
	if len(f.libraries) == 0 {
		return set, nil
	}

	lib, err := c.openLibrary(ctx)
	if err != nil {
		return nil, err
	}
	defer lib.Close(ctx)
	for _, name := range f.libraries {
		e, err := lib.Get(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", name, err)
		}
		if err := set.add(e.Name, e.Axioms); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// sourceName is the label prefix of axioms read from path.
func sourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
