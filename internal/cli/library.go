package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	dio "github.com/matzehuels/catdiagram/pkg/io"
	"github.com/matzehuels/catdiagram/pkg/library"
)

// libraryCommand creates the library management command.
func (c *CLI) libraryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage stored axiom libraries",
		Long: `Manage stored axiom libraries.

A library entry is the axiom list of a diagram document stored under a name.
Pass --library NAME to check, verify or browse to include its axioms. Entries
are stored as files, or in MongoDB when [library] mongo_uri is configured.`,
	}

	cmd.AddCommand(c.libraryPutCommand())
	cmd.AddCommand(c.libraryListCommand())
	cmd.AddCommand(c.libraryShowCommand())
	cmd.AddCommand(c.libraryDeleteCommand())

	return cmd
}

// withLibrary opens the configured library for the duration of fn.
func (c *CLI) withLibrary(ctx context.Context, fn func(library.Library) error) error {
	lib, err := c.openLibrary(ctx)
	if err != nil {
		return err
	}
	defer lib.Close(ctx)
	return fn(lib)
}

// libraryPutCommand creates the "library put" subcommand.
func (c *CLI) libraryPutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put [axioms.toml] [name]",
		Short: "Store the axioms of a document under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, name := args[0], args[1]
			if err := library.ValidateName(name); err != nil {
				return err
			}
			doc, err := dio.ReadFile(path)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			if len(doc.Axioms) == 0 {
				return fmt.Errorf("%s declares no axioms", path)
			}
			if _, err := doc.BuildAxioms(); err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}

			return c.withLibrary(cmd.Context(), func(lib library.Library) error {
				if err := lib.Put(cmd.Context(), library.NewEntry(name, doc)); err != nil {
					return fmt.Errorf("store %s: %w", name, err)
				}
				printSuccess("Stored %d axioms as %s", len(doc.Axioms), StyleHighlight.Render(name))
				return nil
			})
		},
	}
}

// libraryListCommand creates the "library list" subcommand.
func (c *CLI) libraryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored axiom libraries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLibrary(cmd.Context(), func(lib library.Library) error {
				entries, err := lib.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					printInfo("Library is empty")
					return nil
				}
				fmt.Fprintln(c.Out, libraryTable(entries))
				return nil
			})
		},
	}
}

func libraryTable(entries []library.Summary) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Name, e.Category, fmt.Sprint(e.Axioms), e.UpdatedAt.Format("2006-01-02 15:04")}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Category", "Axioms", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if col == 0 {
				return lipgloss.NewStyle().Padding(0, 1).Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

// libraryShowCommand creates the "library show" subcommand.
func (c *CLI) libraryShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a stored library as a diagram document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLibrary(cmd.Context(), func(lib library.Library) error {
				e, err := lib.Get(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("library %s: %w", args[0], err)
				}
				return dio.Encode(c.Out, &dio.Document{Category: e.Category, Axioms: e.Axioms}, dio.Format(format))
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(dio.FormatTOML), "output format: toml, json")
	return cmd
}

// libraryDeleteCommand creates the "library delete" subcommand.
func (c *CLI) libraryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Remove a stored library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLibrary(cmd.Context(), func(lib library.Library) error {
				if err := lib.Delete(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("library %s: %w", args[0], err)
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}
