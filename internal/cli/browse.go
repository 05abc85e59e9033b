package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/catdiagram/pkg/commute"
	"github.com/matzehuels/catdiagram/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command: a check followed by an
// interactive view of the cover.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		noCache bool
		axioms  axiomFlags
	)
	var flags pipeline.Options

	cmd := &cobra.Command{
		Use:   "browse [diagram.toml]",
		Short: "Check a diagram and browse the embeddings of its cover",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), args[0], c.options(flags), axioms, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	axioms.register(cmd)
	addCheckFlags(cmd, &flags)

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, input string, opts pipeline.Options, f axiomFlags, noCache bool) error {
	res, set, _, err := c.search(ctx, input, opts, f, noCache)
	if err != nil {
		return err
	}
	if !res.Commutative() {
		printResult(c.Out, res, set)
		return nil
	}

	p := tea.NewProgram(NewCoverModel(res, set.labels), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// =============================================================================
// CoverModel - Interactive cover browser
// =============================================================================

// CoverModel is the bubbletea model for browsing the embeddings of a cover.
// The list shows one row per embedding; the panel below it shows the
// selected embedding's object and morphism maps.
type CoverModel struct {
	Result *commute.Result
	Labels []string
	Cursor int
	Height int
	Offset int
}

// NewCoverModel creates a browser for res. labels name the axioms by index.
func NewCoverModel(res *commute.Result, labels []string) CoverModel {
	return CoverModel{
		Result: res,
		Labels: labels,
		Height: 10,
	}
}

func (m CoverModel) embeddings() []commute.Embedding {
	if m.Result == nil || m.Result.Cover == nil {
		return nil
	}
	return m.Result.Cover.Embeddings
}

func (m CoverModel) label(i int) string {
	set := axiomSet{labels: m.Labels}
	return set.label(i)
}

func (m CoverModel) Init() tea.Cmd {
	return nil
}

func (m CoverModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.embeddings())
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < n-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if n > 0 {
				m.Cursor = n - 1
				if m.Cursor >= m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		// The detail panel takes roughly half the screen.
		m.Height = msg.Height/2 - 4
		if m.Height < 3 {
			m.Height = 3
		}
	}
	return m, nil
}

func (m CoverModel) View() string {
	var b strings.Builder
	embs := m.embeddings()

	b.WriteString(StyleTitle.Render("Cover"))
	if m.Result != nil && m.Result.Cover != nil {
		b.WriteString(" " + listDimStyle.Render(m.Result.Cover.ID.String()))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(embs) == 0 {
		b.WriteString(listDimStyle.Render("  (empty cover)"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(embs) {
		end = len(embs)
	}
	for i := m.Offset; i < end; i++ {
		e := embs[i]
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		line := fmt.Sprintf("%s%-3d %-28s %s", cursor, i+1, m.label(e.Axiom),
			listDimStyle.Render(fmt.Sprintf("%d morphisms", len(e.Image()))))
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(embs))))
	b.WriteString("\n\n")

	b.WriteString(embeddingDetail(embs[m.Cursor]))
	return b.String()
}

// embeddingDetail renders the object map and the morphism map of e.
func embeddingDetail(e commute.Embedding) string {
	rows := [][]string{{"objects", objectMap(e)}}
	for _, mp := range e.Morphisms {
		to := mp.To.Label()
		if mp.Derived {
			to += " " + listDimStyle.Render("(derived)")
		}
		rows = append(rows, []string{mp.From.Label(), to})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Axiom", "Target").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if col == 0 {
				return lipgloss.NewStyle().Padding(0, 1).Foreground(colorGray)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}
