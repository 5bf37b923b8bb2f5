package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcraft/pkg/mindmap"
	"github.com/matzehuels/mindcraft/pkg/store"
)

type showOpts struct {
	store string
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var opts showOpts

	cmd := &cobra.Command{
		Use:               "show <map>",
		Short:             "Print a map's nodes and connections",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMapNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ref, err := c.openMap(ctx, args[0], opts.store)
			if err != nil {
				return err
			}
			defer ref.store.Close()

			cfg, err := c.config()
			if err != nil {
				return err
			}
			m := mindmap.New()
			res, err := store.LoadMap(ctx, ref.store, ref.name, m, cfg.MapOptions())
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(ref.name) + " " + StyleDim.Render(ref.target))
			printStats(m.NodeCount(), m.EdgeCount(), len(res.Dropped))
			if m.NodeCount() > 0 {
				fmt.Println(nodeTable(m))
			}
			if m.EdgeCount() > 0 {
				fmt.Println(edgeTable(m))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.store, "store", "", "store URI (default from config)")
	return cmd
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableNumberStyle = tableCellStyle.Foreground(colorCyan).Align(lipgloss.Right)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...)
}

// nodeTable lists nodes in id order.
func nodeTable(m *mindmap.Map) *table.Table {
	var rows [][]string
	for _, n := range m.Nodes() {
		rows = append(rows, []string{
			strconv.Itoa(int(n.ID)),
			n.Label,
			formatCoord(n.Position.X),
			formatCoord(n.Position.Y),
			fmt.Sprintf("%d", len(m.NeighborsOf(n.ID))),
		})
	}
	return newTable("ID", "Label", "X", "Y", "Links").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return tableHeaderStyle
			case col == 1:
				return tableCellStyle
			default:
				return tableNumberStyle
			}
		})
}

// edgeTable lists connections in creation order with both labels.
func edgeTable(m *mindmap.Map) *table.Table {
	var rows [][]string
	for _, e := range m.Edges() {
		a, _ := m.Node(e.A)
		b, _ := m.Node(e.B)
		rows = append(rows, []string{
			strconv.Itoa(int(e.A)),
			a.Label,
			iconLink,
			strconv.Itoa(int(e.B)),
			b.Label,
		})
	}
	return newTable("From", "", "", "To", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return tableHeaderStyle
			case col == 0 || col == 3:
				return tableNumberStyle
			case col == 2:
				return tableCellStyle.Foreground(colorDim)
			default:
				return tableCellStyle
			}
		})
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
