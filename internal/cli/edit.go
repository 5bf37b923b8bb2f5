package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mindmap"
	"github.com/matzehuels/mindcraft/pkg/store"
)

type editOpts struct {
	store string
}

// editCommand creates the edit command.
func (c *CLI) editCommand() *cobra.Command {
	var opts editOpts

	cmd := &cobra.Command{
		Use:   "edit [map]",
		Short: "Open a mind map in the terminal editor",
		Long: `Open a mind map in the terminal editor.

The map is a file path (anything ending in .json or containing a path
separator) or a name in the store. Without an argument a new map with a
random name is created in the store.

Mouse:
  double-click   add a node on empty canvas
  drag           move a node

Keys:
  c  toggle connect mode    d  toggle delete mode
  s  save                   r  reload from disk
  x  clear the canvas       q  quit`,
		Example: `  mindcraft edit
  mindcraft edit ideas
  mindcraft edit ./maps/roadmap.json
  mindcraft edit ideas --store redis://localhost:6379/0`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeMapNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return c.runEdit(cmd, name, opts)
		},
	}

	cmd.Flags().StringVar(&opts.store, "store", "", "store URI (default from config)")
	return cmd
}

func (c *CLI) runEdit(cmd *cobra.Command, name string, opts editOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if name == "" {
		name = uuid.NewString()
	}
	ref, err := c.openMap(ctx, name, opts.store)
	if err != nil {
		return err
	}
	defer ref.store.Close()

	cfg, err := c.config()
	if err != nil {
		return err
	}

	m := mindmap.New()
	status := "Loaded map from " + ref.target
	res, err := store.LoadMap(ctx, ref.store, ref.name, m, cfg.MapOptions())
	switch {
	case errors.Is(err, errors.ErrCodeNotFound):
		status = "New map " + ref.target
		logger.Debug("starting new map", "name", ref.name)
	case err != nil:
		return err
	case len(res.Dropped) > 0:
		logger.Warn("dropped dangling connections", "count", len(res.Dropped))
	}

	model := NewEditorModel(ctx, m, EditorOptions{
		Name:        ref.name,
		Target:      ref.target,
		Store:       ref.store,
		Map:         cfg.MapOptions(),
		CellWidth:   cfg.Editor.CellWidth,
		CellHeight:  cfg.Editor.CellHeight,
		Tolerance:   cfg.Canvas.Tolerance,
		DoubleClick: cfg.DoubleClick(),
	})
	model.setStatus(status)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "run editor")
	}

	if ed, ok := final.(EditorModel); ok && ed.Dirty() {
		printWarning("Unsaved changes to %s were discarded", ref.target)
		return nil
	}
	printSuccess("Closed %s", ref.target)
	return nil
}
