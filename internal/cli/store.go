package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/store"
)

// storeCommand creates the store management command.
func (c *CLI) storeCommand() *cobra.Command {
	var uri string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "List, copy and delete stored maps",
		Long: `List, copy and delete stored maps.

Stores are addressed by URI:
  /path/to/maps, file:///path/to/maps
  mem://
  redis://[:password@]host:port/db
  mongodb://host:port/database
  badger:///path/to/db`,
	}
	cmd.PersistentFlags().StringVar(&uri, "store", "", "store URI (default from config)")

	cmd.AddCommand(c.storeListCommand(&uri))
	cmd.AddCommand(c.storeCopyCommand(&uri))
	cmd.AddCommand(c.storeDeleteCommand(&uri))
	cmd.AddCommand(c.storeURICommand(&uri))

	return cmd
}

// storeListCommand creates the "store list" subcommand.
func (c *CLI) storeListCommand(uri *string) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List map names",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, resolved, err := c.openStore(ctx, *uri)
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No maps in %s", resolved)
				return nil
			}
			for _, name := range names {
				fmt.Println(StyleHighlight.Render(name))
			}
			printDetail("%d map(s) in %s", len(names), resolved)
			return nil
		},
	}
}

// storeCopyCommand creates the "store copy" subcommand.
func (c *CLI) storeCopyCommand(uri *string) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "copy <map>... --to <uri>",
		Short: "Copy maps to another store",
		Example: `  mindcraft store copy ideas roadmap --to redis://localhost:6379/0
  mindcraft store copy ideas --store mongodb://localhost/mindcraft --to ./backup`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, srcURI, err := c.openStore(ctx, *uri)
			if err != nil {
				return err
			}
			defer src.Close()
			dst, dstURI, err := c.openStore(ctx, to)
			if err != nil {
				return err
			}
			defer dst.Close()

			prog := newProgress(loggerFromContext(ctx))
			for _, name := range args {
				if err := store.Copy(ctx, src, dst, name); err != nil {
					return err
				}
				printDetail("%s → %s", describe(srcURI, name), describe(dstURI, name))
			}
			prog.done(fmt.Sprintf("Copied %d maps", len(args)))
			printSuccess("Copied %d map(s) to %s", len(args), dstURI)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "destination store URI")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// storeDeleteCommand creates the "store delete" subcommand.
func (c *CLI) storeDeleteCommand(uri *string) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <map>...",
		Aliases: []string{"rm"},
		Short:   "Delete maps",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, resolved, err := c.openStore(ctx, *uri)
			if err != nil {
				return err
			}
			defer st.Close()

			var failed []string
			var firstErr error
			for _, name := range args {
				if err := st.Delete(ctx, name); err != nil {
					printError("%s: %s", name, errors.UserMessage(err))
					failed = append(failed, name)
					if firstErr == nil {
						firstErr = err
					}
					continue
				}
				printSuccess("Deleted %s", describe(resolved, name))
			}
			if len(failed) > 0 {
				return errors.Wrap(errors.GetCode(firstErr), firstErr, "could not delete %s", strings.Join(failed, ", "))
			}
			return nil
		},
	}
}

// storeURICommand creates the "store uri" subcommand.
func (c *CLI) storeURICommand(uri *string) *cobra.Command {
	return &cobra.Command{
		Use:   "uri",
		Short: "Print the resolved store URI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if *uri != "" {
				fmt.Println(*uri)
				return nil
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			resolved, err := cfg.StoreURI()
			if err != nil {
				return err
			}
			fmt.Println(resolved)
			return nil
		},
	}
}
