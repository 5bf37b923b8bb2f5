package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mindcraft/internal/server"
	"github.com/matzehuels/mindcraft/pkg/render"
)

type serveOpts struct {
	addr    string
	store   string
	noWatch bool
	noCache bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve <map>",
		Short: "Serve a live HTTP view of a map",
		Long: `Serve a live HTTP view of a map.

The map is rendered as SVG, DOT, HTML and JSON. File-backed maps are
watched and reloaded on change; connected websocket clients receive the new
document. Prometheus metrics are exposed on /metrics.`,
		Example: `  mindcraft serve ideas
  mindcraft serve ./roadmap.json --addr :9090`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMapNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.store, "store", "", "store URI (default from config)")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "do not reload the map when its file changes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, arg string, opts serveOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	addr := opts.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ref, err := c.openMap(ctx, arg, opts.store)
	if err != nil {
		return err
	}
	defer ref.store.Close()

	metrics := server.NewMetrics()
	metrics.Register()

	srv, err := server.New(ctx, server.Options{
		Name:     ref.name,
		Store:    ref.store,
		Map:      cfg.MapOptions(),
		Renderer: render.Renderer{Cache: c.newCache(opts.noCache), TTL: cfg.Cache.TTL.Duration},
		Metrics:  metrics,
		Logger:   loggerFromContext(ctx),
	})
	if err != nil {
		return err
	}

	stats := srv.Stats()
	printSuccess("Serving %s", ref.target)
	printStats(stats.Nodes, stats.Edges, stats.Dropped)
	printKeyValue("View", StyleLink.Render(fmt.Sprintf("http://%s/map.svg", addr)))
	printKeyValue("Live", fmt.Sprintf("ws://%s/ws", addr))
	printKeyValue("Metrics", fmt.Sprintf("http://%s/metrics", addr))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(ctx, addr) })
	if cfg.Server.Watch && !opts.noWatch && srv.WatchPath() != "" {
		g.Go(func() error { return srv.Watch(ctx) })
	}
	return g.Wait()
}
