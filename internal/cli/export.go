package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcraft/pkg/cache"
	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mindmap"
	"github.com/matzehuels/mindcraft/pkg/render"
	"github.com/matzehuels/mindcraft/pkg/store"
)

type exportOpts struct {
	format  string
	output  string
	title   string
	store   string
	noCache bool
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <map>",
		Short: "Render a map to DOT, SVG, HTML or JSON",
		Long: `Render a map to DOT, SVG, HTML or JSON.

SVG is laid out by Graphviz neato with every node pinned at its canvas
position. SVG renders are cached by DOT content unless --no-cache is set.
The format defaults to the output file's extension, or svg.`,
		Example: `  mindcraft export ideas -o ideas.svg
  mindcraft export ./roadmap.json -f html
  mindcraft export ideas -f dot -o -`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMapNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, html, json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default <map>.<format>)")
	cmd.Flags().StringVar(&opts.title, "title", "", "graph title (default map name)")
	cmd.Flags().StringVar(&opts.store, "store", "", "store URI (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(render.Formats))
		for i, f := range render.Formats {
			names[i] = string(f)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runExport(ctx context.Context, arg string, opts exportOpts) error {
	format, err := exportFormat(opts.format, opts.output)
	if err != nil {
		return err
	}

	ref, err := c.openMap(ctx, arg, opts.store)
	if err != nil {
		return err
	}
	defer ref.store.Close()

	cfg, err := c.config()
	if err != nil {
		return err
	}
	m := mindmap.New()
	if _, err := store.LoadMap(ctx, ref.store, ref.name, m, cfg.MapOptions()); err != nil {
		return err
	}

	title := opts.title
	if title == "" {
		title = ref.name
	}
	rc := &hitRecorder{Cache: c.newCache(opts.noCache)}
	r := render.Renderer{Cache: rc, TTL: cfg.Cache.TTL.Duration}

	var act *activity
	if format == render.FormatSVG && opts.output != "-" {
		act = startActivity(ctx, os.Stderr, "Rendering SVG...")
	}
	prog := newProgress(loggerFromContext(ctx))

	var buf bytes.Buffer
	err = r.Export(ctx, &buf, m, format, render.Options{Title: title})
	if act != nil {
		act.stop()
	}
	if err != nil {
		return err
	}

	if opts.output == "-" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}

	out := opts.output
	if out == "" {
		out = ref.name + "." + string(format)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "write %s", out)
	}
	prog.done("Exported " + string(format))

	printSuccess("Exported %s", ref.target)
	printFile(out)
	printRenderStats(buf.Len(), rc.hit)
	return nil
}

// exportFormat picks the format from the flag, then the output extension,
// then svg.
func exportFormat(flag, output string) (render.Format, error) {
	if flag != "" {
		return render.ParseFormat(flag)
	}
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" && output != "-" {
		if f, err := render.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return render.FormatSVG, nil
}

// hitRecorder notes whether any Get was served from the cache.
type hitRecorder struct {
	cache.Cache
	hit bool
}

func (h *hitRecorder) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := h.Cache.Get(ctx, key)
	if ok && err == nil {
		h.hit = true
	}
	return data, ok, err
}
