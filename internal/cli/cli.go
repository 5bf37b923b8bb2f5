package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcraft/internal/config"
	"github.com/matzehuels/mindcraft/pkg/buildinfo"
	"github.com/matzehuels/mindcraft/pkg/cache"
	"github.com/matzehuels/mindcraft/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "mindcraft"

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

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "MindCraft is a mind-map editor for the terminal",
		Long:         `MindCraft edits mind maps of labeled boxes and undirected connections in the terminal, stores them as JSON in pluggable backends, and exports them to DOT, SVG and HTML.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			registerLogHooks(c.Logger)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mindcraft/config.toml)")

	root.AddCommand(c.editCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Stores
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// mapRef identifies a map: the store that holds it, its name there and a
// human-readable location.
type mapRef struct {
	store  store.Store
	name   string
	target string
}

// openMap resolves a map argument. An argument ending in .json or containing
// a path separator is a file; its directory becomes a file store. Anything
// else is a name in storeURI, or in the configured store when storeURI is
// empty.
func (c *CLI) openMap(ctx context.Context, arg, storeURI string) (*mapRef, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	opts := cfg.MapOptions()

	if isPathArg(arg) {
		dir, file := filepath.Split(arg)
		if dir == "" {
			dir = "."
		}
		name := strings.TrimSuffix(file, ".json")
		fs, err := store.NewFileStore(dir, opts)
		if err != nil {
			return nil, err
		}
		return &mapRef{
			store:  store.Instrument(fs, store.BackendFile),
			name:   name,
			target: fs.Path(name),
		}, nil
	}

	st, uri, err := c.openStore(ctx, storeURI)
	if err != nil {
		return nil, err
	}
	return &mapRef{store: st, name: arg, target: describe(uri, arg)}, nil
}

// openStore opens uri, or the configured store when uri is empty.
func (c *CLI) openStore(ctx context.Context, uri string) (store.Store, string, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, "", err
	}
	if uri == "" {
		if uri, err = cfg.StoreURI(); err != nil {
			return nil, "", err
		}
	}
	c.Logger.Debug("opening store", "uri", uri)
	st, err := store.Open(ctx, uri, cfg.MapOptions())
	if err != nil {
		return nil, "", err
	}
	return st, uri, nil
}

func isPathArg(arg string) bool {
	return strings.HasSuffix(arg, ".json") || strings.ContainsRune(arg, filepath.Separator) || strings.Contains(arg, "/")
}

// describe formats a map location for messages.
func describe(uri, name string) string {
	if backend, target, err := store.ParseURI(uri); err == nil && backend == store.BackendFile {
		return filepath.Join(target, name+".json")
	}
	return strings.TrimSuffix(uri, "/") + "/" + name
}

// =============================================================================
// Render Cache
// =============================================================================

// newCache returns the render cache, or a null cache when caching is off or
// the cache directory is unavailable.
func (c *CLI) newCache(noCache bool) cache.Cache {
	cfg, err := c.config()
	if noCache || err != nil || !cfg.Cache.Enabled {
		return cache.NewNullCache()
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		c.Logger.Debug("render cache disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("render cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return cache.Instrument(fc, "render")
}
