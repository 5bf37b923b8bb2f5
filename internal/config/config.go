// Package config loads the mindcraft configuration file.
//
// The file is TOML at $XDG_CONFIG_HOME/mindcraft/config.toml (or
// ~/.config/mindcraft/config.toml). A missing file yields [Default]; keys
// absent from the file keep their default values.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mapfile"
	"github.com/matzehuels/mindcraft/pkg/mindmap"
	"github.com/matzehuels/mindcraft/pkg/store"
)

// Config holds mindcraft configuration.
type Config struct {
	Canvas CanvasConfig `toml:"canvas"`
	Editor EditorConfig `toml:"editor"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
}

// CanvasConfig describes the drawing area.
type CanvasConfig struct {
	Width     float64 `toml:"width" validate:"gt=0"`
	Height    float64 `toml:"height" validate:"gt=0"`
	Tolerance float64 `toml:"tolerance" validate:"gte=0,lte=50"`
}

// EditorConfig controls the terminal editor.
type EditorConfig struct {
	CellWidth     float64 `toml:"cell_width" validate:"gt=0"`
	CellHeight    float64 `toml:"cell_height" validate:"gt=0"`
	DoubleClickMS int     `toml:"double_click_ms" validate:"gte=100,lte=2000"`
	Reconcile     string  `toml:"reconcile" validate:"oneof=ids labels"`
}

// StoreConfig selects where named maps live.
type StoreConfig struct {
	// URI is a store URI; empty means the default map directory.
	URI string `toml:"uri"`
}

// ServerConfig controls the HTTP live view.
type ServerConfig struct {
	Addr  string `toml:"addr" validate:"required,hostname_port"`
	Watch bool   `toml:"watch"`
}

// CacheConfig controls the render cache.
type CacheConfig struct {
	Enabled bool     `toml:"enabled"`
	TTL     Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a string ("24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{Width: 1100, Height: 700, Tolerance: mindmap.DefaultTolerance},
		Editor: EditorConfig{CellWidth: 10, CellHeight: 20, DoubleClickMS: 400, Reconcile: "ids"},
		Server: ServerConfig{Addr: "127.0.0.1:8080", Watch: true},
		Cache:  CacheConfig{Enabled: true, TTL: Duration{24 * time.Hour}},
	}
}

// Dir returns the mindcraft config directory.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeIOFailure, err, "get home dir")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "mindcraft"), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path, or the default path when path is
// empty. A missing file is not an error. Malformed files and invalid values
// are INVALID_INPUT errors.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = Path(); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "read config %s", path)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "create config dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "create config %s", path)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "write config %s", path)
	}
	return nil
}

// MapOptions returns the decode and restore options derived from cfg.
func (c *Config) MapOptions() mapfile.Options {
	strategy, _ := mapfile.ParseStrategy(c.Editor.Reconcile)
	return mapfile.Options{
		Strategy: strategy,
		Canvas:   mindmap.Size{Width: c.Canvas.Width, Height: c.Canvas.Height},
	}
}

// StoreURI returns the configured store URI, falling back to the default
// map directory.
func (c *Config) StoreURI() (string, error) {
	if c.Store.URI != "" {
		return c.Store.URI, nil
	}
	return store.DefaultDir()
}

// DoubleClick returns the double-click window.
func (c *Config) DoubleClick() time.Duration {
	return time.Duration(c.Editor.DoubleClickMS) * time.Millisecond
}
