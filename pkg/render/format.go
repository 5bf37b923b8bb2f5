package render

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mapfile"
	"github.com/matzehuels/mindcraft/pkg/mindmap"
	"github.com/matzehuels/mindcraft/pkg/observability"
)

// Format is an export format.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatDOT, FormatSVG, FormatHTML, FormatJSON}

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want dot, svg, html or json)", s)
}

// ContentType returns the HTTP media type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

// Export writes m to w in format f and reports the export to the render hooks.
func (r Renderer) Export(ctx context.Context, w io.Writer, m *mindmap.Map, f Format, o Options) error {
	observability.Render().OnRenderStart(ctx, string(f), m.NodeCount())
	start := time.Now()
	cw := &countingWriter{w: w}
	err := r.export(ctx, cw, m, f, o)
	observability.Render().OnRenderComplete(ctx, string(f), cw.n, time.Since(start), err)
	return err
}

func (r Renderer) export(ctx context.Context, w io.Writer, m *mindmap.Map, f Format, o Options) error {
	switch f {
	case FormatDOT:
		return writeAll(w, []byte(ToDOT(m, o)))
	case FormatSVG:
		svg, err := r.SVG(ctx, ToDOT(m, o))
		if err != nil {
			return err
		}
		return writeAll(w, svg)
	case FormatHTML:
		return WriteHTML(w, m, o)
	case FormatJSON:
		return mapfile.Encode(w, mapfile.FromMap(m))
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
}

func writeAll(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "write output")
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
