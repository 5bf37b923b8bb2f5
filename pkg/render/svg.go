package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mindcraft/pkg/cache"
	"github.com/matzehuels/mindcraft/pkg/errors"
)

// Renderer turns DOT text into SVG, optionally through a cache.
// The zero value renders without caching.
type Renderer struct {
	Cache cache.Cache
	TTL   time.Duration
}

// SVG renders dot with Graphviz neato. Cache failures are ignored; the
// render result is what matters.
func (r Renderer) SVG(ctx context.Context, dot string) ([]byte, error) {
	if r.Cache == nil {
		return RenderSVG(ctx, dot)
	}

	key := cache.RenderKey([]byte(dot), cache.RenderKeyOpts{Format: string(FormatSVG), Layout: string(graphviz.NEATO)})
	if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
		return data, nil
	}
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	_ = r.Cache.Set(ctx, key, svg, r.TTL)
	return svg, nil
}

// RenderSVG lays out dot with neato and returns the SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render SVG")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's <svg> header, which sizes the
// drawing in pt, with a unitless one so browsers scale it to fit.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
