package cli

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mindcraft/pkg/mindmap"
)

// =============================================================================
// Viewport - terminal cells <-> canvas units
// =============================================================================

// viewport maps terminal cells to canvas coordinates. Each cell covers
// cellW x cellH canvas units; a cell stands for its center point.
type viewport struct {
	cellW, cellH float64
}

// toCanvas returns the canvas point at the center of cell (col, row).
func (v viewport) toCanvas(col, row int) mindmap.Point {
	return mindmap.Point{
		X: (float64(col) + 0.5) * v.cellW,
		Y: (float64(row) + 0.5) * v.cellH,
	}
}

// toCell returns the cell containing canvas point p.
func (v viewport) toCell(p mindmap.Point) (col, row int) {
	return int(math.Floor(p.X / v.cellW)), int(math.Floor(p.Y / v.cellH))
}

// tolerance widens hit tolerance to half a cell so that pointing at a drawn
// line selects it despite cell quantization.
func (v viewport) tolerance(base float64) float64 {
	return math.Max(base, math.Max(v.cellW, v.cellH)/2)
}

// =============================================================================
// Grid - rasterized canvas
// =============================================================================

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellEdge
	cellNode
	cellPending
	cellDragging
)

type cell struct {
	r    rune
	kind cellKind
}

var (
	styleCanvas   = lipgloss.NewStyle().Foreground(colorDim)
	styleEdge     = lipgloss.NewStyle().Foreground(colorGray)
	styleNode     = lipgloss.NewStyle().Background(lipgloss.Color("153")).Foreground(lipgloss.Color("16"))
	stylePending  = lipgloss.NewStyle().Background(colorBlue).Foreground(lipgloss.Color("16")).Bold(true)
	styleDragging = lipgloss.NewStyle().Background(colorCyan).Foreground(lipgloss.Color("16"))
)

// grid is a width x height raster of the canvas.
type grid struct {
	w, h  int
	cells [][]cell
}

func newGrid(w, h int) *grid {
	w, h = max(w, 0), max(h, 0)
	g := &grid{w: w, h: h, cells: make([][]cell, h)}
	for row := range g.cells {
		g.cells[row] = make([]cell, w)
		for col := range g.cells[row] {
			g.cells[row][col] = cell{r: ' '}
		}
	}
	return g
}

func (g *grid) set(col, row int, c cell) {
	if col < 0 || row < 0 || col >= g.w || row >= g.h {
		return
	}
	g.cells[row][col] = c
}

func (g *grid) at(col, row int) cell {
	if col < 0 || row < 0 || col >= g.w || row >= g.h {
		return cell{r: ' '}
	}
	return g.cells[row][col]
}

// line draws a straight segment with Bresenham's algorithm, choosing a glyph
// from the overall slope.
func (g *grid) line(c0, r0, c1, r1 int) {
	glyph := lineGlyph(c1-c0, r1-r0)
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	e := dc + dr
	for {
		g.set(c0, r0, cell{r: glyph, kind: cellEdge})
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

func lineGlyph(dc, dr int) rune {
	switch {
	case dr == 0:
		return '─'
	case dc == 0:
		return '│'
	}
	// Cells are roughly twice as tall as wide.
	slope := float64(dr) / float64(dc) * 2
	switch {
	case math.Abs(slope) < 0.5:
		return '─'
	case math.Abs(slope) > 4:
		return '│'
	case slope > 0:
		return '╲'
	default:
		return '╱'
	}
}

// box fills a node rectangle and centers its label on the middle row.
func (g *grid) box(c0, r0, c1, r1 int, label string, kind cellKind) {
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			g.set(col, row, cell{r: ' ', kind: kind})
		}
	}
	width := c1 - c0 + 1
	label = truncate(label, width)
	start := c0 + (width-utf8.RuneCountInString(label))/2
	mid := r0 + (r1-r0+1)/2
	i := 0
	for _, r := range label {
		g.set(start+i, mid, cell{r: r, kind: kind})
		i++
	}
}

// String renders the grid with one lipgloss style per run of equal kinds.
func (g *grid) String() string {
	var b strings.Builder
	for row := 0; row < g.h; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		var run []rune
		kind := cellEmpty
		flush := func() {
			if len(run) > 0 {
				b.WriteString(styleFor(kind).Render(string(run)))
				run = run[:0]
			}
		}
		for _, c := range g.cells[row] {
			if c.kind != kind {
				flush()
				kind = c.kind
			}
			run = append(run, c.r)
		}
		flush()
	}
	return b.String()
}

// Plain renders the grid without styling.
func (g *grid) Plain() string {
	rows := make([]string, g.h)
	for row := range g.cells {
		rs := make([]rune, g.w)
		for col, c := range g.cells[row] {
			rs[col] = c.r
		}
		rows[row] = string(rs)
	}
	return strings.Join(rows, "\n")
}

func styleFor(k cellKind) lipgloss.Style {
	switch k {
	case cellEdge:
		return styleEdge
	case cellNode:
		return styleNode
	case cellPending:
		return stylePending
	case cellDragging:
		return styleDragging
	default:
		return styleCanvas
	}
}

// rasterize draws m into a w x h grid. Edges go first so that nodes cover
// them; nodes are drawn in id order so newer nodes sit on top, matching
// hit-test order.
func rasterize(m *mindmap.Map, v viewport, w, h int, pending, dragging mindmap.NodeID) *grid {
	g := newGrid(w, h)
	for _, e := range m.Edges() {
		a, b, ok := m.Segment(e.ID)
		if !ok {
			continue
		}
		c0, r0 := v.toCell(a)
		c1, r1 := v.toCell(b)
		g.line(c0, r0, c1, r1)
	}
	for _, n := range m.Nodes() {
		kind := cellNode
		switch n.ID {
		case pending:
			kind = cellPending
		case dragging:
			kind = cellDragging
		}
		b := n.Bounds()
		c0, r0 := v.toCell(b.Min)
		c1, r1 := v.toCell(b.Max)
		// Max is inclusive in canvas units but exclusive in cells.
		if float64(c1)*v.cellW == b.Max.X && c1 > c0 {
			c1--
		}
		if float64(r1)*v.cellH == b.Max.Y && r1 > r0 {
			r1--
		}
		g.box(c0, r0, c1, r1, n.Label, kind)
	}
	return g
}

// =============================================================================
// Helpers
// =============================================================================

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	rs := []rune(s)
	if n == 1 {
		return string(rs[:1])
	}
	return string(rs[:n-1]) + "…"
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
