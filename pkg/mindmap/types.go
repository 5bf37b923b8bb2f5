package mindmap

import (
	"math"
	"unicode/utf8"
)

// Node sizing constants.
const (
	minLabelRunes = 4   // Short labels are sized as if they had this many runes
	baseNodeWidth = 70  // Width before per-rune growth
	runeWidth     = 7   // Width added per label rune
	maxNodeWidth  = 220 // Upper bound on node width
	nodeHeight    = 40  // All nodes share one height
)

// DefaultTolerance is the hit-test slack around nodes and edges, in canvas units.
const DefaultTolerance = 2.0

// NodeID identifies a node within a [Map]. Valid ids are positive.
type NodeID int

// NoNode is the zero NodeID. It never identifies a live node.
const NoNode NodeID = 0

// EdgeID identifies an edge within a [Map]. Valid ids are positive.
type EdgeID int

// NoEdge is the zero EdgeID. It never identifies a live edge.
const NoEdge EdgeID = 0

// Point is a position on the canvas. Y grows downward.
type Point struct {
	X, Y float64
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// DistSq returns the squared Euclidean distance between p and q.
func (p Point) DistSq(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// Size is the extent of a node's rectangle.
type Size struct {
	Width, Height float64
}

// SizeForLabel returns the node size for a label: 7 units per rune on top
// of a 70 unit base (labels shorter than 4 runes count as 4), capped at 220,
// with a fixed height of 40.
func SizeForLabel(label string) Size {
	n := max(minLabelRunes, utf8.RuneCountInString(label))
	return Size{
		Width:  math.Min(maxNodeWidth, float64(baseNodeWidth+runeWidth*n)),
		Height: nodeHeight,
	}
}

// Rect is an axis-aligned rectangle given by its min and max corners.
type Rect struct {
	Min, Max Point
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Grow expands r by d on every side (shrinks it for negative d).
func (r Rect) Grow(d float64) Rect {
	return Rect{
		Min: Point{r.Min.X - d, r.Min.Y - d},
		Max: Point{r.Max.X + d, r.Max.Y + d},
	}
}

// Node is a labeled box on the canvas.
// Values returned by [Map] queries are copies; mutate through [Map] methods.
type Node struct {
	ID       NodeID
	Position Point  // Center of the node
	Size     Size   // Derived from Label at creation
	Label    string // Trimmed, non-empty, immutable
}

// Bounds returns the node's rectangle.
func (n Node) Bounds() Rect {
	hw, hh := n.Size.Width/2, n.Size.Height/2
	return Rect{
		Min: Point{n.Position.X - hw, n.Position.Y - hh},
		Max: Point{n.Position.X + hw, n.Position.Y + hh},
	}
}

// Edge is an undirected connection between two nodes.
// A and B record the order the edge was created in; it carries no meaning.
type Edge struct {
	ID   EdgeID
	A, B NodeID
}

// Touches reports whether id is one of the edge's endpoints.
func (e Edge) Touches(id NodeID) bool { return e.A == id || e.B == id }

// Connects reports whether the edge joins a and b, in either order.
func (e Edge) Connects(a, b NodeID) bool {
	return (e.A == a && e.B == b) || (e.A == b && e.B == a)
}

// Other returns the endpoint opposite id, or NoNode if id is not an endpoint.
func (e Edge) Other(id NodeID) NodeID {
	switch id {
	case e.A:
		return e.B
	case e.B:
		return e.A
	default:
		return NoNode
	}
}
