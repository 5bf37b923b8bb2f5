package mindmap

import (
	"maps"
	"slices"
)

// HitKind tells what a [Hit] landed on.
type HitKind int

const (
	// HitNone means the point is over empty canvas.
	HitNone HitKind = iota
	// HitNode means the point is over a node.
	HitNode
	// HitEdge means the point is over an edge and no node.
	HitEdge
)

// String returns a lowercase name for the hit kind.
func (k HitKind) String() string {
	switch k {
	case HitNode:
		return "node"
	case HitEdge:
		return "edge"
	default:
		return "none"
	}
}

// Hit is the result of a hit-test. Only the id matching Kind is set.
type Hit struct {
	Kind HitKind
	Node NodeID
	Edge EdgeID
}

// HitTest resolves p to the topmost entity under it.
// Nodes take priority over edges; among nodes (or edges) the most recently
// created one is on top. tolerance widens every node rectangle and edge
// segment by that many canvas units.
func (m *Map) HitTest(p Point, tolerance float64) Hit {
	if id, ok := m.NodeAt(p, tolerance); ok {
		return Hit{Kind: HitNode, Node: id}
	}
	if id, ok := m.EdgeAt(p, tolerance); ok {
		return Hit{Kind: HitEdge, Edge: id}
	}
	return Hit{Kind: HitNone}
}

// NodeAt returns the topmost node whose rectangle, grown by tolerance,
// contains p.
func (m *Map) NodeAt(p Point, tolerance float64) (NodeID, bool) {
	ids := slices.Sorted(maps.Keys(m.nodes))
	for _, id := range slices.Backward(ids) {
		if m.nodes[id].Bounds().Grow(tolerance).Contains(p) {
			return id, true
		}
	}
	return NoNode, false
}

// EdgeAt returns the topmost edge whose segment passes within tolerance of p.
func (m *Map) EdgeAt(p Point, tolerance float64) (EdgeID, bool) {
	limit := tolerance * tolerance
	for _, e := range slices.Backward(m.edges) {
		a, b := m.nodes[e.A].Position, m.nodes[e.B].Position
		if segmentDistSq(p, a, b) <= limit {
			return e.ID, true
		}
	}
	return NoEdge, false
}

// segmentDistSq returns the squared distance from p to the segment ab.
func segmentDistSq(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.DistSq(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = max(0, min(1, t))
	return p.DistSq(Point{a.X + t*dx, a.Y + t*dy})
}
