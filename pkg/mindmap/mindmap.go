package mindmap

import (
	"maps"
	"slices"

	"github.com/matzehuels/mindcraft/pkg/errors"
)

// Map is a mind-map graph: nodes keyed by id plus an ordered edge list.
//
// The zero value is not usable - use New to create a valid Map instance.
// Map is not safe for concurrent use without external synchronization.
type Map struct {
	nodes   map[NodeID]*Node
	edges   []Edge // Ascending EdgeID order
	nodeSeq NodeID // Last assigned node id
	edgeSeq EdgeID // Last assigned edge id
}

// New creates an empty Map whose first node and edge ids will be 1.
func New() *Map {
	return &Map{nodes: make(map[NodeID]*Node)}
}

// CreateNode adds a node centered at pos and returns its id.
// The label is trimmed; a blank label fails with an INVALID_LABEL error
// and leaves the map unchanged. The node size is computed once from the
// trimmed label with [SizeForLabel].
func (m *Map) CreateNode(pos Point, label string) (NodeID, error) {
	return m.CreateNodeWithID(NoNode, pos, label)
}

// CreateNodeWithID adds a node like [Map.CreateNode] but tries to reuse id.
// If id is positive and not held by a live node, the node gets that id and
// the counter is advanced to at least id. Otherwise a fresh id is assigned.
// The id actually used is returned.
func (m *Map) CreateNodeWithID(id NodeID, pos Point, label string) (NodeID, error) {
	label, err := errors.ValidateLabel(label)
	if err != nil {
		return NoNode, err
	}
	if _, taken := m.nodes[id]; id <= NoNode || taken {
		m.nodeSeq++
		id = m.nodeSeq
	} else {
		m.AdvanceCounter(id)
	}
	m.nodes[id] = &Node{
		ID:       id,
		Position: pos,
		Size:     SizeForLabel(label),
		Label:    label,
	}
	return id, nil
}

// AdvanceCounter ensures the next assigned node id is greater than id.
// The counter never moves backwards.
func (m *Map) AdvanceCounter(id NodeID) {
	if id > m.nodeSeq {
		m.nodeSeq = id
	}
}

// DeleteNode removes a node and every edge incident to it.
// It returns the ids of the removed edges so the caller can discard their
// visuals. Deleting an absent node is a no-op that returns nil.
func (m *Map) DeleteNode(id NodeID) []EdgeID {
	if _, ok := m.nodes[id]; !ok {
		return nil
	}
	delete(m.nodes, id)

	removed := []EdgeID{}
	m.edges = slices.DeleteFunc(m.edges, func(e Edge) bool {
		if e.Touches(id) {
			removed = append(removed, e.ID)
			return true
		}
		return false
	})
	return removed
}

// CreateEdge connects a and b and returns the new edge id and true.
// It is a no-op returning (NoEdge, false) when a == b, when either node is
// absent, or when a and b are already connected in either direction.
func (m *Map) CreateEdge(a, b NodeID) (EdgeID, bool) {
	if a == b || !m.HasNode(a) || !m.HasNode(b) || m.HasEdge(a, b) {
		return NoEdge, false
	}
	m.edgeSeq++
	m.edges = append(m.edges, Edge{ID: m.edgeSeq, A: a, B: b})
	return m.edgeSeq, true
}

// DeleteEdge removes the edge with the given id and reports whether it existed.
func (m *Map) DeleteEdge(id EdgeID) bool {
	i := m.edgeIndex(id)
	if i < 0 {
		return false
	}
	m.edges = slices.Delete(m.edges, i, i+1)
	return true
}

// MoveNode sets a node's center and reports whether the node exists.
// Incident edges need no update; their geometry is derived from node
// positions (see [Map.Segment]).
func (m *Map) MoveNode(id NodeID, pos Point) bool {
	n, ok := m.nodes[id]
	if !ok {
		return false
	}
	n.Position = pos
	return true
}

// Clear removes all nodes and edges and resets both id counters to zero.
func (m *Map) Clear() {
	clear(m.nodes)
	m.edges = nil
	m.nodeSeq = NoNode
	m.edgeSeq = NoEdge
}

// NeighborsOf returns the edges incident to a node, in edge id order.
// Returns nil if the node has no edges or doesn't exist.
func (m *Map) NeighborsOf(id NodeID) []Edge {
	var out []Edge
	for _, e := range m.edges {
		if e.Touches(id) {
			out = append(out, e)
		}
	}
	return out
}

// Node returns a copy of the node with the given id and true,
// or the zero Node and false if not found.
func (m *Map) Node(id NodeID) (Node, bool) {
	n, ok := m.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// HasNode reports whether a node with the given id exists.
func (m *Map) HasNode(id NodeID) bool {
	_, ok := m.nodes[id]
	return ok
}

// Nodes returns copies of all nodes in ascending id order.
func (m *Map) Nodes() []Node {
	out := make([]Node, 0, len(m.nodes))
	for _, id := range slices.Sorted(maps.Keys(m.nodes)) {
		out = append(out, *m.nodes[id])
	}
	return out
}

// Edge returns the edge with the given id and true, or the zero Edge and false.
func (m *Map) Edge(id EdgeID) (Edge, bool) {
	i := m.edgeIndex(id)
	if i < 0 {
		return Edge{}, false
	}
	return m.edges[i], true
}

// Edges returns a copy of all edges in ascending id (creation) order.
func (m *Map) Edges() []Edge { return slices.Clone(m.edges) }

// HasEdge reports whether a and b are connected, in either direction.
func (m *Map) HasEdge(a, b NodeID) bool {
	return slices.ContainsFunc(m.edges, func(e Edge) bool { return e.Connects(a, b) })
}

// NodeCount returns the number of nodes in the map.
func (m *Map) NodeCount() int { return len(m.nodes) }

// EdgeCount returns the number of edges in the map.
func (m *Map) EdgeCount() int { return len(m.edges) }

// Segment returns the current endpoints of an edge: the centers of its
// two nodes. The final result is false if the edge does not exist.
func (m *Map) Segment(id EdgeID) (Point, Point, bool) {
	e, ok := m.Edge(id)
	if !ok {
		return Point{}, Point{}, false
	}
	a, b := m.nodes[e.A], m.nodes[e.B]
	return a.Position, b.Position, true
}

// edgeIndex locates an edge by binary search over the id-ordered slice.
func (m *Map) edgeIndex(id EdgeID) int {
	i, found := slices.BinarySearchFunc(m.edges, id, func(e Edge, target EdgeID) int {
		return int(e.ID - target)
	})
	if !found {
		return -1
	}
	return i
}
