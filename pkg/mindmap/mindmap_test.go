package mindmap

import (
	"slices"
	"testing"

	"github.com/matzehuels/mindcraft/pkg/errors"
)

func mustNode(t *testing.T, m *Map, x, y float64, label string) NodeID {
	t.Helper()
	id, err := m.CreateNode(Point{x, y}, label)
	if err != nil {
		t.Fatalf("CreateNode(%q): %v", label, err)
	}
	return id
}

func TestCreateNode(t *testing.T) {
	m := New()

	var last NodeID
	for i, label := range []string{"Idea", "Plan", "Risks", "Next steps"} {
		pos := Point{float64(i * 50), float64(i * 20)}
		id, err := m.CreateNode(pos, label)
		if err != nil {
			t.Fatalf("CreateNode(%q): %v", label, err)
		}
		if id <= last {
			t.Errorf("id %d not greater than previous %d", id, last)
		}
		last = id

		n, ok := m.Node(id)
		if !ok {
			t.Fatalf("Node(%d) not found", id)
		}
		if n.Label != label || n.Position != pos {
			t.Errorf("Node(%d) = %+v, want label %q at %v", id, n, label, pos)
		}
	}
	if m.NodeCount() != 4 {
		t.Errorf("NodeCount = %d, want 4", m.NodeCount())
	}
}

func TestCreateNodeTrimsLabel(t *testing.T) {
	m := New()
	id := mustNode(t, m, 0, 0, "  Idea \n")
	n, _ := m.Node(id)
	if n.Label != "Idea" {
		t.Errorf("Label = %q, want %q", n.Label, "Idea")
	}
}

func TestCreateNodeInvalidLabel(t *testing.T) {
	m := New()
	for _, label := range []string{"", "   ", "\t\n"} {
		id, err := m.CreateNode(Point{}, label)
		if !errors.Is(err, errors.ErrCodeInvalidLabel) {
			t.Errorf("CreateNode(%q) error = %v, want INVALID_LABEL", label, err)
		}
		if id != NoNode {
			t.Errorf("CreateNode(%q) id = %d, want NoNode", label, id)
		}
	}
	if m.NodeCount() != 0 {
		t.Errorf("NodeCount = %d, want 0", m.NodeCount())
	}
	// A failed create must not consume an id.
	if id := mustNode(t, m, 0, 0, "First"); id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}
}

func TestSizeForLabel(t *testing.T) {
	tests := []struct {
		label string
		want  Size
	}{
		{"a", Size{98, 40}},    // padded to 4 runes
		{"Idea", Size{98, 40}}, // exactly 4
		{"Plans", Size{105, 40}},
		{"Überblick", Size{133, 40}}, // counted in runes, not bytes
		{"a label long enough to hit the width cap", Size{220, 40}},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := SizeForLabel(tt.label); got != tt.want {
				t.Errorf("SizeForLabel(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestIDsNeverReused(t *testing.T) {
	m := New()
	a := mustNode(t, m, 0, 0, "A")
	b := mustNode(t, m, 0, 0, "B")
	m.DeleteNode(b)
	c := mustNode(t, m, 0, 0, "C")
	if c <= b || c == a {
		t.Errorf("id after delete = %d, want > %d", c, b)
	}
}

func TestCreateNodeWithID(t *testing.T) {
	m := New()

	got, err := m.CreateNodeWithID(7, Point{}, "Seven")
	if err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("CreateNodeWithID(7) = %d, want 7", got)
	}

	// Counter advanced past 7.
	if next := mustNode(t, m, 0, 0, "Next"); next != 8 {
		t.Errorf("next id = %d, want 8", next)
	}

	// Collision remaps to a fresh id.
	dup, _ := m.CreateNodeWithID(7, Point{}, "Dup")
	if dup != 9 {
		t.Errorf("colliding id remapped to %d, want 9", dup)
	}

	// Non-positive ids get fresh ids.
	neg, _ := m.CreateNodeWithID(-3, Point{}, "Neg")
	if neg != 10 {
		t.Errorf("negative id remapped to %d, want 10", neg)
	}

	// Lower free ids are honoured without moving the counter back.
	low, _ := m.CreateNodeWithID(2, Point{}, "Low")
	if low != 2 {
		t.Errorf("free low id = %d, want 2", low)
	}
	if next := mustNode(t, m, 0, 0, "After"); next != 11 {
		t.Errorf("id after low reuse = %d, want 11", next)
	}
}

func TestCreateEdge(t *testing.T) {
	m := New()
	a := mustNode(t, m, 0, 0, "A")
	b := mustNode(t, m, 10, 0, "B")

	id, ok := m.CreateEdge(a, b)
	if !ok || id == NoEdge {
		t.Fatalf("CreateEdge(a, b) = %d, %v", id, ok)
	}
	if !m.HasEdge(a, b) || !m.HasEdge(b, a) {
		t.Error("edge should be visible in both directions")
	}

	if _, ok := m.CreateEdge(a, b); ok {
		t.Error("duplicate CreateEdge(a, b) should be a no-op")
	}
	if _, ok := m.CreateEdge(b, a); ok {
		t.Error("reverse CreateEdge(b, a) should be a no-op")
	}
	if m.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", m.EdgeCount())
	}
}

func TestCreateEdgeGuards(t *testing.T) {
	m := New()
	x := mustNode(t, m, 0, 0, "X")

	tests := []struct {
		name string
		a, b NodeID
	}{
		{"self edge", x, x},
		{"absent target", x, 99},
		{"absent source", 99, x},
		{"both absent", 98, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if id, ok := m.CreateEdge(tt.a, tt.b); ok || id != NoEdge {
				t.Errorf("CreateEdge(%d, %d) = %d, %v, want no-op", tt.a, tt.b, id, ok)
			}
		})
	}
	if m.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", m.EdgeCount())
	}
}

func TestDeleteNodeCascades(t *testing.T) {
	m := New()
	hub := mustNode(t, m, 0, 0, "Hub")
	a := mustNode(t, m, 100, 0, "A")
	b := mustNode(t, m, 0, 100, "B")
	c := mustNode(t, m, 100, 100, "C")

	e1, _ := m.CreateEdge(hub, a)
	e2, _ := m.CreateEdge(b, hub)
	keep, _ := m.CreateEdge(a, c)

	removed := m.DeleteNode(hub)
	slices.Sort(removed)
	if !slices.Equal(removed, []EdgeID{e1, e2}) {
		t.Errorf("removed = %v, want [%d %d]", removed, e1, e2)
	}
	if m.HasNode(hub) {
		t.Error("hub should be gone")
	}
	if m.EdgeCount() != 1 {
		t.Fatalf("EdgeCount = %d, want 1", m.EdgeCount())
	}
	if e, ok := m.Edge(keep); !ok || !e.Connects(a, c) {
		t.Errorf("unrelated edge lost: %+v, %v", e, ok)
	}
	for _, e := range m.Edges() {
		if !m.HasNode(e.A) || !m.HasNode(e.B) {
			t.Errorf("edge %d references a deleted node", e.ID)
		}
	}
}

func TestDeleteNodeAbsent(t *testing.T) {
	m := New()
	mustNode(t, m, 0, 0, "A")
	if removed := m.DeleteNode(42); removed != nil {
		t.Errorf("DeleteNode(absent) = %v, want nil", removed)
	}
	if m.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", m.NodeCount())
	}
}

func TestDeleteEdge(t *testing.T) {
	m := New()
	a := mustNode(t, m, 0, 0, "A")
	b := mustNode(t, m, 10, 0, "B")
	c := mustNode(t, m, 20, 0, "C")
	ab, _ := m.CreateEdge(a, b)
	bc, _ := m.CreateEdge(b, c)

	if !m.DeleteEdge(ab) {
		t.Fatal("DeleteEdge(ab) = false")
	}
	if m.DeleteEdge(ab) {
		t.Error("second DeleteEdge(ab) should be a no-op")
	}
	if m.HasEdge(a, b) {
		t.Error("a-b should be disconnected")
	}
	if _, ok := m.Edge(bc); !ok {
		t.Error("b-c should remain")
	}

	// The pair can be reconnected and gets a new id.
	again, ok := m.CreateEdge(b, a)
	if !ok || again <= bc {
		t.Errorf("reconnect = %d, %v; want id > %d", again, ok, bc)
	}
}

func TestMoveNode(t *testing.T) {
	m := New()
	a := mustNode(t, m, 0, 0, "A")
	b := mustNode(t, m, 100, 0, "B")
	e, _ := m.CreateEdge(a, b)

	if !m.MoveNode(a, Point{50, 60}) {
		t.Fatal("MoveNode returned false")
	}
	n, _ := m.Node(a)
	if n.Position != (Point{50, 60}) {
		t.Errorf("Position = %v, want {50 60}", n.Position)
	}
	if n.Size != SizeForLabel("A") {
		t.Errorf("Size changed on move: %v", n.Size)
	}

	p, q, ok := m.Segment(e)
	if !ok || p != (Point{50, 60}) || q != (Point{100, 0}) {
		t.Errorf("Segment = %v, %v, %v", p, q, ok)
	}

	if m.MoveNode(99, Point{1, 1}) {
		t.Error("MoveNode(absent) should return false")
	}
}

func TestNeighborsOf(t *testing.T) {
	m := New()
	a := mustNode(t, m, 0, 0, "A")
	b := mustNode(t, m, 10, 0, "B")
	c := mustNode(t, m, 20, 0, "C")
	ab, _ := m.CreateEdge(a, b)
	ca, _ := m.CreateEdge(c, a)
	m.CreateEdge(b, c)

	var got []EdgeID
	for _, e := range m.NeighborsOf(a) {
		got = append(got, e.ID)
		if e.Other(a) == NoNode {
			t.Errorf("edge %d does not touch a", e.ID)
		}
	}
	if !slices.Equal(got, []EdgeID{ab, ca}) {
		t.Errorf("NeighborsOf(a) = %v, want [%d %d]", got, ab, ca)
	}
	if n := m.NeighborsOf(99); n != nil {
		t.Errorf("NeighborsOf(absent) = %v, want nil", n)
	}
}

func TestClear(t *testing.T) {
	m := New()
	a := mustNode(t, m, 0, 0, "A")
	b := mustNode(t, m, 10, 0, "B")
	m.CreateEdge(a, b)

	m.Clear()
	if m.NodeCount() != 0 || m.EdgeCount() != 0 {
		t.Errorf("after Clear: %d nodes, %d edges", m.NodeCount(), m.EdgeCount())
	}
	if id := mustNode(t, m, 0, 0, "Fresh"); id != 1 {
		t.Errorf("first id after Clear = %d, want 1", id)
	}
}

func TestNodesAndEdgesOrdered(t *testing.T) {
	m := New()
	for _, id := range []NodeID{5, 2, 9} {
		if _, err := m.CreateNodeWithID(id, Point{}, "n"); err != nil {
			t.Fatal(err)
		}
	}
	var ids []NodeID
	for _, n := range m.Nodes() {
		ids = append(ids, n.ID)
	}
	if !slices.Equal(ids, []NodeID{2, 5, 9}) {
		t.Errorf("Nodes() order = %v, want [2 5 9]", ids)
	}

	m.CreateEdge(9, 2)
	m.CreateEdge(5, 9)
	edges := m.Edges()
	if len(edges) != 2 || edges[0].ID >= edges[1].ID {
		t.Errorf("Edges() not in id order: %+v", edges)
	}
	if edges[0].A != 9 || edges[0].B != 2 {
		t.Errorf("edge endpoints reordered: %+v", edges[0])
	}
}

func TestQueriesReturnCopies(t *testing.T) {
	m := New()
	a := mustNode(t, m, 1, 2, "A")

	n, _ := m.Node(a)
	n.Position = Point{100, 100}
	nodes := m.Nodes()
	nodes[0].Label = "changed"

	got, _ := m.Node(a)
	if got.Position != (Point{1, 2}) || got.Label != "A" {
		t.Errorf("map mutated through a copy: %+v", got)
	}
}
