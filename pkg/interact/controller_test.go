package interact

import (
	"slices"
	"testing"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mindmap"
)

// fixture builds Idea at (100,100) and Plan at (400,100), unconnected.
func fixture(t *testing.T) (*Controller, mindmap.NodeID, mindmap.NodeID) {
	t.Helper()
	m := mindmap.New()
	idea, err := m.CreateNode(mindmap.Point{X: 100, Y: 100}, "Idea")
	if err != nil {
		t.Fatal(err)
	}
	plan, err := m.CreateNode(mindmap.Point{X: 400, Y: 100}, "Plan")
	if err != nil {
		t.Fatal(err)
	}
	return New(m, mindmap.DefaultTolerance), idea, plan
}

var (
	ideaAt  = mindmap.Point{X: 100, Y: 100}
	planAt  = mindmap.Point{X: 400, Y: 100}
	blankAt = mindmap.Point{X: 700, Y: 500}
	midEdge = mindmap.Point{X: 250, Y: 100}
)

func TestConnectTwoNodes(t *testing.T) {
	c, idea, plan := fixture(t)
	s := State{}.ToggleConnect()

	s, out := c.PointerDown(s, ideaAt)
	if out.Action != ActionConnectPending || s.PendingSource != idea {
		t.Fatalf("first press: state %+v outcome %+v", s, out)
	}

	s, out = c.PointerDown(s, planAt)
	if out.Action != ActionEdgeCreated {
		t.Fatalf("second press action = %v, want EdgeCreated", out.Action)
	}
	if out.Unhighlight != idea {
		t.Errorf("Unhighlight = %d, want %d", out.Unhighlight, idea)
	}
	if s.HasPending() {
		t.Error("pending source survived edge creation")
	}
	if s.Mode != ModeConnect {
		t.Errorf("mode = %v, want connect", s.Mode)
	}
	if !c.Map().HasEdge(idea, plan) {
		t.Error("edge not created")
	}
}

func TestConnectSameNodeAbsorbed(t *testing.T) {
	c, idea, _ := fixture(t)
	s := State{}.ToggleConnect()

	s, _ = c.PointerDown(s, ideaAt)
	s, out := c.PointerDown(s, ideaAt.Add(mindmap.Point{X: 5}))
	if out.Action != ActionNone {
		t.Errorf("same-node press action = %v, want none", out.Action)
	}
	if s.PendingSource != idea {
		t.Errorf("pending = %d, want %d", s.PendingSource, idea)
	}
	if c.Map().EdgeCount() != 0 {
		t.Error("self-edge created")
	}
}

func TestConnectDuplicateClearsPending(t *testing.T) {
	c, idea, plan := fixture(t)
	c.Map().CreateEdge(idea, plan)
	s := State{}.ToggleConnect()

	s, _ = c.PointerDown(s, planAt)
	s, out := c.PointerDown(s, ideaAt)
	if out.Action != ActionNone || out.Unhighlight != plan {
		t.Errorf("duplicate outcome = %+v", out)
	}
	if s.HasPending() {
		t.Error("pending source kept after duplicate attempt")
	}
	if c.Map().EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", c.Map().EdgeCount())
	}
}

func TestConnectIgnoresEdgesAndBlank(t *testing.T) {
	c, idea, plan := fixture(t)
	c.Map().CreateEdge(idea, plan)
	s := State{}.ToggleConnect()

	for _, p := range []mindmap.Point{blankAt, midEdge} {
		var out Outcome
		s, out = c.PointerDown(s, p)
		if out.Action != ActionNone || s.HasPending() {
			t.Errorf("press at %v: state %+v outcome %+v", p, s, out)
		}
	}
}

func TestToggleConnectDropsPending(t *testing.T) {
	c, _, _ := fixture(t)
	s := State{}.ToggleConnect()
	s, _ = c.PointerDown(s, ideaAt)

	s = s.ToggleConnect().ToggleConnect()
	s, out := c.PointerDown(s, planAt)
	if out.Action != ActionConnectPending {
		t.Errorf("press after re-toggle = %v, want ConnectPending", out.Action)
	}
	if c.Map().EdgeCount() != 0 {
		t.Error("stale pending source produced an edge")
	}
}

func TestDeleteNodeCascades(t *testing.T) {
	c, idea, plan := fixture(t)
	third, _ := c.Map().CreateNode(mindmap.Point{X: 400, Y: 300}, "Risks")
	e1, _ := c.Map().CreateEdge(idea, plan)
	e2, _ := c.Map().CreateEdge(plan, third)
	keep, _ := c.Map().CreateEdge(idea, third)

	s := State{}.ToggleDelete()
	s, out := c.PointerDown(s, planAt)
	if out.Action != ActionNodeDeleted || out.Node != plan {
		t.Fatalf("outcome = %+v", out)
	}
	slices.Sort(out.Removed)
	if !slices.Equal(out.Removed, []mindmap.EdgeID{e1, e2}) {
		t.Errorf("Removed = %v, want [%d %d]", out.Removed, e1, e2)
	}
	if _, ok := c.Map().Edge(keep); !ok {
		t.Error("unrelated edge deleted")
	}
	if s.Mode != ModeDelete {
		t.Errorf("mode = %v, want delete", s.Mode)
	}
}

func TestDeleteEdge(t *testing.T) {
	c, idea, plan := fixture(t)
	e, _ := c.Map().CreateEdge(idea, plan)

	s := State{}.ToggleDelete()
	_, out := c.PointerDown(s, midEdge)
	if out.Action != ActionEdgeDeleted || out.Edge != e {
		t.Fatalf("outcome = %+v", out)
	}
	if c.Map().NodeCount() != 2 || c.Map().EdgeCount() != 0 {
		t.Errorf("counts = %d nodes %d edges, want 2, 0", c.Map().NodeCount(), c.Map().EdgeCount())
	}
}

func TestDeleteBlankIsNoop(t *testing.T) {
	c, _, _ := fixture(t)
	_, out := c.PointerDown(State{}.ToggleDelete(), blankAt)
	if out.Action != ActionNone || c.Map().NodeCount() != 2 {
		t.Errorf("outcome = %+v, nodes = %d", out, c.Map().NodeCount())
	}
}

func TestDragMovesNodeAndEdges(t *testing.T) {
	c, idea, plan := fixture(t)
	e, _ := c.Map().CreateEdge(idea, plan)

	// Grab Idea 10 units right of its center.
	s, out := c.PointerDown(State{}, mindmap.Point{X: 110, Y: 100})
	if out.Action != ActionDragStarted || s.Dragging != idea {
		t.Fatalf("press: state %+v outcome %+v", s, out)
	}
	if s.DragOffset != (mindmap.Point{X: 10}) {
		t.Errorf("DragOffset = %v, want {10 0}", s.DragOffset)
	}

	s, out = c.PointerMove(s, mindmap.Point{X: 210, Y: 300})
	if out.Action != ActionNodeMoved || !slices.Equal(out.Refresh, []mindmap.EdgeID{e}) {
		t.Errorf("move outcome = %+v", out)
	}
	n, _ := c.Map().Node(idea)
	if n.Position != (mindmap.Point{X: 200, Y: 300}) {
		t.Errorf("Position = %v, want {200 300}", n.Position)
	}
	a, b, _ := c.Map().Segment(e)
	if a != n.Position || b != planAt {
		t.Errorf("Segment = %v-%v", a, b)
	}

	s, out = c.PointerUp(s, mindmap.Point{X: 210, Y: 300})
	if out.Action != ActionDragEnded || s.IsDragging() {
		t.Errorf("release: state %+v outcome %+v", s, out)
	}

	// Motion after release moves nothing.
	_, out = c.PointerMove(s, mindmap.Point{X: 0, Y: 0})
	if out.Action != ActionNone {
		t.Errorf("move after release = %v", out.Action)
	}
}

func TestDragOnBlankCanvas(t *testing.T) {
	c, _, _ := fixture(t)
	s, out := c.PointerDown(State{}, blankAt)
	if out.Action != ActionNone || s.IsDragging() {
		t.Errorf("state %+v outcome %+v", s, out)
	}
	_, out = c.PointerMove(s, mindmap.Point{X: 1, Y: 1})
	if out.Action != ActionNone {
		t.Errorf("move = %v", out.Action)
	}
}

func TestDragOnlyInNormalMode(t *testing.T) {
	c, idea, _ := fixture(t)
	s, _ := c.PointerDown(State{}, ideaAt)
	s = s.ToggleConnect()

	_, out := c.PointerMove(s, mindmap.Point{X: 500, Y: 500})
	if out.Action != ActionNone {
		t.Errorf("move in connect mode = %v", out.Action)
	}
	if n, _ := c.Map().Node(idea); n.Position != ideaAt {
		t.Errorf("node moved to %v", n.Position)
	}
	s, out = c.PointerUp(s, ideaAt)
	if out.Action != ActionDragEnded || s.IsDragging() {
		t.Errorf("release in connect mode: state %+v outcome %+v", s, out)
	}
}

func TestDragDeletedNode(t *testing.T) {
	c, idea, _ := fixture(t)
	s, _ := c.PointerDown(State{}, ideaAt)
	c.Map().DeleteNode(idea)

	s, out := c.PointerMove(s, blankAt)
	if out.Action != ActionNone || s.IsDragging() {
		t.Errorf("state %+v outcome %+v", s, out)
	}
}

func TestDoubleClick(t *testing.T) {
	tests := []struct {
		name      string
		at        mindmap.Point
		answer    string
		ok        bool
		wantNodes int
		prompted  bool
	}{
		{"blank canvas", blankAt, "Budget", true, 3, true},
		{"cancelled", blankAt, "", false, 2, true},
		{"blank answer", blankAt, "   ", true, 2, true},
		{"over node", ideaAt, "Never", true, 2, false},
		{"over edge", midEdge, "On edge", true, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, idea, plan := fixture(t)
			c.Map().CreateEdge(idea, plan)
			prompted := false
			prompt := PromptFunc(func() (string, bool) {
				prompted = true
				return tt.answer, tt.ok
			})
			for _, mode := range []State{{}, {Mode: ModeConnect}, {Mode: ModeDelete}} {
				_, out := c.DoubleClick(mode, tt.at, prompt)
				if prompted != tt.prompted {
					t.Fatalf("prompted = %v, want %v", prompted, tt.prompted)
				}
				if got := c.Map().NodeCount(); got != tt.wantNodes {
					t.Fatalf("NodeCount = %d, want %d", got, tt.wantNodes)
				}
				if tt.wantNodes == 3 {
					if out.Action != ActionNodeCreated {
						t.Fatalf("action = %v, want NodeCreated", out.Action)
					}
					n, _ := c.Map().Node(out.Node)
					if n.Position != tt.at || n.Label != tt.answer {
						t.Errorf("created %+v", n)
					}
					return
				}
			}
		})
	}
}

func TestPlaceNodeInvalidLabel(t *testing.T) {
	c, _, _ := fixture(t)
	_, out, err := c.PlaceNode(State{}, blankAt, "   ")
	if !errors.Is(err, errors.ErrCodeInvalidLabel) {
		t.Errorf("err = %v, want INVALID_LABEL", err)
	}
	if out.Action != ActionNone || c.Map().NodeCount() != 2 {
		t.Errorf("action = %v, %d nodes", out.Action, c.Map().NodeCount())
	}
}

func TestNewDefaultsTolerance(t *testing.T) {
	if got := New(mindmap.New(), 0).Tolerance(); got != mindmap.DefaultTolerance {
		t.Errorf("Tolerance = %v, want %v", got, mindmap.DefaultTolerance)
	}
}
