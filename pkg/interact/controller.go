package interact

import (
	"github.com/matzehuels/mindcraft/pkg/mindmap"
)

// Action names what a handler did to the map or the state.
type Action int

const (
	ActionNone           Action = iota // Nothing changed
	ActionNodeCreated                  // Outcome.Node was created
	ActionNodeDeleted                  // Outcome.Node and Outcome.Removed were deleted
	ActionEdgeCreated                  // Outcome.Edge was created
	ActionEdgeDeleted                  // Outcome.Edge was deleted
	ActionConnectPending               // Outcome.Node became the pending source
	ActionDragStarted                  // Drag session began on Outcome.Node
	ActionNodeMoved                    // Outcome.Node moved; Outcome.Refresh need redrawing
	ActionDragEnded                    // Drag session on Outcome.Node ended
)

// Outcome describes the effect of one event so the presentation layer can
// update visuals without inspecting the map.
type Outcome struct {
	Action Action
	Node   mindmap.NodeID
	Edge   mindmap.EdgeID

	// Removed lists edges deleted by a cascading node delete.
	Removed []mindmap.EdgeID
	// Refresh lists edges whose geometry changed because a node moved.
	Refresh []mindmap.EdgeID
	// Unhighlight is a node whose pending highlight should be cleared.
	Unhighlight mindmap.NodeID
}

// Prompter asks the user for a node label.
// ok is false when the user cancelled.
type Prompter interface {
	PromptLabel() (text string, ok bool)
}

// PromptFunc adapts a function to the Prompter interface.
type PromptFunc func() (string, bool)

// PromptLabel calls f.
func (f PromptFunc) PromptLabel() (string, bool) { return f() }

// Controller translates pointer events into map operations.
// It holds no interaction state of its own; every handler receives the
// current State and returns the next one.
type Controller struct {
	m         *mindmap.Map
	tolerance float64
}

// New creates a controller over m. A non-positive tolerance selects
// mindmap.DefaultTolerance.
func New(m *mindmap.Map, tolerance float64) *Controller {
	if tolerance <= 0 {
		tolerance = mindmap.DefaultTolerance
	}
	return &Controller{m: m, tolerance: tolerance}
}

// Map returns the map the controller mutates.
func (c *Controller) Map() *mindmap.Map { return c.m }

// Tolerance returns the hit-test tolerance in canvas units.
func (c *Controller) Tolerance() float64 { return c.tolerance }

// PointerDown handles a primary button press at p.
func (c *Controller) PointerDown(s State, p mindmap.Point) (State, Outcome) {
	switch s.Mode {
	case ModeDelete:
		return c.deleteAt(s, p)
	case ModeConnect:
		return c.connectAt(s, p)
	default:
		return c.beginDrag(s, p)
	}
}

func (c *Controller) deleteAt(s State, p mindmap.Point) (State, Outcome) {
	hit := c.m.HitTest(p, c.tolerance)
	switch hit.Kind {
	case mindmap.HitNode:
		removed := c.m.DeleteNode(hit.Node)
		return s, Outcome{Action: ActionNodeDeleted, Node: hit.Node, Removed: removed}
	case mindmap.HitEdge:
		c.m.DeleteEdge(hit.Edge)
		return s, Outcome{Action: ActionEdgeDeleted, Edge: hit.Edge}
	default:
		return s, Outcome{}
	}
}

func (c *Controller) connectAt(s State, p mindmap.Point) (State, Outcome) {
	id, ok := c.m.NodeAt(p, c.tolerance)
	if !ok {
		return s, Outcome{}
	}
	if !s.HasPending() {
		s.PendingSource = id
		return s, Outcome{Action: ActionConnectPending, Node: id}
	}
	// A second press on the pending source is absorbed: no self-edge and
	// the source stays selected.
	if id == s.PendingSource {
		return s, Outcome{}
	}
	source := s.PendingSource
	s.PendingSource = mindmap.NoNode
	out := Outcome{Node: id, Unhighlight: source}
	if edge, created := c.m.CreateEdge(source, id); created {
		out.Action = ActionEdgeCreated
		out.Edge = edge
	}
	return s, out
}

func (c *Controller) beginDrag(s State, p mindmap.Point) (State, Outcome) {
	id, ok := c.m.NodeAt(p, c.tolerance)
	if !ok {
		s.Dragging = mindmap.NoNode
		return s, Outcome{}
	}
	n, _ := c.m.Node(id)
	s.Dragging = id
	s.DragOffset = p.Sub(n.Position)
	return s, Outcome{Action: ActionDragStarted, Node: id}
}

// PointerMove handles pointer motion with the primary button held.
// Only a drag session in Normal mode moves anything.
func (c *Controller) PointerMove(s State, p mindmap.Point) (State, Outcome) {
	if s.Mode != ModeNormal || !s.IsDragging() {
		return s, Outcome{}
	}
	if !c.m.MoveNode(s.Dragging, p.Sub(s.DragOffset)) {
		// The node vanished under the drag (e.g. the map was reloaded).
		s.Dragging = mindmap.NoNode
		return s, Outcome{}
	}
	out := Outcome{Action: ActionNodeMoved, Node: s.Dragging}
	for _, e := range c.m.NeighborsOf(s.Dragging) {
		out.Refresh = append(out.Refresh, e.ID)
	}
	return s, out
}

// PointerUp handles a primary button release. It ends any drag session,
// whatever the current mode.
func (c *Controller) PointerUp(s State, p mindmap.Point) (State, Outcome) {
	if !s.IsDragging() {
		return s, Outcome{}
	}
	out := Outcome{Action: ActionDragEnded, Node: s.Dragging}
	s.Dragging = mindmap.NoNode
	s.DragOffset = mindmap.Point{}
	return s, out
}

// CanPlaceAt reports whether a double-click at p would create a node,
// i.e. whether p is over empty canvas (edges do not block placement).
func (c *Controller) CanPlaceAt(p mindmap.Point) bool {
	_, onNode := c.m.NodeAt(p, c.tolerance)
	return !onNode
}

// PlaceNode creates a node labeled text at p. Blank text returns an
// INVALID_LABEL error and creates nothing. Placement over an existing node
// is a no-op.
func (c *Controller) PlaceNode(s State, p mindmap.Point, text string) (State, Outcome, error) {
	if !c.CanPlaceAt(p) {
		return s, Outcome{}, nil
	}
	id, err := c.m.CreateNode(p, text)
	if err != nil {
		return s, Outcome{}, err
	}
	return s, Outcome{Action: ActionNodeCreated, Node: id}, nil
}

// DoubleClick handles a double-click at p in any mode. Over empty canvas it
// asks prompt for a label and creates a node there; a cancelled or blank
// answer creates nothing. Over a node it does nothing and never prompts.
func (c *Controller) DoubleClick(s State, p mindmap.Point, prompt Prompter) (State, Outcome) {
	if !c.CanPlaceAt(p) {
		return s, Outcome{}
	}
	text, ok := prompt.PromptLabel()
	if !ok {
		return s, Outcome{}
	}
	s, out, err := c.PlaceNode(s, p, text)
	if err != nil {
		return s, Outcome{}
	}
	return s, out
}
