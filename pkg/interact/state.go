package interact

import "github.com/matzehuels/mindcraft/pkg/mindmap"

// Mode selects what a pointer press does.
type Mode int

const (
	// ModeNormal presses start drag sessions.
	ModeNormal Mode = iota
	// ModeConnect presses pick the two endpoints of a new edge.
	ModeConnect
	// ModeDelete presses delete the node or edge under the pointer.
	ModeDelete
)

// String returns the mode's display name.
func (m Mode) String() string {
	switch m {
	case ModeConnect:
		return "connect"
	case ModeDelete:
		return "delete"
	default:
		return "normal"
	}
}

// State is the transient interaction state of one canvas.
// It is a plain value: handlers take a State and return the next one.
// The zero value is Normal mode with no drag session and no pending source.
type State struct {
	Mode Mode

	// Dragging is the node being dragged, or mindmap.NoNode.
	Dragging mindmap.NodeID
	// DragOffset is pointer minus node center at the start of the drag.
	DragOffset mindmap.Point

	// PendingSource is the first endpoint picked in Connect mode, or mindmap.NoNode.
	PendingSource mindmap.NodeID
}

// IsDragging reports whether a drag session is active.
func (s State) IsDragging() bool { return s.Dragging != mindmap.NoNode }

// HasPending reports whether Connect mode is waiting for a second node.
func (s State) HasPending() bool { return s.PendingSource != mindmap.NoNode }

// ToggleConnect switches Connect mode on (leaving Delete mode) or back to
// Normal. Either way the pending connection source is reset. An active drag
// session is left alone; it ends on the next pointer release.
func (s State) ToggleConnect() State {
	if s.Mode == ModeConnect {
		s.Mode = ModeNormal
	} else {
		s.Mode = ModeConnect
	}
	s.PendingSource = mindmap.NoNode
	return s
}

// ToggleDelete switches Delete mode on (leaving Connect mode) or back to
// Normal, resetting the pending connection source.
func (s State) ToggleDelete() State {
	if s.Mode == ModeDelete {
		s.Mode = ModeNormal
	} else {
		s.Mode = ModeDelete
	}
	s.PendingSource = mindmap.NoNode
	return s
}

// Reset keeps the mode but drops the drag session and pending source.
// Use it after the underlying map is replaced (load, clear).
func (s State) Reset() State {
	return State{Mode: s.Mode}
}
