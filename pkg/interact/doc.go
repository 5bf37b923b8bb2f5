// Package interact maps pointer and keyboard events on a mind-map canvas to
// [mindmap.Map] operations.
//
// The package is presentation-agnostic. A terminal UI, a browser bridge, or
// a test feeds events into a [Controller] together with the current [State]
// and receives the next State plus an [Outcome] describing what changed.
//
//	c := interact.New(m, mindmap.DefaultTolerance)
//	var s interact.State
//	s = s.ToggleConnect()
//	s, _ = c.PointerDown(s, ideaCenter) // pending source
//	s, out := c.PointerDown(s, planCenter)
//	// out.Action == interact.ActionEdgeCreated
//
// Three modes decide what a press does. Normal starts a drag, Connect picks
// two endpoints, Delete removes whatever is under the pointer. Connect and
// Delete are mutually exclusive; toggling either one on turns the other off.
// Double-click creates a node in every mode.
package interact
