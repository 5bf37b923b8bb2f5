// Package mindmap provides the in-memory graph behind a mind-map canvas:
// labeled nodes placed in 2D, undirected edges between them, and spatial
// hit-testing over their current geometry.
//
// # Overview
//
// A [Map] owns every [Node] and [Edge]. Callers hold only ids ([NodeID],
// [EdgeID]) and value copies returned by queries; the map is the single
// source of truth for positions and connectivity.
//
//	m := mindmap.New()
//	idea, _ := m.CreateNode(mindmap.Point{X: 100, Y: 100}, "Idea")
//	plan, _ := m.CreateNode(mindmap.Point{X: 300, Y: 100}, "Plan")
//	m.CreateEdge(idea, plan)
//
// # Identity
//
// Node ids are positive integers assigned from a counter that only grows
// within a session. Deleting a node never frees its id for reuse. [Map.Clear]
// is the one operation that resets the counter. [Map.CreateNodeWithID] lets a
// loader reuse persisted ids; [Map.AdvanceCounter] moves the counter past ids
// that exist outside the map.
//
// Edge ids follow the same rules with their own counter. An edge id is the
// opaque reference a presentation layer uses to delete a connection.
//
// # Invariants
//
//   - Every edge connects two distinct, existing nodes.
//   - At most one edge exists per unordered pair of nodes.
//   - Deleting a node deletes its incident edges ([Map.DeleteNode] returns
//     their ids so visuals can be cleaned up).
//
// Duplicate edges, self-edges, and operations on absent ids are silent
// no-ops rather than errors. Blank labels are the only rejected input.
//
// # Geometry
//
// A node's position is its center. Its [Size] is fixed at creation from the
// label length (see [SizeForLabel]). Edges have no stored geometry: their
// segment always runs between the current centers of their endpoints, so
// moving a node implicitly moves its edges.
//
// [Map.HitTest] resolves a canvas point to the topmost node or edge under
// it, preferring nodes over edges.
//
// # Concurrency
//
// Map instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same map.
package mindmap
