// Package pkg holds the core libraries behind MindCraft, a mind-map editor.
//
// # Overview
//
// A mind map is a set of labeled boxes on a 2D canvas joined by undirected
// connections. The libraries split the editor into layers:
//
//	pointer events
//	      ↓
//	 [interact]   (mode state machine: normal, connect, delete, drag)
//	      ↓
//	 [mindmap]    (nodes, connections, hit-testing)
//	      ↓
//	 [mapfile]    (JSON document, restore and reconcile)
//	      ↓
//	 [store]      (file, memory, Redis, MongoDB, Badger)
//
// [render] turns a map into DOT, SVG or an interactive HTML page.
//
// # Quick Start
//
//	m := mindmap.New()
//	idea, _ := m.CreateNode(mindmap.Point{X: 100, Y: 100}, "Idea")
//	plan, _ := m.CreateNode(mindmap.Point{X: 300, Y: 100}, "Plan")
//	m.CreateEdge(idea, plan)
//
//	// Persist and reload
//	_ = mapfile.SaveFile("ideas.json", m)
//	fresh := mindmap.New()
//	res, _ := mapfile.LoadFile("ideas.json", fresh, mapfile.Options{})
//	fmt.Println(fresh.NodeCount(), len(res.Dropped))
//
//	// Drive edits through the controller
//	c := interact.New(m, mindmap.DefaultTolerance)
//	s := interact.State{}.ToggleConnect()
//	s, _ = c.PointerDown(s, mindmap.Point{X: 100, Y: 100})
//
// # Supporting Packages
//
// [cache] stores rendered SVG keyed by the DOT source. [observability]
// exposes hooks for store, render and interaction events. [errors] carries
// the error codes shared by every layer. [buildinfo] holds version data
// set at link time.
//
// [interact]: https://pkg.go.dev/github.com/matzehuels/mindcraft/pkg/interact
// [mindmap]: https://pkg.go.dev/github.com/matzehuels/mindcraft/pkg/mindmap
// [mapfile]: https://pkg.go.dev/github.com/matzehuels/mindcraft/pkg/mapfile
// [store]: https://pkg.go.dev/github.com/matzehuels/mindcraft/pkg/store
// [render]: https://pkg.go.dev/github.com/matzehuels/mindcraft/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/mindcraft/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/mindcraft/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/mindcraft/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/mindcraft/pkg/buildinfo
package pkg
