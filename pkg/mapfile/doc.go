// Package mapfile provides JSON persistence for mind maps.
//
// # JSON Format
//
// A document has two top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": 1, "x": 100, "y": 100, "text": "Idea"},
//	    {"id": 2, "x": 300, "y": 100, "text": "Plan"}
//	  ],
//	  "connections": [
//	    {"from": 1, "to": 2}
//	  ]
//	}
//
// Node fields:
//   - id: required integer; connections refer to nodes by it
//   - x, y: node center; a missing coordinate falls back to the center of
//     the configured canvas (see [Options])
//   - text: required, non-blank label
//
// A missing "nodes" or "connections" array reads as empty. Anything else that
// does not fit the shape above is a MALFORMED_DOCUMENT error; unreadable or
// unwritable files are IO_FAILURE errors. Both codes come from
// [github.com/matzehuels/mindcraft/pkg/errors].
//
// # Save
//
// [FromMap] snapshots a map in id order; [Marshal], [Encode] and [WriteFile]
// serialize it with two-space indentation. Saving never touches the map.
//
// # Load
//
// [Restore] validates a [Document] and then replaces a map's contents with it.
// A document that fails validation leaves the map exactly as it was.
//
// Two strategies link persisted connections to the recreated nodes:
//
//   - [PreserveIDs] (default) recreates each node under its persisted id, so
//     connections translate one-to-one. Duplicate ids get fresh ones.
//   - [MatchLabels] creates nodes with fresh ids and then [Reconcile]s each
//     persisted record to the closest unclaimed live node with the same label.
//
// Connections whose endpoints cannot be resolved are dropped and reported in
// [Result.Dropped]. Duplicate and self connections are ignored by the map.
//
//	m := mindmap.New()
//	res, err := mapfile.LoadFile("ideas.json", m, mapfile.Options{})
//	if err != nil {
//	    return err
//	}
//	log.Printf("%d nodes, %d dropped connections", m.NodeCount(), len(res.Dropped))
package mapfile
