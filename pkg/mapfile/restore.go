package mapfile

import (
	"math"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mindmap"
)

// Strategy selects how persisted node ids are linked to recreated nodes.
type Strategy int

const (
	// PreserveIDs recreates nodes under their persisted ids.
	PreserveIDs Strategy = iota
	// MatchLabels assigns fresh ids and links records by label and position.
	MatchLabels
)

// String returns the config spelling of the strategy.
func (s Strategy) String() string {
	if s == MatchLabels {
		return "labels"
	}
	return "ids"
}

// ParseStrategy parses "ids" or "labels".
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "ids":
		return PreserveIDs, nil
	case "labels":
		return MatchLabels, nil
	default:
		return PreserveIDs, errors.New(errors.ErrCodeInvalidInput, "unknown reconcile strategy %q (want ids or labels)", s)
	}
}

// DefaultCanvas is the canvas assumed when Options.Canvas is zero.
var DefaultCanvas = mindmap.Size{Width: 1100, Height: 700}

// Options control decoding and restoring.
// The zero value uses PreserveIDs and DefaultCanvas.
type Options struct {
	Strategy Strategy
	// Canvas is the drawing area; its center replaces missing coordinates.
	Canvas mindmap.Size
}

func (o Options) fallback() mindmap.Point {
	c := o.Canvas
	if c.Width <= 0 || c.Height <= 0 {
		c = DefaultCanvas
	}
	return mindmap.Point{X: c.Width / 2, Y: c.Height / 2}
}

// Result reports how a document was restored.
type Result struct {
	// IDMap translates persisted node ids to live ids.
	IDMap map[int]mindmap.NodeID
	// Dropped lists connections with an endpoint that did not resolve.
	Dropped []Connection
}

// Restore replaces the contents of m with doc.
//
// doc is validated first; on failure m is left untouched. Otherwise m is
// cleared, every node record is recreated, the id counter ends up at or
// past the largest persisted id, and each connection is translated through the
// id map and recreated. Connections that name unknown ids are skipped and
// reported in the result. When a persisted id appears more than once, the
// first record owns it. Records whose id is zero or negative get fresh live
// ids but still resolve connections that name them.
func Restore(m *mindmap.Map, doc *Document, opts Options) (*Result, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	m.Clear()
	if opts.Strategy == PreserveIDs {
		// Fresh ids for duplicates must not steal ids of later records.
		m.AdvanceCounter(mindmap.NodeID(doc.MaxID()))
	}
	res := &Result{IDMap: make(map[int]mindmap.NodeID, len(doc.Nodes))}
	for _, rec := range doc.Nodes {
		want := mindmap.NoNode
		if opts.Strategy == PreserveIDs {
			want = mindmap.NodeID(rec.ID)
		}
		live, err := m.CreateNodeWithID(want, rec.Position(), rec.Text)
		if err != nil {
			// Validate rejects blank labels, so this is unreachable for
			// documents that passed it.
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "restore node %d", rec.ID)
		}
		if opts.Strategy == PreserveIDs {
			if _, seen := res.IDMap[rec.ID]; !seen {
				res.IDMap[rec.ID] = live
			}
		}
	}
	m.AdvanceCounter(mindmap.NodeID(doc.MaxID()))

	if opts.Strategy == MatchLabels {
		res.IDMap = Reconcile(m, doc.Nodes)
	}

	for _, c := range doc.Connections {
		from, okFrom := res.IDMap[c.From]
		to, okTo := res.IDMap[c.To]
		if !okFrom || !okTo {
			res.Dropped = append(res.Dropped, c)
			continue
		}
		m.CreateEdge(from, to)
	}
	return res, nil
}

// Reconcile links persisted records to live nodes of m.
//
// Records are processed in order. Each claims the not yet claimed live node
// whose label equals the record text and whose center is nearest to the
// record position; on equal distance the node with the lower id wins. A
// record with no candidate stays unmapped. When a persisted id repeats, the
// first record that found a node owns it.
func Reconcile(m *mindmap.Map, records []NodeRecord) map[int]mindmap.NodeID {
	nodes := m.Nodes()
	claimed := make(map[mindmap.NodeID]bool, len(nodes))
	out := make(map[int]mindmap.NodeID, len(records))

	for _, rec := range records {
		label, err := errors.ValidateLabel(rec.Text)
		if err != nil {
			continue
		}
		best, bestDist := mindmap.NoNode, math.Inf(1)
		for _, n := range nodes {
			if claimed[n.ID] || n.Label != label {
				continue
			}
			if d := n.Position.DistSq(rec.Position()); d < bestDist {
				best, bestDist = n.ID, d
			}
		}
		if best == mindmap.NoNode {
			continue
		}
		claimed[best] = true
		if _, seen := out[rec.ID]; !seen {
			out[rec.ID] = best
		}
	}
	return out
}

// LoadFile reads the document at path and restores it into m.
// If reading or validation fails, m is left untouched.
func LoadFile(path string, m *mindmap.Map, opts Options) (*Result, error) {
	doc, err := ReadFile(path, opts)
	if err != nil {
		return nil, err
	}
	return Restore(m, doc, opts)
}

// SaveFile snapshots m and writes it to path.
func SaveFile(path string, m *mindmap.Map) error {
	return WriteFile(path, FromMap(m))
}
