package mapfile

import (
	"strings"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mindmap"
)

// Document is the persisted form of a mind map.
// The bson tags let document stores keep the same shape as the JSON file.
type Document struct {
	Nodes       []NodeRecord `json:"nodes" bson:"nodes"`
	Connections []Connection `json:"connections" bson:"connections"`
}

// NodeRecord is one persisted node.
type NodeRecord struct {
	ID   int     `json:"id" bson:"id"`
	X    float64 `json:"x" bson:"x"`
	Y    float64 `json:"y" bson:"y"`
	Text string  `json:"text" bson:"text"`
}

// Position returns the record's center as a canvas point.
func (r NodeRecord) Position() mindmap.Point {
	return mindmap.Point{X: r.X, Y: r.Y}
}

// Connection is one persisted edge, by persisted node id.
type Connection struct {
	From int `json:"from" bson:"from"`
	To   int `json:"to" bson:"to"`
}

// FromMap snapshots m: nodes in ascending id order, connections in edge
// creation order, labels and coordinates verbatim. Empty maps produce
// empty (not null) arrays.
func FromMap(m *mindmap.Map) *Document {
	nodes := m.Nodes()
	edges := m.Edges()
	doc := &Document{
		Nodes:       make([]NodeRecord, len(nodes)),
		Connections: make([]Connection, len(edges)),
	}
	for i, n := range nodes {
		doc.Nodes[i] = NodeRecord{
			ID:   int(n.ID),
			X:    n.Position.X,
			Y:    n.Position.Y,
			Text: n.Label,
		}
	}
	for i, e := range edges {
		doc.Connections[i] = Connection{From: int(e.A), To: int(e.B)}
	}
	return doc
}

// Validate checks the constraints that a typed Document can violate:
// every node needs a non-blank label. Connections are not checked against
// nodes; unresolved ones are dropped on restore.
func (d *Document) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeMalformedDocument, "document is null")
	}
	for i, n := range d.Nodes {
		if strings.TrimSpace(n.Text) == "" {
			return errors.New(errors.ErrCodeMalformedDocument,
				"node %d (index %d) has a blank text", n.ID, i)
		}
	}
	return nil
}

// MaxID returns the largest persisted node id, or 0 for an empty document.
func (d *Document) MaxID() int {
	maxID := 0
	for _, n := range d.Nodes {
		maxID = max(maxID, n.ID)
	}
	return maxID
}
