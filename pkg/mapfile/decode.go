package mapfile

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/mindcraft/pkg/errors"
)

// rawDocument mirrors Document with pointer fields so that missing keys can
// be told apart from zero values.
type rawDocument struct {
	Nodes       []rawNode       `json:"nodes"`
	Connections []rawConnection `json:"connections"`
}

type rawNode struct {
	ID   *int     `json:"id"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	Text *string  `json:"text"`
}

type rawConnection struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// Unmarshal parses and validates a JSON document.
//
// Missing coordinates are replaced by the center of opts.Canvas. Unmarshal
// returns a MALFORMED_DOCUMENT error if the data is not a JSON object, if a
// node lacks an id or has a missing or blank text, or if a connection lacks
// an endpoint.
func Unmarshal(data []byte, opts Options) (*Document, error) {
	var raw *rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "parse document")
	}
	if raw == nil {
		return nil, errors.New(errors.ErrCodeMalformedDocument, "document is null")
	}

	center := opts.fallback()
	doc := &Document{
		Nodes:       make([]NodeRecord, 0, len(raw.Nodes)),
		Connections: make([]Connection, 0, len(raw.Connections)),
	}
	for i, n := range raw.Nodes {
		if n.ID == nil {
			return nil, errors.New(errors.ErrCodeMalformedDocument, "node at index %d has no id", i)
		}
		if n.Text == nil {
			return nil, errors.New(errors.ErrCodeMalformedDocument, "node %d has no text", *n.ID)
		}
		rec := NodeRecord{ID: *n.ID, X: center.X, Y: center.Y, Text: *n.Text}
		if n.X != nil {
			rec.X = *n.X
		}
		if n.Y != nil {
			rec.Y = *n.Y
		}
		doc.Nodes = append(doc.Nodes, rec)
	}
	for i, c := range raw.Connections {
		if c.From == nil || c.To == nil {
			return nil, errors.New(errors.ErrCodeMalformedDocument, "connection at index %d is missing an endpoint", i)
		}
		doc.Connections = append(doc.Connections, Connection{From: *c.From, To: *c.To})
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode reads all of r and parses it with [Unmarshal].
// A read failure is an IO_FAILURE error. Decode does not close r.
func Decode(r io.Reader, opts Options) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "read document")
	}
	return Unmarshal(data, opts)
}

// ReadFile reads and parses the document at path.
func ReadFile(path string, opts Options) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "read %s", path)
	}
	doc, err := Unmarshal(data, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "load %s", path)
	}
	return doc, nil
}
