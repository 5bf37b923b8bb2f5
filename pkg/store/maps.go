package store

import (
	"context"
	"time"

	"github.com/matzehuels/mindcraft/pkg/mapfile"
	"github.com/matzehuels/mindcraft/pkg/mindmap"
	"github.com/matzehuels/mindcraft/pkg/observability"
)

// SaveMap snapshots m and saves it under name.
func SaveMap(ctx context.Context, s Store, name string, m *mindmap.Map) error {
	return SaveDocument(ctx, s, name, mapfile.FromMap(m))
}

// SaveDocument saves a snapshot taken earlier with mapfile.FromMap. Callers
// that must not touch the live map off its owning goroutine snapshot first
// and save here.
func SaveDocument(ctx context.Context, s Store, name string, doc *mapfile.Document) error {
	start := time.Now()
	err := s.Save(ctx, name, doc)
	observability.Persistence().OnSave(ctx, name, len(doc.Nodes), len(doc.Connections), time.Since(start), err)
	return err
}

// LoadMap loads the named document and restores it into m.
// On any failure m is left untouched.
func LoadMap(ctx context.Context, s Store, name string, m *mindmap.Map, opts mapfile.Options) (*mapfile.Result, error) {
	start := time.Now()
	doc, err := s.Load(ctx, name)
	var res *mapfile.Result
	if err == nil {
		res, err = mapfile.Restore(m, doc, opts)
	}
	dropped := 0
	if res != nil {
		dropped = len(res.Dropped)
	}
	observability.Persistence().OnLoad(ctx, name, m.NodeCount(), m.EdgeCount(), dropped, time.Since(start), err)
	return res, err
}

// Copy copies the named map from src to dst.
func Copy(ctx context.Context, src, dst Store, name string) error {
	doc, err := src.Load(ctx, name)
	if err != nil {
		return err
	}
	return dst.Save(ctx, name, doc)
}
