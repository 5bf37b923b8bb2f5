package store

import (
	"context"
	"time"

	"github.com/matzehuels/mindcraft/pkg/mapfile"
	"github.com/matzehuels/mindcraft/pkg/observability"
)

// instrumented reports every call to the registered StoreHooks.
type instrumented struct {
	Store
	backend string
}

// Instrument wraps s so that reads, writes and deletes are reported to
// observability.Store() under the given backend name.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

// Unwrap returns the backend beneath an instrumented store, or s itself.
func Unwrap(s Store) Store {
	if in, ok := s.(*instrumented); ok {
		return in.Store
	}
	return s
}

func (s *instrumented) Save(ctx context.Context, name string, doc *mapfile.Document) error {
	start := time.Now()
	err := s.Store.Save(ctx, name, doc)
	size := 0
	if doc != nil {
		size = len(doc.Nodes) + len(doc.Connections)
	}
	observability.Store().OnWrite(ctx, s.backend, name, size, time.Since(start), err)
	return err
}

func (s *instrumented) Load(ctx context.Context, name string) (*mapfile.Document, error) {
	start := time.Now()
	doc, err := s.Store.Load(ctx, name)
	observability.Store().OnRead(ctx, s.backend, name, time.Since(start), err)
	return doc, err
}

func (s *instrumented) Delete(ctx context.Context, name string) error {
	err := s.Store.Delete(ctx, name)
	observability.Store().OnDelete(ctx, s.backend, name, err)
	return err
}
