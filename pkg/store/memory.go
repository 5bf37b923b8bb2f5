package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mapfile"
)

// MemoryStore keeps documents in process memory. Stored documents are
// copied on the way in and out, so callers never share slices with it.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*mapfile.Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*mapfile.Document)}
}

func (s *MemoryStore) Save(ctx context.Context, name string, doc *mapfile.Document) error {
	if err := errors.ValidateMapName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = cloneDocument(doc)
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, name string) (*mapfile.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[name]
	if !ok {
		return nil, notFound(name)
	}
	return cloneDocument(doc), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.docs)), nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[name]; !ok {
		return notFound(name)
	}
	delete(s.docs, name)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func cloneDocument(doc *mapfile.Document) *mapfile.Document {
	return &mapfile.Document{
		Nodes:       append([]mapfile.NodeRecord{}, doc.Nodes...),
		Connections: append([]mapfile.Connection{}, doc.Connections...),
	}
}

var _ Store = (*MemoryStore)(nil)
