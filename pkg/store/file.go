package store

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mapfile"
)

// FileStore keeps each map as <dir>/<name>.json in the mapfile format.
type FileStore struct {
	mu   sync.RWMutex
	dir  string
	opts mapfile.Options
}

// DefaultDir returns the default map directory,
// $XDG_DATA_HOME/mindcraft/maps or ~/.local/share/mindcraft/maps.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "mindcraft", "maps"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIOFailure, err, "get home dir")
	}
	return filepath.Join(home, ".local", "share", "mindcraft", "maps"), nil
}

// NewFileStore creates a store rooted at dir, creating the directory if
// needed.
func NewFileStore(dir string, opts mapfile.Options) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "create map dir %s", dir)
	}
	return &FileStore{dir: dir, opts: opts}, nil
}

// Path returns the file that holds the named map.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Save(ctx context.Context, name string, doc *mapfile.Document) error {
	if err := errors.ValidateMapName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return mapfile.WriteFile(s.Path(name), doc)
}

func (s *FileStore) Load(ctx context.Context, name string) (*mapfile.Document, error) {
	if err := errors.ValidateMapName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, notFound(name)
	}
	return mapfile.ReadFile(path, s.opts)
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "read map dir")
	}
	var names []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok || strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateMapName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(name)); err != nil {
		if os.IsNotExist(err) {
			return notFound(name)
		}
		return errors.Wrap(errors.ErrCodeIOFailure, err, "remove map %q", name)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
