// Package store persists mind-map documents under names in pluggable
// backends.
//
// # Backends
//
// [Open] selects a backend from a URI:
//
//	/path/to/maps, file:///path/to/maps   one JSON file per map (FileStore)
//	mem://                                process-local (MemoryStore)
//	redis://[:password@]host:port/db      JSON values in Redis (RedisStore)
//	mongodb://host:port/database          one BSON document per map (MongoStore)
//	badger:///path/to/db, badger://       embedded BadgerDB, on disk or in memory
//
// Every backend returned by Open reports reads, writes and deletes through
// [github.com/matzehuels/mindcraft/pkg/observability].
//
// # Names
//
// Map names are validated with errors.ValidateMapName so that they are safe
// as file names and keys in every backend.
//
// # Errors
//
// A missing map is a NOT_FOUND error. Backend failures are IO_FAILURE
// errors. Documents that fail to decode are MALFORMED_DOCUMENT errors.
package store

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mapfile"
)

// Store persists documents by name.
type Store interface {
	// Save creates or replaces the named document.
	Save(ctx context.Context, name string, doc *mapfile.Document) error

	// Load returns the named document.
	Load(ctx context.Context, name string) (*mapfile.Document, error)

	// List returns all stored names in ascending order.
	List(ctx context.Context) ([]string, error)

	// Delete removes the named document.
	Delete(ctx context.Context, name string) error

	// Close releases connections and file handles.
	Close() error
}

// Backend names used in URIs and hook events.
const (
	BackendFile   = "file"
	BackendMemory = "mem"
	BackendRedis  = "redis"
	BackendMongo  = "mongodb"
	BackendBadger = "badger"
)

// Open connects to the store identified by uri. opts control how JSON
// documents with missing coordinates are decoded.
func Open(ctx context.Context, uri string, opts mapfile.Options) (Store, error) {
	backend, target, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	var s Store
	switch backend {
	case BackendFile:
		s, err = NewFileStore(target, opts)
	case BackendMemory:
		s = NewMemoryStore()
	case BackendRedis:
		s, err = NewRedisStore(ctx, target, opts)
	case BackendMongo:
		s, err = NewMongoStore(ctx, target)
	case BackendBadger:
		s, err = NewBadgerStore(target, opts)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(s, backend), nil
}

// ParseURI splits a store URI into its backend name and the target the
// backend is opened with: a directory for file and badger stores (empty for
// in-memory badger) and the full URI for network stores.
func ParseURI(uri string) (backend, target string, err error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", "", errors.New(errors.ErrCodeInvalidInput, "store URI is empty")
	}

	scheme, rest, found := strings.Cut(uri, "://")
	if !found {
		return BackendFile, filepath.Clean(uri), nil
	}

	switch scheme {
	case "file":
		if rest == "" {
			return "", "", errors.New(errors.ErrCodeInvalidInput, "file store URI %q has no path", uri)
		}
		return BackendFile, filepath.Clean(rest), nil
	case "mem", "memory":
		return BackendMemory, "", nil
	case "redis", "rediss":
		return BackendRedis, uri, nil
	case "mongodb", "mongodb+srv":
		return BackendMongo, uri, nil
	case "badger":
		if rest == "" {
			return BackendBadger, "", nil
		}
		return BackendBadger, filepath.Clean(rest), nil
	default:
		return "", "", errors.New(errors.ErrCodeUnsupported, "unsupported store scheme %q", scheme)
	}
}

// mongoDatabase returns the database named in a MongoDB URI path, or
// "mindcraft" when none is given.
func mongoDatabase(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "parse mongodb URI")
	}
	if db := strings.Trim(u.Path, "/"); db != "" {
		return db, nil
	}
	return "mindcraft", nil
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeNotFound, "map %q not found", name)
}
