package store

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mapfile"
)

var badgerPrefix = []byte("map/")

// BadgerStore keeps maps as JSON values in an embedded BadgerDB.
type BadgerStore struct {
	db   *badger.DB
	opts mapfile.Options
}

// NewBadgerStore opens the database in dir, creating it if needed. An empty
// dir opens an in-memory database.
func NewBadgerStore(dir string, opts mapfile.Options) (*BadgerStore, error) {
	var bopts badger.Options
	if dir == "" {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "create badger dir %s", dir)
		}
		bopts = badger.DefaultOptions(dir)
	}
	db, err := badger.Open(bopts.WithLogger(nil).WithNumVersionsToKeep(1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "open badger database")
	}
	return &BadgerStore{db: db, opts: opts}, nil
}

func badgerKey(name string) []byte {
	return append(append([]byte{}, badgerPrefix...), name...)
}

func (s *BadgerStore) Save(ctx context.Context, name string, doc *mapfile.Document) error {
	if err := errors.ValidateMapName(name); err != nil {
		return err
	}
	data, err := mapfile.Marshal(doc)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(name), data)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "save map %q", name)
	}
	return nil
}

func (s *BadgerStore) Load(ctx context.Context, name string) (*mapfile.Document, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "load map %q", name)
	}
	return mapfile.Unmarshal(data, s.opts)
}

func (s *BadgerStore) List(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		iopts := badger.DefaultIteratorOptions
		iopts.PrefetchValues = false
		iopts.Prefix = badgerPrefix
		it := txn.NewIterator(iopts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), string(badgerPrefix)))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "list maps")
	}
	return names, nil
}

func (s *BadgerStore) Delete(ctx context.Context, name string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(badgerKey(name)); err != nil {
			return err
		}
		return txn.Delete(badgerKey(name))
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return notFound(name)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "delete map %q", name)
	}
	return nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

var _ Store = (*BadgerStore)(nil)
