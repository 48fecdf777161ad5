// Package badger is a persistent layout registry backed by BadgerDB.
//
// Each layout is one key, "l:<name>", holding a CBOR record. The descriptor
// is embedded in its deterministic CBOR wire form (see schema.MarshalBinary)
// so records stay readable when the in-memory descriptor types change.
package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/marmos91/binlayout/internal/logger"
	"github.com/marmos91/binlayout/pkg/registry"
	"github.com/marmos91/binlayout/pkg/schema"
)

const prefixLayout = "l:"

func keyLayout(name string) []byte {
	return []byte(prefixLayout + name)
}

// Config configures the store.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string `mapstructure:"path"`

	// InMemory keeps the database in memory only.
	InMemory bool `mapstructure:"in_memory"`

	// SyncWrites fsyncs every write before returning.
	SyncWrites bool `mapstructure:"sync_writes"`
}

// Store is a BadgerDB-backed registry.Store.
type Store struct {
	db  *badgerdb.DB
	now func() time.Time
}

// Open opens or creates the database described by cfg.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Path == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger registry requires a path")
	}

	opts := badgerdb.DefaultOptions(cfg.Path).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(badgerLogger{})
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger registry: %w", err)
	}

	logger.Debug("badger registry opened", logger.Store("badger"), logger.File(cfg.Path))
	return &Store{db: db, now: time.Now}, nil
}

// record is the persisted form of a layout.
type record struct {
	ID          []byte          `cbor:"1,keyasint"`
	Name        string          `cbor:"2,keyasint"`
	Description string          `cbor:"3,keyasint,omitempty"`
	Descriptor  cbor.RawMessage `cbor:"4,keyasint"`
	CreatedAt   int64           `cbor:"5,keyasint"`
	UpdatedAt   int64           `cbor:"6,keyasint"`
}

func encodeLayout(l *registry.Layout) ([]byte, error) {
	desc, err := schema.MarshalBinary(l.Descriptor)
	if err != nil {
		return nil, err
	}
	id, _ := l.ID.MarshalBinary()
	return cbor.Marshal(record{
		ID:          id,
		Name:        l.Name,
		Description: l.Description,
		Descriptor:  desc,
		CreatedAt:   l.CreatedAt.UnixNano(),
		UpdatedAt:   l.UpdatedAt.UnixNano(),
	})
}

func decodeLayout(data []byte) (*registry.Layout, error) {
	var r record
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode layout record: %w", err)
	}
	id, err := uuid.FromBytes(r.ID)
	if err != nil {
		return nil, fmt.Errorf("layout %s: bad id: %w", r.Name, err)
	}
	d, err := schema.UnmarshalBinary(r.Descriptor)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", r.Name, err)
	}
	return &registry.Layout{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Descriptor:  d,
		CreatedAt:   time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt:   time.Unix(0, r.UpdatedAt).UTC(),
	}, nil
}

func getLayout(txn *badgerdb.Txn, name string) (*registry.Layout, error) {
	item, err := txn.Get(keyLayout(name))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, registry.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var l *registry.Layout
	err = item.Value(func(val []byte) error {
		var decErr error
		l, decErr = decodeLayout(val)
		return decErr
	})
	return l, err
}

func (s *Store) Put(ctx context.Context, l *registry.Layout) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l == nil {
		return registry.Prepare(nil, nil, s.now())
	}
	if err := registry.ValidateName(l.Name); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		prev, err := getLayout(txn, l.Name)
		if err != nil && !errors.Is(err, registry.ErrNotFound) {
			return err
		}
		if err := registry.Prepare(l, prev, s.now()); err != nil {
			return err
		}

		data, err := encodeLayout(l)
		if err != nil {
			return err
		}
		return txn.Set(keyLayout(l.Name), data)
	})
}

func (s *Store) Get(ctx context.Context, name string) (*registry.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var l *registry.Layout
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		l, err = getLayout(txn, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// List iterates the layout prefix. Badger keys are sorted bytewise, so the
// result is already ordered by name.
func (s *Store) List(ctx context.Context) ([]*registry.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*registry.Layout
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(prefixLayout)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				l, err := decodeLayout(val)
				if err != nil {
					return err
				}
				out = append(out, l)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*registry.Layout{}
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		if _, err := txn.Get(keyLayout(name)); err != nil {
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				return registry.ErrNotFound
			}
			return err
		}
		return txn.Delete(keyLayout(name))
	})
}

// Healthcheck verifies the database can serve a read transaction.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.View(func(*badgerdb.Txn) error { return nil }); err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's internal logging through the package logger.
// Badger is chatty at info level, so info and debug both map to debug.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logger.Error(fmt.Sprintf(format, args...), logger.Store("badger"))
}

func (badgerLogger) Warningf(format string, args ...any) {
	logger.Warn(fmt.Sprintf(format, args...), logger.Store("badger"))
}

func (badgerLogger) Infof(format string, args ...any) {
	logger.Debug(fmt.Sprintf(format, args...), logger.Store("badger"))
}

func (badgerLogger) Debugf(format string, args ...any) {
	logger.Debug(fmt.Sprintf(format, args...), logger.Store("badger"))
}
