package kvstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/pebble"
	"github.com/ruteri/project-nft-registry/interfaces"
)

var _ interfaces.KVStore = (*PebbleStore)(nil)

// PebbleStore persists state in a Pebble LSM database.
type PebbleStore struct {
	db   *pebble.DB
	path string
	log  *slog.Logger
}

// OpenPebble opens (or creates) a Pebble database at path.
func OpenPebble(path string, log *slog.Logger) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database: %w", err)
	}

	log.Debug("Opened pebble store", slog.String("path", path))

	return &PebbleStore{
		db:   db,
		path: path,
		log:  log,
	}, nil
}

func (s *PebbleStore) Get(_ context.Context, key []byte) ([]byte, error) {
	v, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, interfaces.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return bytes.Clone(v), nil
}

func (s *PebbleStore) Has(ctx context.Context, key []byte) (bool, error) {
	_, err := s.Get(ctx, key)
	if errors.Is(err, interfaces.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Commit applies changes as one synced batch.
func (s *PebbleStore) Commit(ctx context.Context, changes []interfaces.KVChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	for _, c := range changes {
		var err error
		if c.Delete {
			err = batch.Delete(c.Key, nil)
		} else {
			err = batch.Set(c.Key, c.Value, nil)
		}
		if err != nil {
			return fmt.Errorf("failed to stage change: %w", err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit pebble batch: %w", err)
	}
	return nil
}

func (s *PebbleStore) Name() string {
	return fmt.Sprintf("pebble-%s", s.path)
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}
