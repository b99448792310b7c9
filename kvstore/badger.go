package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/ruteri/project-nft-registry/interfaces"
)

var _ interfaces.KVStore = (*BadgerStore)(nil)

const (
	badgerGCInterval = 5 * time.Minute
	badgerGCLSMSize  = 1024 * 1024 * 8
	badgerGCVLogSize = 1024 * 1024 * 32
	badgerGCDiscard  = 0.5
)

// BadgerStore persists state in a Badger database. A background loop runs
// value log GC once the database grows past a few megabytes.
type BadgerStore struct {
	db   *badger.DB
	path string
	log  *slog.Logger
	done chan struct{}
}

// OpenBadger opens (or creates) a Badger database at path. An empty path
// opens an in-memory database.
func OpenBadger(path string, log *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{log: log})
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	bs := &BadgerStore{
		db:   db,
		path: path,
		log:  log,
		done: make(chan struct{}),
	}
	if path != "" {
		go bs.gcLoop()
	}
	return bs, nil
}

func (bs *BadgerStore) gcLoop() {
	ticker := time.NewTicker(badgerGCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-bs.done:
			return
		case <-ticker.C:
		}

		lsm, vlog := bs.db.Size()
		bs.log.Debug("Badger size", slog.Int64("lsm", lsm), slog.Int64("vlog", vlog))
		if lsm > badgerGCLSMSize || vlog > badgerGCVLogSize {
			err := bs.db.RunValueLogGC(badgerGCDiscard)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				bs.log.Warn("Badger value log GC failed", "err", err)
			}
		}
	}
}

func (bs *BadgerStore) Get(_ context.Context, key []byte) ([]byte, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, interfaces.ErrKeyNotFound
	} else if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (bs *BadgerStore) Has(ctx context.Context, key []byte) (bool, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// Commit applies changes in a single read-write transaction.
func (bs *BadgerStore) Commit(ctx context.Context, changes []interfaces.KVChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return bs.db.Update(func(txn *badger.Txn) error {
		for _, c := range changes {
			var err error
			if c.Delete {
				err = txn.Delete(c.Key)
			} else {
				err = txn.Set(c.Key, c.Value)
			}
			if err != nil {
				return fmt.Errorf("failed to stage change: %w", err)
			}
		}
		return nil
	})
}

func (bs *BadgerStore) Name() string {
	if bs.path == "" {
		return "badger-memory"
	}
	return fmt.Sprintf("badger-%s", bs.path)
}

func (bs *BadgerStore) Close() error {
	close(bs.done)
	return bs.db.Close()
}

// badgerLogger forwards badger's printf-style logging to slog.
type badgerLogger struct {
	log *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}
