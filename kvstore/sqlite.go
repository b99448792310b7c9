package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ruteri/project-nft-registry/interfaces"
	_ "modernc.org/sqlite"
)

var _ interfaces.KVStore = (*SQLiteStore)(nil)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	key   BLOB PRIMARY KEY,
	value BLOB NOT NULL
)`

// SQLiteStore persists state in a single SQLite table.
type SQLiteStore struct {
	sqlDB *sql.DB
	path  string
	log   *slog.Logger
}

// OpenSQLite opens (or creates) a SQLite database file and ensures the schema.
func OpenSQLite(path string, log *slog.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Debug("Opened sqlite store", slog.String("path", cleanPath))

	return &SQLiteStore{
		sqlDB: sqlDB,
		path:  cleanPath,
		log:   log,
	}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select key: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) Has(ctx context.Context, key []byte) (bool, error) {
	var one int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM kv WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select key: %w", err)
	}
	return true, nil
}

// Commit applies changes inside one SQL transaction.
func (s *SQLiteStore) Commit(ctx context.Context, changes []interfaces.KVChange) (err error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, c := range changes {
		if c.Delete {
			if _, err = tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, c.Key); err != nil {
				return fmt.Errorf("delete key: %w", err)
			}
			continue
		}
		value := c.Value
		if value == nil {
			value = []byte{}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO kv (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			c.Key, value)
		if err != nil {
			return fmt.Errorf("upsert key: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Name() string {
	return fmt.Sprintf("sqlite-%s", filepath.Base(s.path))
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
