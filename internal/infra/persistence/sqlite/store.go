// Package sqlite persists the reference collections to an embedded SQLite
// file by snapshotting the in-memory state after every committed transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"loanlocator/internal/infra/persistence/memory"
	"loanlocator/pkg/domain"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ domain.ReferenceStore = (*Store)(nil)

const defaultPath = "loanlocator.db"

var sqliteBuckets = []domain.EntityType{domain.EntityLoan, domain.EntityRange}

// Store persists the in-memory state to a single SQLite table as JSON blobs,
// one row per collection.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the SQLite file at path and hydrates the
// in-memory state from any existing snapshot.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS state (
			bucket TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var snapshot memory.Snapshot
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if len(payload) == 0 {
			continue
		}
		switch domain.EntityType(bucket) {
		case domain.EntityLoan:
			err = json.Unmarshal(payload, &snapshot.Loans)
		case domain.EntityRange:
			err = json.Unmarshal(payload, &snapshot.Ranges)
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	s.ImportState(snapshot)
	return nil
}

// persist requires s.mu to be held.
func (s *Store) persist(ctx context.Context) (retErr error) {
	snapshot := s.ExportState()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range sqliteBuckets {
		var data []byte
		switch bucket {
		case domain.EntityLoan:
			data, err = json.Marshal(snapshot.Loans)
		case domain.EntityRange:
			data, err = json.Marshal(snapshot.Ranges)
		}
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, string(bucket), data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RunInTransaction applies fn to the in-memory state, then snapshots state to
// SQLite if fn succeeded. When the snapshot cannot be written the in-memory
// state is rolled back.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prior := s.ExportState()
	if err := s.Store.RunInTransaction(ctx, fn); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		s.ImportState(prior)
		return err
	}
	return nil
}

// Ping probes the metadata table.
func (s *Store) Ping(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM metadata LIMIT 1`)
	if err != nil {
		return fmt.Errorf("probe metadata: %w", err)
	}
	return rows.Close()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
