// Package sqlite implements the durable key-value persistence layer for
// notesync on top of SQLite. Each key holds one opaque string blob; the sync
// core stores whole JSON collections under a handful of keys.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

// DatabaseFile is the SQLite file name created inside the data directory.
const DatabaseFile = "notesync.db"

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
	ErrEmptyKey        = errors.New("key must not be empty")
)

// Compile-time interface check.
var _ types.KVStore = (*Backend)(nil)

// Backend implements types.KVStore using a single SQLite table.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	dataDir  string
	db       *sql.DB
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a data directory to open it.
func NewBackend() *Backend {
	return &Backend{}
}

// Open creates a backend and attaches it to dataDir in one step.
func Open(dataDir string) (*Backend, error) {
	b := NewBackend()
	if err := b.Attach(dataDir); err != nil {
		return nil, err
	}
	return b, nil
}

// Attach creates dataDir if it does not exist, opens the database file inside
// it and applies the schema. Existing data is kept.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(dataDir string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return ErrAlreadyAttached
	}

	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+filepath.Join(dataDir, DatabaseFile)+dsnPragmas)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps writers serialized inside the driver.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	b.db = db
	b.dataDir = dataDir
	b.attached = true
	return nil
}

// Detach closes the database. Detach is idempotent. After Detach every
// operation returns ErrDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		return err
	}
	return nil
}

// Path returns the database file path, or "" when detached.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return ""
	}
	return filepath.Join(b.dataDir, DatabaseFile)
}

// Get returns the value stored under key. A missing key yields ok=false.
func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return "", false, ErrDetached
	}

	var value string
	err := b.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (b *Backend) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return ErrDetached
	}

	_, err := b.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key succeeds.
func (b *Backend) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return ErrDetached
	}

	if _, err := b.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Keys returns every stored key in lexical order.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, ErrDetached
	}

	rows, err := b.db.QueryContext(ctx, "SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
