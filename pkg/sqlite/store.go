// Package sqlite provides the public API for the SQLite key-value store that
// persists notesync state. Implementation details stay in internal/sqlite.
package sqlite

import (
	"github.com/mesh-intelligence/notesync/internal/sqlite"
)

// Store is a durable types.KVStore backed by one SQLite file.
type Store = sqlite.Backend

// DatabaseFile is the file name created inside the data directory.
const DatabaseFile = sqlite.DatabaseFile

// NewStore creates a detached store. Call Attach with a data directory
// before use.
//
// Example:
//
//	store := sqlite.NewStore()
//	if err := store.Attach(".notesync-db"); err != nil {
//	    return err
//	}
//	defer store.Detach()
func NewStore() *Store {
	return sqlite.NewBackend()
}

// Open creates a store and attaches it to dataDir.
func Open(dataDir string) (*Store, error) {
	return sqlite.Open(dataDir)
}
