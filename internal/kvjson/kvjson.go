// Package kvjson stores whole JSON-encoded collections under a single key of
// a types.KVStore. Reads of an absent key yield an empty collection; writes
// overwrite the entire collection.
package kvjson

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

// Load decodes the JSON array stored under key. An absent key, an empty
// value or a JSON null all decode to an empty, non-nil slice.
func Load[T any](ctx context.Context, kv types.KVStore, key string) ([]T, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	items := []T{}
	if !ok || raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save encodes items as a JSON array and stores it under key.
func Save[T any](ctx context.Context, kv types.KVStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
