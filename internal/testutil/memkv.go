package testutil

import (
	"context"
	"sync"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

var _ types.KVStore = (*MemKV)(nil)

// MemKV is an in-memory types.KVStore with injectable failures.
type MemKV struct {
	mu        sync.Mutex
	data      map[string]string
	getErr    error
	setErr    error
	removeErr error
	sets      int
}

// NewMemKV returns an empty store.
func NewMemKV() *MemKV {
	return &MemKV{data: make(map[string]string)}
}

// Get implements types.KVStore.
func (m *MemKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements types.KVStore.
func (m *MemKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = value
	return nil
}

// Remove implements types.KVStore.
func (m *MemKV) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.data, key)
	return nil
}

// FailGet makes every Get return err until cleared with nil.
func (m *MemKV) FailGet(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// FailSet makes every Set return err until cleared with nil.
func (m *MemKV) FailSet(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}

// FailRemove makes every Remove return err until cleared with nil.
func (m *MemKV) FailRemove(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeErr = err
}

// Raw returns the value under key without going through failure injection.
func (m *MemKV) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// SetCount returns the number of successful Set calls.
func (m *MemKV) SetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}
