// Package records implements the Record Store: the durable local table of
// notes that is the source of truth while offline.
//
// The whole collection lives as one JSON array under NotesKey. Every
// mutating call performs one full read-modify-write of that array.
package records

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mesh-intelligence/notesync/internal/kvjson"
	"github.com/mesh-intelligence/notesync/pkg/types"
)

// NotesKey is the persistence key holding every note, tombstones included.
const NotesKey = "notes_offline_storage"

// Store is the Record Store. The internal mutex serializes the store's own
// read-modify-write cycles; callers combining several calls must still
// serialize externally.
type Store struct {
	mu     sync.Mutex
	kv     types.KVStore
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store over kv.
func New(kv types.KVStore, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActive returns every note that is not tombstoned, in storage order.
func (s *Store) ListActive(ctx context.Context) ([]types.Note, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return types.ActiveNotes(all), nil
}

// ListAll returns every note including tombstones, in storage order.
func (s *Store) ListAll(ctx context.Context) ([]types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns the note with localID, tombstoned or not.
// Returns ErrNotFound if no note has that id.
func (s *Store) Get(ctx context.Context, localID string) (types.Note, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return types.Note{}, err
	}
	if i := indexOf(all, localID); i >= 0 {
		return all[i], nil
	}
	return types.Note{}, types.ErrNotFound
}

// Upsert replaces the note with the same LocalID in place, refreshing
// UpdatedAt, or appends it with CreatedAt and UpdatedAt set to now.
// Returns the note as stored. A storage failure matches ErrPersistence and
// nothing is written.
func (s *Store) Upsert(ctx context.Context, note types.Note) (types.Note, error) {
	if note.LocalID == "" {
		return types.Note{}, types.ErrInvalidNote
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return types.Note{}, err
	}

	now := s.now().UTC()
	if i := indexOf(all, note.LocalID); i >= 0 {
		note.UpdatedAt = notBefore(now, all[i].UpdatedAt)
		all[i] = note
	} else {
		note.CreatedAt = now
		note.UpdatedAt = now
		all = append(all, note)
	}

	if err := s.save(ctx, all); err != nil {
		return types.Note{}, err
	}
	return note, nil
}

// MarkDeleted tombstones the note with localID and refreshes its UpdatedAt.
// An absent localID is a successful no-op.
func (s *Store) MarkDeleted(ctx context.Context, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(all, localID)
	if i < 0 {
		s.logger.Debug("mark deleted: note absent", "local_id", localID)
		return nil
	}
	all[i].IsDeleted = true
	all[i].UpdatedAt = notBefore(s.now().UTC(), all[i].UpdatedAt)
	return s.save(ctx, all)
}

// ReplaceAll persists notes as the complete collection, replacing whatever
// was stored.
func (s *Store) ReplaceAll(ctx context.Context, notes []types.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, notes)
}

func (s *Store) load(ctx context.Context) ([]types.Note, error) {
	notes, err := kvjson.Load[types.Note](ctx, s.kv, NotesKey)
	if err != nil {
		return nil, types.PersistenceError("load notes", err)
	}
	return notes, nil
}

func (s *Store) save(ctx context.Context, notes []types.Note) error {
	if err := kvjson.Save(ctx, s.kv, NotesKey, notes); err != nil {
		return types.PersistenceError("save notes", err)
	}
	return nil
}

func indexOf(notes []types.Note, localID string) int {
	for i := range notes {
		if notes[i].LocalID == localID {
			return i
		}
	}
	return -1
}

// notBefore keeps UpdatedAt monotonic when the clock steps backwards.
func notBefore(t, floor time.Time) time.Time {
	if t.Before(floor) {
		return floor
	}
	return t
}
