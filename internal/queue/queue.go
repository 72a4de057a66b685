// Package queue implements the Operation Queue: a durable FIFO log of
// mutations the remote authority has not confirmed yet.
//
// Entries are only ever appended. The whole queue is removed by Clear once
// every drained entry has been applied; there is no per-entry removal and no
// compaction, so several entries for the same note replay in order.
package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mesh-intelligence/notesync/internal/kvjson"
	"github.com/mesh-intelligence/notesync/pkg/types"
)

// QueueKey is the persistence key holding the queue entries.
const QueueKey = "sync_queue"

// Queue is the Operation Queue.
type Queue struct {
	mu      sync.Mutex
	kv      types.KVStore
	now     func() time.Time
	logger  *slog.Logger
	onError func(types.QueueEntry, error)
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock overrides the time source for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) { q.logger = logger }
}

// WithErrorHook registers fn to observe enqueue failures, which are
// otherwise only logged.
func WithErrorHook(fn func(types.QueueEntry, error)) Option {
	return func(q *Queue) { q.onError = fn }
}

// New creates a Queue over kv.
func New(kv types.KVStore, opts ...Option) *Queue {
	q := &Queue{
		kv:     kv,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends an entry for op with a snapshot of note. It never rejects
// an entry and never returns an error: queueing is a best-effort durability
// aid, so persistence failures are logged and passed to the error hook.
func (q *Queue) Enqueue(ctx context.Context, op types.Operation, note types.Note) {
	entry := types.QueueEntry{Operation: op, Note: note, Timestamp: q.now().UTC()}

	q.mu.Lock()
	defer q.mu.Unlock()

	err := q.appendLocked(ctx, entry)
	if err == nil {
		q.logger.Debug("enqueued", "operation", op, "local_id", note.LocalID)
		return
	}
	q.logger.Error("enqueue failed", "operation", op, "local_id", note.LocalID, "error", err)
	if q.onError != nil {
		q.onError(entry, err)
	}
}

func (q *Queue) appendLocked(ctx context.Context, entry types.QueueEntry) error {
	entries, err := kvjson.Load[types.QueueEntry](ctx, q.kv, QueueKey)
	if err != nil {
		return types.PersistenceError("load queue", err)
	}
	entries = append(entries, entry)
	if err := kvjson.Save(ctx, q.kv, QueueKey, entries); err != nil {
		return types.PersistenceError("save queue", err)
	}
	return nil
}

// Drain returns the full queue contents in FIFO order without removing them.
func (q *Queue) Drain(ctx context.Context) ([]types.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := kvjson.Load[types.QueueEntry](ctx, q.kv, QueueKey)
	if err != nil {
		return nil, types.PersistenceError("load queue", err)
	}
	return entries, nil
}

// Len returns the number of queued entries.
func (q *Queue) Len(ctx context.Context) (int, error) {
	entries, err := q.Drain(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Clear removes every entry. Call it only after each drained entry has been
// applied remotely.
func (q *Queue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.kv.Remove(ctx, QueueKey); err != nil {
		return types.PersistenceError("clear queue", err)
	}
	return nil
}
