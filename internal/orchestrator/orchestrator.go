// Package orchestrator implements the Sync Orchestrator: the single owner of
// the Record Store and Operation Queue that applies caller mutations
// optimistically and drives the drain, fetch, merge and persist cycle when
// connectivity allows.
//
// Every entry point and every cycle runs under one mutex. At most one cycle
// runs at a time; a trigger that arrives while a cycle is in flight is
// coalesced into a no-op.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/notesync/internal/queue"
	"github.com/mesh-intelligence/notesync/internal/records"
	"github.com/mesh-intelligence/notesync/pkg/types"
)

// DefaultRemoteTimeout bounds every call to the remote authority.
const DefaultRemoteTimeout = types.DefaultRemoteTimeout

// Orchestrator is the Sync Orchestrator.
type Orchestrator struct {
	store  *records.Store
	queue  *queue.Queue
	remote types.Remote
	conn   types.Connectivity

	logger        *slog.Logger
	now           func() time.Time
	newID         func() string
	remoteTimeout time.Duration
	startupSync   bool

	// netEvents counts notifications from the observer.
	netEvents atomic.Uint64

	// opMu serializes entry points and cycles.
	opMu    sync.Mutex
	running atomic.Bool

	// stateMu guards the published state below.
	stateMu  sync.RWMutex
	netState types.NetState
	notes    []types.Note
	lastErr  error
	loading  bool
	closed   bool

	unsubscribe func()
	baseCtx     context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger shared with the store and queue. The default
// discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the time source for note and queue timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator overrides how LocalIDs are minted. The default is UUID v7.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newID = fn }
}

// WithRemoteTimeout bounds each remote call. Non-positive values keep the
// default.
func WithRemoteTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.remoteTimeout = d
		}
	}
}

// WithoutStartupSync makes Start record an already-online network without
// running a cycle. Later Offline to Online transitions and Sync still run
// cycles.
func WithoutStartupSync() Option {
	return func(o *Orchestrator) { o.startupSync = false }
}

// New wires an Orchestrator over kv, remote and conn. Call Start before use.
func New(kv types.KVStore, remote types.Remote, conn types.Connectivity, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		remote:        remote,
		conn:          conn,
		logger:        slog.New(slog.DiscardHandler),
		now:           time.Now,
		newID:         newLocalID,
		remoteTimeout: DefaultRemoteTimeout,
		startupSync:   true,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.store = records.New(kv, records.WithClock(o.now), records.WithLogger(o.logger))
	o.queue = queue.New(kv,
		queue.WithClock(o.now),
		queue.WithLogger(o.logger),
		queue.WithErrorHook(o.queueFailed),
	)
	o.baseCtx, o.cancel = context.WithCancel(context.Background())
	return o
}

func newLocalID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Start subscribes to connectivity changes, reads the current state and
// loads the local notes. If the network is already online a cycle starts in
// the background, as for an Offline to Online transition, unless
// WithoutStartupSync was given. A notification delivered while Start runs
// is newer than the state it read, so that state is then discarded.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.unsubscribe = o.conn.OnChange(o.onNetEvent)
	seen := o.netEvents.Load()

	state, err := o.conn.Current(ctx)
	if err != nil {
		o.logger.Warn("read network state failed; assuming offline", "error", err)
		state = types.NetState{}
	}
	if err := o.Refresh(ctx); err != nil {
		return err
	}

	if o.netEvents.Load() != seen {
		o.logger.Debug("network changed during start; read state discarded")
		return nil
	}
	if !o.startupSync {
		o.stateMu.Lock()
		o.netState = state
		o.stateMu.Unlock()
		return nil
	}
	o.netChanged(state)
	return nil
}

// onNetEvent handles a notification from the connectivity observer.
func (o *Orchestrator) onNetEvent(state types.NetState) {
	o.netEvents.Add(1)
	o.netChanged(state)
}

// Close unsubscribes from connectivity changes, cancels background cycles
// and waits for them to finish.
func (o *Orchestrator) Close() error {
	o.stateMu.Lock()
	if o.closed {
		o.stateMu.Unlock()
		return nil
	}
	o.closed = true
	o.stateMu.Unlock()

	if o.unsubscribe != nil {
		o.unsubscribe()
	}
	o.cancel()
	o.wg.Wait()
	return nil
}

// Wait blocks until every background cycle started so far has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// netChanged records state and starts a cycle on an Offline to Online
// transition. Online to Offline does nothing else.
func (o *Orchestrator) netChanged(state types.NetState) {
	o.stateMu.Lock()
	prev := o.netState
	o.netState = state
	start := !o.closed && !prev.Online() && state.Online()
	if start {
		o.wg.Add(1)
	}
	o.stateMu.Unlock()

	o.logger.Debug("network state", "connected", state.Connected, "reachable", state.Reachable, "kind", state.KindOrUnknown())
	if !start {
		return
	}

	o.logger.Info("network online; starting sync", "kind", state.KindOrUnknown())
	go func() {
		defer o.wg.Done()
		if err := o.cycle(o.baseCtx); err != nil {
			o.logger.Warn("background sync failed", "error", err)
		}
	}()
}

// RefreshNetState re-reads the connectivity observer. A transition to online
// starts a cycle in the background.
func (o *Orchestrator) RefreshNetState(ctx context.Context) (types.NetState, error) {
	state, err := o.conn.Current(ctx)
	if err != nil {
		o.logger.Warn("refresh network state failed", "error", err)
		return o.NetState(), err
	}
	o.netChanged(state)
	return state, nil
}

// Refresh reloads the visible notes from the Record Store.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	o.setLoading(true)
	defer o.setLoading(false)
	return o.reloadLocked(ctx)
}

func (o *Orchestrator) reloadLocked(ctx context.Context) error {
	active, err := o.store.ListActive(ctx)
	if err != nil {
		o.setError(err)
		return err
	}
	o.publish(active)
	return nil
}

// Notes returns the visible (active) notes.
func (o *Orchestrator) Notes() []types.Note {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return append([]types.Note(nil), o.notes...)
}

// NetState returns the last observed connectivity state.
func (o *Orchestrator) NetState() types.NetState {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.netState
}

// IsOnline reports whether the last observed state was connected and
// reachable.
func (o *Orchestrator) IsOnline() bool {
	return o.NetState().Online()
}

// IsLoading reports whether a cycle or reload is in progress.
func (o *Orchestrator) IsLoading() bool {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.loading
}

// LastError returns the error slot. It holds the most recent failure until
// ClearError is called, the next failure replaces it, or a cycle completes.
func (o *Orchestrator) LastError() error {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.lastErr
}

// ClearError empties the error slot.
func (o *Orchestrator) ClearError() {
	o.setError(nil)
}

func (o *Orchestrator) setError(err error) {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	o.lastErr = err
}

func (o *Orchestrator) setLoading(v bool) {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	o.loading = v
}

func (o *Orchestrator) publish(active []types.Note) {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	o.notes = active
}

// queueFailed observes best-effort enqueue failures. It runs while opMu is
// held and only touches stateMu.
func (o *Orchestrator) queueFailed(entry types.QueueEntry, err error) {
	o.setError(err)
}

// callRemote runs fn under the per-call timeout. Failures that do not
// already match ErrRemote are wrapped in it; the others pass through as is.
func callRemote[T any](o *Orchestrator, ctx context.Context, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, o.remoteTimeout)
	defer cancel()
	v, err := fn(ctx)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, types.ErrRemote):
		return v, err
	default:
		return v, types.RemoteError(op, err)
	}
}

func (o *Orchestrator) remoteList(ctx context.Context) ([]types.RemoteNote, error) {
	return callRemote(o, ctx, "list", o.remote.List)
}

func (o *Orchestrator) remoteCreate(ctx context.Context, n types.Note) (types.RemoteNote, error) {
	return callRemote(o, ctx, "create", func(ctx context.Context) (types.RemoteNote, error) {
		return o.remote.Create(ctx, types.PayloadFor(n))
	})
}

func (o *Orchestrator) remoteUpdate(ctx context.Context, remoteID string, n types.Note) (types.RemoteNote, error) {
	return callRemote(o, ctx, "update", func(ctx context.Context) (types.RemoteNote, error) {
		return o.remote.Update(ctx, types.UpdatePayloadFor(remoteID, n))
	})
}

func (o *Orchestrator) remoteDelete(ctx context.Context, remoteID string) error {
	_, err := callRemote(o, ctx, "delete", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, o.remote.Delete(ctx, remoteID)
	})
	return err
}
