package orchestrator

import (
	"context"
	"errors"

	"github.com/mesh-intelligence/notesync/internal/reconcile"
	"github.com/mesh-intelligence/notesync/pkg/types"
)

// Sync runs one cycle now. It fails with ErrOffline while offline. A call
// that arrives while another cycle runs returns nil without syncing.
func (o *Orchestrator) Sync(ctx context.Context) error {
	if !o.IsOnline() {
		o.setError(types.ErrOffline)
		return types.ErrOffline
	}
	return o.cycle(ctx)
}

// cycle enforces at most one running cycle and records its outcome in the
// error slot.
func (o *Orchestrator) cycle(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		o.logger.Info("sync already running; trigger coalesced")
		return nil
	}
	defer o.running.Store(false)

	o.opMu.Lock()
	defer o.opMu.Unlock()

	o.setLoading(true)
	defer o.setLoading(false)

	if err := o.runCycle(ctx); err != nil {
		o.setError(err)
		return err
	}
	o.setError(nil)
	return nil
}

// runCycle drains and replays the queue, then merges the remote set into the
// Record Store and publishes the result. A failure while replaying aborts
// before anything is fetched or merged, leaving the queue in place.
func (o *Orchestrator) runCycle(ctx context.Context) error {
	entries, err := o.queue.Drain(ctx)
	if err != nil {
		return err
	}
	o.logger.Info("sync started", "queued", len(entries))

	for i, e := range entries {
		if err := o.replay(ctx, e); err != nil {
			o.logger.Warn("replay failed; re-queued", "index", i, "operation", e.Operation, "local_id", e.Note.LocalID, "error", err)
			o.queue.Enqueue(ctx, e.Operation, e.Note)
			return err
		}
	}
	if err := o.queue.Clear(ctx); err != nil {
		return err
	}

	remote, err := o.remoteList(ctx)
	if err != nil {
		return err
	}
	local, err := o.store.ListAll(ctx)
	if err != nil {
		return err
	}
	merged := reconcile.Merge(local, remote)
	if err := o.store.ReplaceAll(ctx, merged); err != nil {
		return err
	}
	active := reconcile.Active(merged)
	o.publish(active)
	o.logger.Info("sync completed", "remote", len(remote), "active", len(active), "total", len(merged))
	return nil
}

// replay applies one queued entry against the remote authority.
//
// A snapshot without a RemoteID takes the one the store holds for its
// LocalID, so a create followed by an update or delete queued offline
// replays against the id the create obtained. A create is skipped once the
// store already holds a RemoteID for it or the note has been tombstoned.
// An update or delete of a note the remote no longer has is dropped: the
// delete has nothing left to do and the update can never succeed.
func (o *Orchestrator) replay(ctx context.Context, e types.QueueEntry) error {
	note := e.Note
	stored, found, err := o.lookup(ctx, note.LocalID)
	if err != nil {
		return err
	}
	remoteID := note.RemoteID
	if remoteID == "" && found {
		remoteID = stored.RemoteID
	}

	switch e.Operation {
	case types.OpCreate:
		if found && (stored.HasRemote() || stored.IsDeleted) {
			o.logger.Debug("create already applied or deleted; skipped", "local_id", note.LocalID)
			return nil
		}
		created, err := o.remoteCreate(ctx, note)
		if err != nil {
			return err
		}
		return o.confirm(ctx, note, created.ID)

	case types.OpUpdate:
		if remoteID == "" {
			o.logger.Debug("update has no remote id; skipped", "local_id", note.LocalID)
			return nil
		}
		_, err := o.remoteUpdate(ctx, remoteID, note)
		if errors.Is(err, types.ErrRemoteNotFound) {
			o.logger.Warn("remote no longer has note; update dropped", "local_id", note.LocalID, "remote_id", remoteID)
			return nil
		}
		if err != nil {
			return err
		}
		return o.confirm(ctx, note, remoteID)

	case types.OpDelete:
		if remoteID == "" {
			return nil
		}
		err := o.remoteDelete(ctx, remoteID)
		if errors.Is(err, types.ErrRemoteNotFound) {
			o.logger.Info("remote note already gone", "local_id", note.LocalID, "remote_id", remoteID)
			return nil
		}
		return err

	default:
		o.logger.Warn("unknown queued operation; skipped", "operation", e.Operation, "local_id", note.LocalID)
		return nil
	}
}

// confirm records that the remote authority accepted snapshot under
// remoteID. The stored note adopts the id if it has none and is marked
// synced only if its content still equals the snapshot; a newer local edit
// stays unsynced until its own entry replays. The tombstone flag is kept.
func (o *Orchestrator) confirm(ctx context.Context, snapshot types.Note, remoteID string) error {
	stored, found, err := o.lookup(ctx, snapshot.LocalID)
	if err != nil || !found {
		return err
	}
	if stored.RemoteID == "" {
		stored.RemoteID = remoteID
	}
	if stored.SameContent(snapshot) {
		stored.IsSync = true
	}
	_, err = o.store.Upsert(ctx, stored)
	return err
}

// lookup reads a note by LocalID, tombstones included.
func (o *Orchestrator) lookup(ctx context.Context, localID string) (types.Note, bool, error) {
	n, err := o.store.Get(ctx, localID)
	switch {
	case err == nil:
		return n, true, nil
	case errors.Is(err, types.ErrNotFound):
		return types.Note{}, false, nil
	default:
		return types.Note{}, false, err
	}
}
