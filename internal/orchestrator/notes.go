package orchestrator

import (
	"context"
	"errors"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

// CreateNote stores a new unsynced note and, when online, submits it to the
// remote authority directly. Offline, or when the direct attempt fails, a
// create entry is queued instead. In the failure case the stored note is
// returned together with an error matching ErrRemote.
func (o *Orchestrator) CreateNote(ctx context.Context, in types.NoteInput) (types.Note, error) {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	note, err := o.store.Upsert(ctx, types.Note{
		LocalID:     o.newID(),
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
	})
	if err != nil {
		o.setError(err)
		return types.Note{}, err
	}

	if !o.IsOnline() {
		o.queue.Enqueue(ctx, types.OpCreate, note)
		o.logger.Info("note created offline; queued", "local_id", note.LocalID)
		return note, o.reloadLocked(ctx)
	}

	created, rerr := o.remoteCreate(ctx, note)
	if rerr != nil {
		o.queue.Enqueue(ctx, types.OpCreate, note)
		o.logger.Warn("direct create failed; queued", "local_id", note.LocalID, "error", rerr)
		o.setError(rerr)
		if err := o.reloadLocked(ctx); err != nil {
			return note, err
		}
		return note, rerr
	}

	note.RemoteID = created.ID
	note.IsSync = true
	if note, err = o.store.Upsert(ctx, note); err != nil {
		o.setError(err)
		return types.Note{}, err
	}
	o.logger.Info("note created", "local_id", note.LocalID, "remote_id", note.RemoteID)
	return note, o.reloadLocked(ctx)
}

// UpdateNote applies patch to a visible note, marks it unsynced and stores
// it. Online with a RemoteID the update is submitted directly; otherwise, or
// when the direct attempt fails, an update entry is queued. If the remote no
// longer has the note the change stays local and nothing is queued; the
// returned error matches ErrRemoteNotFound.
// Returns ErrNotFound if localID is not visible.
func (o *Orchestrator) UpdateNote(ctx context.Context, localID string, patch types.NotePatch) (types.Note, error) {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	existing, err := o.visible(ctx, localID)
	if err != nil {
		return types.Note{}, err
	}

	changed := patch.Apply(existing)
	changed.IsSync = false
	note, err := o.store.Upsert(ctx, changed)
	if err != nil {
		o.setError(err)
		return types.Note{}, err
	}

	if !o.IsOnline() || !note.HasRemote() {
		o.queue.Enqueue(ctx, types.OpUpdate, note)
		o.logger.Info("note updated; queued", "local_id", note.LocalID, "online", o.IsOnline())
		return note, o.reloadLocked(ctx)
	}

	if _, rerr := o.remoteUpdate(ctx, note.RemoteID, note); rerr != nil {
		if errors.Is(rerr, types.ErrRemoteNotFound) {
			o.logger.Warn("remote no longer has note; update kept locally", "local_id", note.LocalID, "remote_id", note.RemoteID)
			o.setError(rerr)
			if err := o.reloadLocked(ctx); err != nil {
				return note, err
			}
			return note, rerr
		}
		o.queue.Enqueue(ctx, types.OpUpdate, note)
		o.logger.Warn("direct update failed; queued", "local_id", note.LocalID, "error", rerr)
		o.setError(rerr)
		if err := o.reloadLocked(ctx); err != nil {
			return note, err
		}
		return note, rerr
	}

	note.IsSync = true
	if note, err = o.store.Upsert(ctx, note); err != nil {
		o.setError(err)
		return types.Note{}, err
	}
	o.logger.Info("note updated", "local_id", note.LocalID, "remote_id", note.RemoteID)
	return note, o.reloadLocked(ctx)
}

// DeleteNote tombstones a visible note so it leaves the visible set at once.
// Online with a RemoteID the deletion is submitted directly; otherwise, or
// when the direct attempt fails, a delete entry is queued. A remote that no
// longer has the note counts as a successful delete.
// Returns ErrNotFound if localID is not visible.
func (o *Orchestrator) DeleteNote(ctx context.Context, localID string) error {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	note, err := o.visible(ctx, localID)
	if err != nil {
		return err
	}
	if err := o.store.MarkDeleted(ctx, localID); err != nil {
		o.setError(err)
		return err
	}
	note.IsDeleted = true

	if !o.IsOnline() || !note.HasRemote() {
		o.queue.Enqueue(ctx, types.OpDelete, note)
		o.logger.Info("note deleted; queued", "local_id", localID, "online", o.IsOnline())
		return o.reloadLocked(ctx)
	}

	rerr := o.remoteDelete(ctx, note.RemoteID)
	if errors.Is(rerr, types.ErrRemoteNotFound) {
		o.logger.Info("remote note already gone", "local_id", localID, "remote_id", note.RemoteID)
		rerr = nil
	}
	if rerr != nil {
		o.queue.Enqueue(ctx, types.OpDelete, note)
		o.logger.Warn("direct delete failed; queued", "local_id", localID, "error", rerr)
		o.setError(rerr)
		if err := o.reloadLocked(ctx); err != nil {
			return err
		}
		return rerr
	}
	o.logger.Info("note deleted", "local_id", localID, "remote_id", note.RemoteID)
	return o.reloadLocked(ctx)
}

// visible returns the active note with localID or ErrNotFound.
func (o *Orchestrator) visible(ctx context.Context, localID string) (types.Note, error) {
	n, found, err := o.lookup(ctx, localID)
	if err != nil {
		o.setError(err)
		return types.Note{}, err
	}
	if !found || n.IsDeleted {
		return types.Note{}, types.ErrNotFound
	}
	return n, nil
}
