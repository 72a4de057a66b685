package orchestrator

import (
	"context"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

// Status summarizes the sync state for display.
type Status struct {
	Net       types.NetState `json:"net"`
	Online    bool           `json:"online"`
	Loading   bool           `json:"loading"`
	Active    int            `json:"active"`
	Total     int            `json:"total"`
	Unsynced  int            `json:"unsynced"`
	Pending   int            `json:"pending"`
	LastError string         `json:"lastError,omitempty"`
}

// Status reads the Record Store and Operation Queue and reports counts
// alongside the connectivity and error state.
func (o *Orchestrator) Status(ctx context.Context) (Status, error) {
	all, err := o.store.ListAll(ctx)
	if err != nil {
		return Status{}, err
	}
	pending, err := o.queue.Len(ctx)
	if err != nil {
		return Status{}, err
	}

	st := Status{
		Net:     o.NetState(),
		Online:  o.IsOnline(),
		Loading: o.IsLoading(),
		Total:   len(all),
		Pending: pending,
	}
	for _, n := range all {
		if n.IsDeleted {
			continue
		}
		st.Active++
		if !n.IsSync {
			st.Unsynced++
		}
	}
	if err := o.LastError(); err != nil {
		st.LastError = err.Error()
	}
	return st, nil
}

// AllNotes returns every stored note, tombstones included.
func (o *Orchestrator) AllNotes(ctx context.Context) ([]types.Note, error) {
	return o.store.ListAll(ctx)
}

// Pending returns the queued entries in replay order.
func (o *Orchestrator) Pending(ctx context.Context) ([]types.QueueEntry, error) {
	return o.queue.Drain(ctx)
}

// Import replaces the stored notes with notes and republishes the visible
// set. Notes sharing a LocalID collapse into the last one, kept at the first
// one's position. The queue is left alone.
func (o *Orchestrator) Import(ctx context.Context, notes []types.Note) error {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	if err := o.store.ReplaceAll(ctx, dedupe(notes)); err != nil {
		o.setError(err)
		return err
	}
	return o.reloadLocked(ctx)
}

func dedupe(notes []types.Note) []types.Note {
	out := make([]types.Note, 0, len(notes))
	at := make(map[string]int, len(notes))
	for _, n := range notes {
		if i, ok := at[n.LocalID]; ok {
			out[i] = n
			continue
		}
		at[n.LocalID] = len(out)
		out = append(out, n)
	}
	return out
}
