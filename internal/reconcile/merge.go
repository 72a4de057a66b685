// Package reconcile merges the local note set with the remote authority's
// set into one consistent view.
package reconcile

import (
	"github.com/google/uuid"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

// remoteNamespace scopes the LocalIDs derived for remote-only notes.
var remoteNamespace = uuid.MustParse("7c1d5a0e-4b7e-5f3a-9d62-2f1e8b6c0a41")

// LocalIDFor returns the LocalID assigned to a remote-only note. The same
// remote id always yields the same LocalID.
func LocalIDFor(remoteID string) string {
	return uuid.NewSHA1(remoteNamespace, []byte(remoteID)).String()
}

// Merge produces the merged view of local and remote.
//
// The full local set, tombstones included, is the base. A remote note whose
// id matches a local RemoteID overwrites every field the remote carries and
// marks the local note synced; LocalID and IsDeleted are kept. A remote note
// with no local match is appended as a synced note. Local notes the remote
// does not know about are left untouched. Neither input is modified.
func Merge(local []types.Note, remote []types.RemoteNote) []types.Note {
	merged := make([]types.Note, len(local), len(local)+len(remote))
	copy(merged, local)

	byRemote := make(map[string]int, len(merged))
	for i, n := range merged {
		if n.HasRemote() {
			if _, dup := byRemote[n.RemoteID]; !dup {
				byRemote[n.RemoteID] = i
			}
		}
	}

	for _, r := range remote {
		if r.ID == "" {
			continue
		}
		if i, ok := byRemote[r.ID]; ok {
			merged[i] = overwrite(merged[i], r)
			continue
		}
		merged = append(merged, overwrite(types.Note{LocalID: LocalIDFor(r.ID)}, r))
		byRemote[r.ID] = len(merged) - 1
	}
	return merged
}

// overwrite copies the remote-carried fields onto n.
func overwrite(n types.Note, r types.RemoteNote) types.Note {
	n.RemoteID = r.ID
	n.Title = r.Title
	n.Description = r.Description
	n.Image = r.Image
	n.CreatedAt = r.CreatedAt
	n.UpdatedAt = r.UpdatedAt
	n.IsSync = true
	return n
}

// Active returns the non-deleted subset of a merged view.
func Active(notes []types.Note) []types.Note {
	return types.ActiveNotes(notes)
}
