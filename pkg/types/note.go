package types

import "time"

// Note is a user-authored record held by the Record Store.
//
// LocalID is the stable identity: it is assigned once at local creation and
// never reassigned. RemoteID stays empty until the remote authority accepts
// the note and, once set, never changes for that LocalID.
type Note struct {
	RemoteID    string    `json:"id"`
	LocalID     string    `json:"localId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	IsSync      bool      `json:"isSync"`
	IsDeleted   bool      `json:"isDeleted"`
}

// HasRemote reports whether the remote authority has assigned an identity.
func (n Note) HasRemote() bool {
	return n.RemoteID != ""
}

// SameContent reports whether n and other carry the same user-authored
// fields. Identity, timestamps and flags are ignored.
func (n Note) SameContent(other Note) bool {
	return n.Title == other.Title &&
		n.Description == other.Description &&
		n.Image == other.Image
}

// RemoteNote is the fixed schema the remote authority carries for a note.
// Only these fields cross the boundary in either direction.
type RemoteNote struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NoteInput holds the caller-supplied fields for a new note.
type NoteInput struct {
	Title       string
	Description string
	Image       string
}

// NotePatch describes a partial update. Nil fields keep the existing value.
type NotePatch struct {
	Title       *string
	Description *string
	Image       *string
}

// Apply returns a copy of n with the non-nil patch fields written over it.
func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Image != nil {
		n.Image = *p.Image
	}
	return n
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Image == nil
}

// ActiveNotes returns the notes that are not tombstoned, preserving order.
func ActiveNotes(notes []Note) []Note {
	active := make([]Note, 0, len(notes))
	for _, n := range notes {
		if !n.IsDeleted {
			active = append(active, n)
		}
	}
	return active
}
