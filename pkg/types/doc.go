// Package types defines the Note and queue entity types, the interfaces the
// sync core consumes (persistence, remote authority, connectivity), the
// configuration record and the standard error values for notesync.
package types
