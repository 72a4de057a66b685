// Package testutil provides in-memory fakes for the collaborators of the sync
// core: a key-value store, a scripted remote authority and a settable
// connectivity observer. The fakes are safe for concurrent use.
package testutil
