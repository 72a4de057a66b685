package types

import (
	"errors"
	"fmt"
)

// Sync core errors. Callers test for them with errors.Is; the concrete error
// carries the operation and cause.
var (
	// ErrPersistence reports a local storage read or write failure. It is
	// fatal to the attempted operation and never retried automatically.
	ErrPersistence = errors.New("local persistence failure")

	// ErrRemote reports a network or remote API failure, including a remote
	// call that exceeded its timeout.
	ErrRemote = errors.New("remote authority failure")

	// ErrNotFound reports a reference to a note absent from the visible set.
	ErrNotFound = errors.New("note not found")

	// ErrRemoteNotFound reports that the remote authority has no note with
	// the requested id. Errors matching it also match ErrRemote.
	ErrRemoteNotFound = errors.New("remote note not found")

	// ErrOffline reports a manual sync requested while offline.
	ErrOffline = errors.New("cannot sync while offline")
)

// Validation errors.
var (
	ErrInvalidOperation = errors.New("invalid queue operation")
	ErrInvalidNote      = errors.New("invalid note")
)

// PersistenceError wraps err so that it matches ErrPersistence.
func PersistenceError(op string, err error) error {
	return wrap(ErrPersistence, op, err)
}

// RemoteError wraps err so that it matches ErrRemote.
func RemoteError(op string, err error) error {
	return wrap(ErrRemote, op, err)
}

func wrap(sentinel error, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &wrapped{sentinel: sentinel, op: op, err: err}
}

// wrapped pairs a sentinel with the underlying cause so that errors.Is
// matches both.
type wrapped struct {
	sentinel error
	op       string
	err      error
}

func (w *wrapped) Error() string {
	return w.op + ": " + w.sentinel.Error() + ": " + w.err.Error()
}

func (w *wrapped) Unwrap() []error {
	return []error{w.sentinel, w.err}
}
