package types

import (
	"fmt"
	"time"
)

// Operation is the kind of mutation recorded in the operation queue.
type Operation string

// Queue operations.
const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	switch op {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// ParseOperation converts s to an Operation.
// Returns ErrInvalidOperation if s is not a known operation.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !op.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperation, s)
	}
	return op, nil
}

// QueueEntry is an intent awaiting confirmation by the remote authority.
// Note is the full snapshot taken when the entry was enqueued. Timestamp is
// diagnostic only; processing order is insertion order.
type QueueEntry struct {
	Operation Operation `json:"operation"`
	Note      Note      `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}
