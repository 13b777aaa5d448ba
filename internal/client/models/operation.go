package models

import (
	"fmt"
	"time"
)

// Operation is the kind of change recorded in the sync queue.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case OpCreate, OpUpdate, OpDelete:
		return op, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// QueuedOperation is one pending change waiting to be applied remotely.
// Data is the full record snapshot taken at enqueue time, nil for deletes.
type QueuedOperation struct {
	ID         string
	Operation  Operation
	EntityType EntityType
	EntityID   string
	Data       *Record
	UserID     *string
	CreatedAt  time.Time
	Retries    int

	// Invalid is set when the stored entry could not be decoded. Such an
	// entry can never be applied; Operation and EntityType hold the raw
	// stored values.
	Invalid error
}

func (q *QueuedOperation) String() string {
	return fmt.Sprintf("%s %s/%s (retries=%d)", q.Operation, q.EntityType, q.EntityID, q.Retries)
}
