package syncer

import (
	"fmt"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
)

type EventKind int

const (
	EntityCreated EventKind = iota + 1
	EntityUpdated
	EntityDeleted
	SyncStarted
	SyncCompleted
	SyncError
)

func (k EventKind) String() string {
	switch k {
	case EntityCreated:
		return "entity created"
	case EntityUpdated:
		return "entity updated"
	case EntityDeleted:
		return "entity deleted"
	case SyncStarted:
		return "sync started"
	case SyncCompleted:
		return "sync completed"
	case SyncError:
		return "sync error"
	}
	return "unknown"
}

// Event is what the engine publishes. Which fields are set depends on Kind:
// entity events carry EntityType and EntityID (and Record unless deleted),
// SyncCompleted carries the counters, SyncError carries Err and, for a
// dropped queue entry, Operation.
type Event struct {
	Kind       EventKind
	EntityType models.EntityType
	EntityID   string
	Record     *models.Record

	Success int
	Errors  int

	Err       error
	Operation *models.QueuedOperation
}

func (e Event) String() string {
	switch e.Kind {
	case EntityCreated, EntityUpdated, EntityDeleted:
		return fmt.Sprintf("%s: %s/%s", e.Kind, e.EntityType, e.EntityID)
	case SyncCompleted:
		return fmt.Sprintf("%s: %d ok, %d failed", e.Kind, e.Success, e.Errors)
	case SyncError:
		if e.Operation != nil {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Operation, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}
