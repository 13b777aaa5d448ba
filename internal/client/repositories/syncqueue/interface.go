// Package syncqueue persists the durable FIFO log of local mutations that
// still have to be applied to the remote store.
//
// Entries are drained in creation order (ties broken by insertion sequence)
// and are never coalesced: two updates of one entity stay two entries. An
// entry leaves the queue only through Remove, called by the sync engine after
// a confirmed remote apply or once the retry limit is reached.
package syncqueue

import (
	"context"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
)

type Repository interface {
	// Enqueue appends an operation and returns the generated entry id.
	// snapshot must be nil for deletes.
	Enqueue(ctx context.Context, op models.Operation, entityType models.EntityType, entityID string, snapshot *models.Record, userID *string) (string, error)

	// Drain returns all pending entries in FIFO order without removing them.
	// Entries that cannot be decoded are returned with Invalid set rather
	// than failing the whole drain.
	Drain(ctx context.Context) ([]*models.QueuedOperation, error)

	// Remove deletes an entry. Removing an unknown id is not an error.
	Remove(ctx context.Context, id string) error

	// IncrementRetry bumps the retry counter and returns the new value.
	IncrementRetry(ctx context.Context, id string) (int, error)

	Count(ctx context.Context) (int, error)

	// ClaimUnowned sets userID on entries enqueued while logged out.
	ClaimUnowned(ctx context.Context, userID string) (int64, error)
}
