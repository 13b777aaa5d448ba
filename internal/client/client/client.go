package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
)

// Client is the contract with the hosted backend. Account calls work without
// a session; entity calls act on behalf of userID and are subject to the
// backend's row-level security.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	// ServerTime reads the backend clock, the same clock that stamps
	// updated_at and deleted_at on remote rows.
	ServerTime(ctx context.Context) (time.Time, error)

	Register(ctx context.Context, username string, salt []byte, verifier []byte) (string, error)
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) (string, error)

	// Upsert inserts or overwrites the remote row for rec.
	Upsert(ctx context.Context, userID string, entityType models.EntityType, rec *models.Record) error
	// SoftDelete stamps deleted_at. Deleting a missing row succeeds.
	SoftDelete(ctx context.Context, userID string, entityType models.EntityType, id string) error
	// FetchUpdated returns live rows changed at or after since (all rows when nil).
	FetchUpdated(ctx context.Context, userID string, entityType models.EntityType, since *time.Time) ([]*models.Record, error)
	// FetchDeleted returns ids of rows tombstoned at or after since (all when nil).
	FetchDeleted(ctx context.Context, userID string, entityType models.EntityType, since *time.Time) ([]string, error)
}
