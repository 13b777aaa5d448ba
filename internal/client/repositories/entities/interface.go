package entities

import (
	"context"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
)

// Repository describes storage operations on one entity collection.
type Repository interface {
	// Get returns common.ErrorNotFound when the id is unknown.
	Get(ctx context.Context, id string) (*models.Record, error)

	List(ctx context.Context) ([]*models.Record, error)

	// ListBy filters on a foreign-key field such as models.FieldHolidayID.
	ListBy(ctx context.Context, field string, value string) ([]*models.Record, error)

	// Put inserts or overwrites the record by id.
	Put(ctx context.Context, rec *models.Record) error

	// UpsertLWW applies rec with last-write-wins semantics.
	UpsertLWW(ctx context.Context, rec *models.Record) (models.UpsertOutcome, error)

	// DeleteByID hard-deletes the row and reports whether it existed.
	DeleteByID(ctx context.Context, id string) (bool, error)

	// Claim sets the owner of an unclaimed record. Owned records are left alone.
	Claim(ctx context.Context, id string, userID string) error

	// ClaimUnowned assigns userID to every unclaimed record.
	ClaimUnowned(ctx context.Context, userID string) (int64, error)
}
