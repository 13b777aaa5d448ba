package syncqueue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
	"github.com/dmitrijs2005/giftkeeper/internal/common"
	"github.com/dmitrijs2005/giftkeeper/internal/dbx"
	"github.com/dmitrijs2005/giftkeeper/internal/timex"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: timex.Now}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, op models.Operation, entityType models.EntityType, entityID string, snapshot *models.Record, userID *string) (string, error) {
	var data []byte
	if snapshot != nil {
		var err error
		if data, err = models.EncodeRecord(snapshot); err != nil {
			return "", fmt.Errorf("failed to enqueue %s %s[%s]: %w", op, entityType, entityID, err)
		}
	}

	id := uuid.NewString()
	owner := sql.NullString{}
	if userID != nil {
		owner = sql.NullString{String: *userID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_queue (id, operation, entity_type, entity_id, data, user_id, created_at, retries)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)
	`, id, string(op), string(entityType), entityID, data, owner, r.now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to enqueue %s %s[%s]: %w", op, entityType, entityID, err)
	}
	return id, nil
}

func (r *SQLiteRepository) Drain(ctx context.Context) ([]*models.QueuedOperation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, operation, entity_type, entity_id, data, user_id, created_at, retries
		FROM sync_queue
		ORDER BY created_at, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync queue: %w", err)
	}
	defer rows.Close()

	result := make([]*models.QueuedOperation, 0)
	for rows.Next() {
		var (
			item      models.QueuedOperation
			op, etype string
			data      []byte
			userID    sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&item.ID, &op, &etype, &item.EntityID, &data, &userID, &createdAt, &item.Retries); err != nil {
			return nil, fmt.Errorf("failed to scan sync queue row: %w", err)
		}
		if err := decodeEntry(&item, op, etype, data); err != nil {
			item.Invalid = fmt.Errorf("sync queue entry %s: %w", item.ID, err)
		}
		if userID.Valid {
			item.UserID = &userID.String
		}
		item.CreatedAt = time.Unix(0, createdAt).UTC()
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync queue: %w", err)
	}
	return result, nil
}

// decodeEntry fills the typed fields of item from the stored columns.
func decodeEntry(item *models.QueuedOperation, op, etype string, data []byte) error {
	var err error
	if item.Operation, err = models.ParseOperation(op); err != nil {
		item.Operation = models.Operation(op)
		return err
	}
	if item.EntityType, err = models.ParseEntityType(etype); err != nil {
		item.EntityType = models.EntityType(etype)
		return err
	}
	if len(data) > 0 {
		if item.Data, err = models.DecodeRecord(data); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove sync queue entry %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) IncrementRetry(ctx context.Context, id string) (int, error) {
	var retries int
	err := r.db.QueryRowContext(ctx,
		`UPDATE sync_queue SET retries = retries + 1 WHERE id = ? RETURNING retries`, id,
	).Scan(&retries)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("sync queue entry %s: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment retries of %s: %w", id, err)
	}
	return retries, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sync queue: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) ClaimUnowned(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE sync_queue SET user_id = ? WHERE user_id IS NULL`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to claim sync queue entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
