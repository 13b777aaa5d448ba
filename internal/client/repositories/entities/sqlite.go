package entities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
	"github.com/dmitrijs2005/giftkeeper/internal/common"
	"github.com/dmitrijs2005/giftkeeper/internal/dbx"
	"github.com/dmitrijs2005/giftkeeper/internal/timex"
)

type fkColumn struct {
	field  string
	column string
}

var foreignKeys = map[models.EntityType][]fkColumn{
	models.EntityHolidays:   nil,
	models.EntityRecipients: {{models.FieldHolidayID, "holiday_id"}},
	models.EntityGifts:      {{models.FieldRecipientID, "recipient_id"}, {models.FieldHolidayID, "holiday_id"}},
}

const selectColumns = `id, user_id, created_at, updated_at, data`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db         dbx.DBTX
	entityType models.EntityType
	fks        []fkColumn
	now        func() time.Time
}

// NewSQLiteRepository returns a repository for one collection bound to db.
func NewSQLiteRepository(db dbx.DBTX, entityType models.EntityType) *SQLiteRepository {
	return &SQLiteRepository{
		db:         db,
		entityType: entityType,
		fks:        foreignKeys[entityType],
		now:        timex.Now,
	}
}

func (r *SQLiteRepository) table() string {
	return string(r.entityType)
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Record, error) {
	rec, err := r.get(ctx, r.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s[%s]: %w", r.table(), id, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) get(ctx context.Context, q dbx.DBTX, id string) (*models.Record, error) {
	query := `SELECT ` + selectColumns + ` FROM ` + r.table() + ` WHERE id = ?`
	rec, err := scanRecord(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	return rec, err
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Record, error) {
	query := `SELECT ` + selectColumns + ` FROM ` + r.table() + ` ORDER BY created_at, id`
	return r.query(ctx, query)
}

func (r *SQLiteRepository) ListBy(ctx context.Context, field string, value string) ([]*models.Record, error) {
	column := ""
	for _, fk := range r.fks {
		if fk.field == field {
			column = fk.column
		}
	}
	if column == "" {
		return nil, fmt.Errorf("%s cannot be filtered by %q", r.table(), field)
	}

	query := `SELECT ` + selectColumns + ` FROM ` + r.table() + ` WHERE ` + column + ` = ? ORDER BY created_at, id`
	return r.query(ctx, query, value)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", r.table(), err)
	}
	defer rows.Close()

	result := make([]*models.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.table(), err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", r.table(), err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.Record, error) {
	var (
		rec       models.Record
		userID    sql.NullString
		createdAt int64
		updatedAt int64
		data      []byte
	)
	if err := s.Scan(&rec.ID, &userID, &createdAt, &updatedAt, &data); err != nil {
		return nil, err
	}
	if userID.Valid {
		rec.UserID = &userID.String
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()

	fields, err := models.DecodeFields(data)
	if err != nil {
		return nil, err
	}
	rec.Fields = fields
	return &rec, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, rec *models.Record) error {
	if err := r.put(ctx, r.db, rec); err != nil {
		return fmt.Errorf("failed to upsert %s[%s]: %w", r.table(), rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) put(ctx context.Context, q dbx.DBTX, rec *models.Record) error {
	data, err := models.EncodeFields(rec.Fields)
	if err != nil {
		return err
	}

	columns := []string{"id", "user_id", "created_at", "updated_at", "data"}
	args := []any{rec.ID, nullString(rec.UserID), rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(), data}
	for _, fk := range r.fks {
		columns = append(columns, fk.column)
		args = append(args, rec.String(fk.field))
	}

	updates := make([]string, 0, len(columns)-1)
	for _, c := range columns[1:] {
		updates = append(updates, c+" = excluded."+c)
	}

	query := `INSERT INTO ` + r.table() + ` (` + strings.Join(columns, ", ") + `)
		VALUES (` + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + `)
		ON CONFLICT(id) DO UPDATE SET ` + strings.Join(updates, ", ")

	_, err = q.ExecContext(ctx, query, args...)
	return err
}

func (r *SQLiteRepository) UpsertLWW(ctx context.Context, rec *models.Record) (models.UpsertOutcome, error) {
	outcome := models.OutcomeSkipped

	err := dbx.RunInTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		existing, err := r.get(ctx, tx, rec.ID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		resolved, o := models.ResolveLWW(existing, rec, r.now())
		outcome = o
		if o == models.OutcomeSkipped {
			return nil
		}
		return r.put(ctx, tx, resolved)
	})
	if err != nil {
		return models.OutcomeSkipped, fmt.Errorf("failed to merge %s[%s]: %w", r.table(), rec.ID, err)
	}
	return outcome, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table()+` WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s[%s]: %w", r.table(), id, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

func (r *SQLiteRepository) Claim(ctx context.Context, id string, userID string) error {
	query := `UPDATE ` + r.table() + ` SET user_id = ? WHERE id = ? AND user_id IS NULL`
	if _, err := r.db.ExecContext(ctx, query, userID, id); err != nil {
		return fmt.Errorf("failed to claim %s[%s]: %w", r.table(), id, err)
	}
	return nil
}

func (r *SQLiteRepository) ClaimUnowned(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE `+r.table()+` SET user_id = ? WHERE user_id IS NULL`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to claim %s: %w", r.table(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
