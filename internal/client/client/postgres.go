package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
	"github.com/dmitrijs2005/giftkeeper/internal/dbx"
)

// PostgresClient talks to the hosted PostgreSQL backend directly. Every
// entity call runs in its own transaction with request.jwt.claim.sub set to
// the acting user so row-level security policies apply.
type PostgresClient struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresClient opens a lazily connecting pool for dsn. Reachability is
// established by Ping, not here.
func NewPostgresClient(dsn string, timeout time.Duration) (*PostgresClient, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open remote store: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(time.Minute)
	return NewPostgresClientFromDB(db, timeout), nil
}

func NewPostgresClientFromDB(db *sql.DB, timeout time.Duration) *PostgresClient {
	return &PostgresClient{db: db, timeout: timeout}
}

func (c *PostgresClient) Close() error {
	return c.db.Close()
}

func (c *PostgresClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (c *PostgresClient) ServerTime(ctx context.Context) (time.Time, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var now time.Time
	if err := c.db.QueryRowContext(ctx, `SELECT now()`).Scan(&now); err != nil {
		return time.Time{}, fmt.Errorf("server time: %w", mapError(err))
	}
	return now.UTC(), nil
}

func (c *PostgresClient) Register(ctx context.Context, username string, salt []byte, verifier []byte) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var id string
	err := c.db.QueryRowContext(ctx,
		`INSERT INTO users (username, salt, verifier) VALUES ($1, $2, $3) RETURNING id`,
		username, salt, verifier,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("register %s: %w", username, mapError(err))
	}
	return id, nil
}

func (c *PostgresClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var salt []byte
	err := c.db.QueryRowContext(ctx, `SELECT salt FROM users WHERE username = $1`, username).Scan(&salt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, mapError(err)
	}
	return salt, nil
}

func (c *PostgresClient) Login(ctx context.Context, username string, verifier []byte) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var id string
	err := c.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE username = $1 AND verifier = $2`, username, verifier,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", mapError(err)
	}
	return id, nil
}

// asUser runs fn in a transaction scoped to userID.
func (c *PostgresClient) asUser(ctx context.Context, userID string, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	err := dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `SELECT set_config('request.jwt.claim.sub', $1, true)`, userID); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
	return mapError(err)
}

func (c *PostgresClient) Upsert(ctx context.Context, userID string, entityType models.EntityType, rec *models.Record) error {
	m, err := mappingFor(entityType)
	if err != nil {
		return err
	}

	columns := append([]string{"id", "user_id", "created_at", "updated_at"}, m.names()...)
	args := append([]any{rec.ID, userID, rec.CreatedAt, rec.UpdatedAt}, m.values(rec)...)

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	updates := make([]string, 0, len(columns))
	for _, name := range append(m.names(), "updated_at") {
		updates = append(updates, name+" = EXCLUDED."+name)
	}

	query := `INSERT INTO ` + m.table + ` (` + strings.Join(columns, ", ") + `)
		VALUES (` + strings.Join(placeholders, ", ") + `)
		ON CONFLICT (id) DO UPDATE SET ` + strings.Join(updates, ", ") + `
		WHERE ` + m.table + `.user_id = EXCLUDED.user_id`

	err = c.asUser(ctx, userID, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// the id exists but belongs to somebody else
			return ErrUnauthorized
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert %s[%s]: %w", entityType, rec.ID, err)
	}
	return nil
}

func (c *PostgresClient) SoftDelete(ctx context.Context, userID string, entityType models.EntityType, id string) error {
	m, err := mappingFor(entityType)
	if err != nil {
		return err
	}

	query := `UPDATE ` + m.table + ` SET deleted_at = now() WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`
	err = c.asUser(ctx, userID, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, query, id, userID)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete %s[%s]: %w", entityType, id, err)
	}
	return nil
}

func (c *PostgresClient) FetchUpdated(ctx context.Context, userID string, entityType models.EntityType, since *time.Time) ([]*models.Record, error) {
	m, err := mappingFor(entityType)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, created_at, updated_at, ` + strings.Join(m.names(), ", ") + `
		FROM ` + m.table + ` WHERE user_id = $1 AND deleted_at IS NULL`
	args := []any{userID}
	if since != nil {
		query += ` AND updated_at >= $2`
		args = append(args, *since)
	}
	query += ` ORDER BY updated_at, id`

	result := make([]*models.Record, 0)
	err = c.asUser(ctx, userID, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				rec   models.Record
				owner string
			)
			targets := m.scanTargets()
			dest := append([]any{&rec.ID, &owner, &rec.CreatedAt, &rec.UpdatedAt}, targets...)
			if err := rows.Scan(dest...); err != nil {
				return err
			}
			rec.UserID = &owner
			rec.CreatedAt = rec.CreatedAt.UTC()
			rec.UpdatedAt = rec.UpdatedAt.UTC()
			rec.Fields = m.fields(targets)
			result = append(result, &rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", entityType, err)
	}
	return result, nil
}

func (c *PostgresClient) FetchDeleted(ctx context.Context, userID string, entityType models.EntityType, since *time.Time) ([]string, error) {
	m, err := mappingFor(entityType)
	if err != nil {
		return nil, err
	}

	query := `SELECT id FROM ` + m.table + ` WHERE user_id = $1 AND deleted_at IS NOT NULL`
	args := []any{userID}
	if since != nil {
		query += ` AND deleted_at >= $2`
		args = append(args, *since)
	}

	ids := make([]string, 0)
	err = c.asUser(ctx, userID, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("fetch deleted %s: %w", entityType, err)
	}
	return ids, nil
}
