package client

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/giftkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/entities"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/syncqueue"
)

// Repositories bundles every local store over one SQLite handle.
type Repositories struct {
	DB         *sql.DB
	Metadata   metadata.Repository
	Queue      syncqueue.Repository
	Holidays   entities.Repository
	Recipients entities.Repository
	Gifts      entities.Repository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		DB:         db,
		Metadata:   metadata.NewSQLiteRepository(db),
		Queue:      syncqueue.NewSQLiteRepository(db),
		Holidays:   entities.NewSQLiteRepository(db, models.EntityHolidays),
		Recipients: entities.NewSQLiteRepository(db, models.EntityRecipients),
		Gifts:      entities.NewSQLiteRepository(db, models.EntityGifts),
	}
}

// Entities maps each synchronised collection to its repository.
func (r *Repositories) Entities() map[models.EntityType]entities.Repository {
	return map[models.EntityType]entities.Repository{
		models.EntityHolidays:   r.Holidays,
		models.EntityRecipients: r.Recipients,
		models.EntityGifts:      r.Gifts,
	}
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrations.Up(ctx, db)
}

// InitDatabase opens the local SQLite store at dsn and applies migrations.
// SQLite has a single writer, so the pool is pinned to one connection and
// concurrent callers queue on it.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewRepositories(db), nil
}
