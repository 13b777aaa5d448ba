package syncqueue

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/giftkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
	"github.com/dmitrijs2005/giftkeeper/internal/common"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

// frozen makes every entry share one created_at so ordering falls back to
// the insertion sequence.
func frozen(r *SQLiteRepository) *SQLiteRepository {
	ts := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return ts }
	return r
}

func TestEnqueueAndDrain_Snapshot(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	uid := "u1"
	snap := models.Holiday{ID: "h1", Name: "Xmas", Date: "2025-12-25", CreatedAt: time.Unix(10, 0).UTC(), UpdatedAt: time.Unix(20, 0).UTC()}.Record()

	id, err := repo.Enqueue(ctx, models.OpCreate, models.EntityHolidays, "h1", snap, &uid)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	items, err := repo.Drain(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := items[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, models.OpCreate, got.Operation)
	assert.Equal(t, models.EntityHolidays, got.EntityType)
	assert.Equal(t, "h1", got.EntityID)
	assert.Equal(t, snap, got.Data)
	assert.Equal(t, "u1", *got.UserID)
	assert.Zero(t, got.Retries)

	// Drain does not consume
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDrain_FIFOWithTieBreak(t *testing.T) {
	repo := frozen(NewSQLiteRepository(setupDB(t)))
	ctx := context.Background()

	ops := []struct {
		op models.Operation
		id string
	}{
		{models.OpCreate, "h1"},
		{models.OpUpdate, "h1"},
		{models.OpUpdate, "h1"},
		{models.OpDelete, "h1"},
	}
	for _, o := range ops {
		var snap *models.Record
		if o.op != models.OpDelete {
			snap = &models.Record{ID: o.id}
		}
		_, err := repo.Enqueue(ctx, o.op, models.EntityHolidays, o.id, snap, nil)
		require.NoError(t, err)
	}

	items, err := repo.Drain(ctx)
	require.NoError(t, err)
	require.Len(t, items, 4, "updates are never coalesced")
	for i, o := range ops {
		assert.Equal(t, o.op, items[i].Operation)
	}
	assert.Nil(t, items[3].Data)
	assert.Nil(t, items[3].UserID)
}

func TestDrain_OrdersByCreatedAt(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	clock := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	_, err := repo.Enqueue(ctx, models.OpDelete, models.EntityGifts, "late", nil, nil)
	require.NoError(t, err)

	clock = clock.Add(-time.Hour)
	_, err = repo.Enqueue(ctx, models.OpDelete, models.EntityGifts, "early", nil, nil)
	require.NoError(t, err)

	items, err := repo.Drain(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "early", items[0].EntityID)
	assert.Equal(t, "late", items[1].EntityID)
}

func TestRemove_IsIdempotent(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	id, err := repo.Enqueue(ctx, models.OpDelete, models.EntityGifts, "g1", nil, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, id))
	require.NoError(t, repo.Remove(ctx, id))
	require.NoError(t, repo.Remove(ctx, "never-existed"))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIncrementRetry(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	id, err := repo.Enqueue(ctx, models.OpDelete, models.EntityGifts, "g1", nil, nil)
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		got, err := repo.IncrementRetry(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	items, err := repo.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, items[0].Retries)

	_, err = repo.IncrementRetry(ctx, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestClaimUnowned(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	other := "u2"
	_, err := repo.Enqueue(ctx, models.OpDelete, models.EntityGifts, "g1", nil, nil)
	require.NoError(t, err)
	_, err = repo.Enqueue(ctx, models.OpDelete, models.EntityGifts, "g2", nil, &other)
	require.NoError(t, err)

	n, err := repo.ClaimUnowned(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	items, err := repo.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", *items[0].UserID)
	assert.Equal(t, "u2", *items[1].UserID)
}

func TestStorageErrorsAreReturned(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := repo.Enqueue(ctx, models.OpDelete, models.EntityGifts, "g1", nil, nil)
	require.ErrorContains(t, err, "failed to enqueue delete gifts[g1]")

	_, err = repo.Drain(ctx)
	require.ErrorContains(t, err, "failed to read sync queue")

	_, err = repo.Count(ctx)
	require.ErrorContains(t, err, "failed to count sync queue")

	err = repo.Remove(ctx, "x")
	require.ErrorContains(t, err, "failed to remove sync queue entry x")
}

func TestDrain_UndecodableEntriesAreMarkedInvalid(t *testing.T) {
	db := setupDB(t)
	repo := frozen(NewSQLiteRepository(db))
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_queue (id, operation, entity_type, entity_id, data, user_id, created_at, retries) VALUES
			('bad-data', 'create', 'holidays', 'h1', x'ffffff', NULL, 1, 0),
			('bad-op', 'rename', 'gifts', 'g1', NULL, NULL, 2, 0)
	`)
	require.NoError(t, err)
	_, err = repo.Enqueue(ctx, models.OpDelete, models.EntityGifts, "g2", nil, nil)
	require.NoError(t, err)

	items, err := repo.Drain(ctx)
	require.NoError(t, err, "one broken row does not block the queue")
	require.Len(t, items, 3)

	assert.Equal(t, "bad-data", items[0].ID)
	require.Error(t, items[0].Invalid)
	assert.Contains(t, items[0].Invalid.Error(), "sync queue entry bad-data")
	assert.Nil(t, items[0].Data)

	assert.Equal(t, "bad-op", items[1].ID)
	require.Error(t, items[1].Invalid)
	assert.Equal(t, models.Operation("rename"), items[1].Operation)
	assert.Equal(t, models.EntityGifts, items[1].EntityType)

	assert.NoError(t, items[2].Invalid)
	assert.Equal(t, "g2", items[2].EntityID)
}
