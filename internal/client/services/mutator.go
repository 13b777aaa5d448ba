package services

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/entities"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/syncqueue"
	"github.com/dmitrijs2005/giftkeeper/internal/timex"
)

// Owner reports the signed-in user, if any.
type Owner interface {
	UserID() (string, bool)
}

// Notifier is told after local mutations were enqueued. The sync engine
// implements it by draining the queue when online.
type Notifier interface {
	Notify(ctx context.Context)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context) {}

// mutator writes one collection and records every change in the sync queue.
// It never notifies; public service methods do that once per user action.
type mutator struct {
	entityType models.EntityType
	store      entities.Repository
	queue      syncqueue.Repository
	owner      Owner
	now        func() time.Time
}

func newMutator(t models.EntityType, store entities.Repository, queue syncqueue.Repository, owner Owner) mutator {
	return mutator{entityType: t, store: store, queue: queue, owner: owner, now: timex.Now}
}

func (m *mutator) currentOwner() *string {
	if m.owner == nil {
		return nil
	}
	if uid, ok := m.owner.UserID(); ok {
		return &uid
	}
	return nil
}

func (m *mutator) create(ctx context.Context, fields map[string]any) (*models.Record, error) {
	now := m.now()
	owner := m.currentOwner()
	rec := &models.Record{
		ID:        uuid.NewString(),
		UserID:    owner,
		CreatedAt: now,
		UpdatedAt: now,
		Fields:    fields,
	}

	if err := m.store.Put(ctx, rec); err != nil {
		return nil, err
	}
	if _, err := m.queue.Enqueue(ctx, models.OpCreate, m.entityType, rec.ID, rec, owner); err != nil {
		return nil, fmt.Errorf("enqueue create %s[%s]: %w", m.entityType, rec.ID, err)
	}
	return rec, nil
}

// update merges fields into the stored record. updatedAt never moves
// backwards even if the wall clock does.
func (m *mutator) update(ctx context.Context, id string, fields map[string]any) (*models.Record, error) {
	existing, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rec := existing.Clone()
	maps.Copy(rec.Fields, fields)
	rec.UpdatedAt = timex.Max(m.now(), existing.UpdatedAt)
	if rec.UserID == nil {
		rec.UserID = m.currentOwner()
	}

	if err := m.store.Put(ctx, rec); err != nil {
		return nil, err
	}
	if _, err := m.queue.Enqueue(ctx, models.OpUpdate, m.entityType, rec.ID, rec, rec.UserID); err != nil {
		return nil, fmt.Errorf("enqueue update %s[%s]: %w", m.entityType, rec.ID, err)
	}
	return rec, nil
}

// remove hard-deletes locally and enqueues the remote soft delete. It
// reports false without enqueueing when the record did not exist.
func (m *mutator) remove(ctx context.Context, id string) (bool, error) {
	existed, err := m.store.DeleteByID(ctx, id)
	if err != nil || !existed {
		return false, err
	}
	if _, err := m.queue.Enqueue(ctx, models.OpDelete, m.entityType, id, nil, m.currentOwner()); err != nil {
		return true, fmt.Errorf("enqueue delete %s[%s]: %w", m.entityType, id, err)
	}
	return true, nil
}

func (m *mutator) removeBy(ctx context.Context, field, value string) (int, error) {
	recs, err := m.store.ListBy(ctx, field, value)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range recs {
		ok, err := m.remove(ctx, rec.ID)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}
