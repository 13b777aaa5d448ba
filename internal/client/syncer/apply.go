package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
)

var errNoSnapshot = errors.New("queue entry has no snapshot")

// drain applies the queue oldest first. Remote failures bump the entry's
// retry counter and, at MaxRetries, drop it with a SyncError event. Entries
// that could not be decoded are dropped the same way without an attempt.
// Only local storage errors abort the loop.
func (e *Engine) drain(ctx context.Context, userID string) (DrainResult, error) {
	var res DrainResult

	entries, err := e.queue.Drain(ctx)
	if err != nil {
		return res, err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if entry.Invalid != nil {
			if err := e.drop(ctx, entry, entry.Invalid, &res); err != nil {
				return res, err
			}
			continue
		}

		owner := userID
		if entry.UserID != nil {
			owner = *entry.UserID
		}

		applyErr := e.apply(ctx, owner, entry)
		if applyErr == nil {
			if err := e.queue.Remove(ctx, entry.ID); err != nil {
				return res, err
			}
			if entry.Operation != models.OpDelete {
				if err := e.claim(ctx, entry.EntityType, entry.EntityID, owner); err != nil {
					return res, err
				}
			}
			res.Success++
			e.metrics.Applied.WithLabelValues("applied").Inc()
			e.log.Debug(ctx, "queue entry applied", "entry", entry.String())
			continue
		}

		res.Errors++
		retries, err := e.queue.IncrementRetry(ctx, entry.ID)
		if err != nil {
			return res, err
		}
		if retries < MaxRetries {
			e.metrics.Applied.WithLabelValues("failed").Inc()
			e.log.Warn(ctx, "queue entry failed", "entry", entry.String(), "retries", retries, "error", applyErr)
			continue
		}

		entry.Retries = retries
		if err := e.drop(ctx, entry, applyErr, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// drop removes an entry that will never be applied and reports it.
func (e *Engine) drop(ctx context.Context, entry *models.QueuedOperation, cause error, res *DrainResult) error {
	if err := e.queue.Remove(ctx, entry.ID); err != nil {
		return err
	}
	res.Dropped++
	e.metrics.Applied.WithLabelValues("dropped").Inc()
	e.log.Error(ctx, "queue entry dropped", "entry", entry.String(), "error", cause)
	e.bus.Publish(Event{Kind: SyncError, Err: cause, Operation: entry})
	return nil
}

func (e *Engine) apply(ctx context.Context, owner string, entry *models.QueuedOperation) error {
	switch entry.Operation {
	case models.OpCreate, models.OpUpdate:
		if entry.Data == nil {
			return errNoSnapshot
		}
		rec := entry.Data.Clone()
		rec.ID = entry.EntityID
		rec.UserID = &owner
		return e.remote.Upsert(ctx, owner, entry.EntityType, rec)
	case models.OpDelete:
		return e.remote.SoftDelete(ctx, owner, entry.EntityType, entry.EntityID)
	}
	return fmt.Errorf("unknown operation %q", entry.Operation)
}

// claim stamps the owner on a record that was created before anybody signed
// in. Records already owned, or deleted locally since, are left alone.
func (e *Engine) claim(ctx context.Context, t models.EntityType, id, owner string) error {
	store, ok := e.stores[t]
	if !ok {
		return nil
	}
	return store.Claim(ctx, id, owner)
}

// pull merges remote rows of one collection changed at or after since, then
// turns remote tombstones into local deletes.
func (e *Engine) pull(ctx context.Context, userID string, t models.EntityType, since *time.Time, report *Report) error {
	store, ok := e.stores[t]
	if !ok {
		return fmt.Errorf("no local store for %s", t)
	}

	recs, err := e.remote.FetchUpdated(ctx, userID, t, since)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		outcome, err := store.UpsertLWW(ctx, rec)
		if err != nil {
			return err
		}
		e.metrics.Pulled.WithLabelValues(string(t), outcome.String()).Inc()

		switch outcome {
		case models.OutcomeCreated:
			report.Created++
			e.bus.Publish(Event{Kind: EntityCreated, EntityType: t, EntityID: rec.ID, Record: rec})
		case models.OutcomeUpdated:
			report.Updated++
			e.bus.Publish(Event{Kind: EntityUpdated, EntityType: t, EntityID: rec.ID, Record: rec})
		default:
			report.Unchanged++
		}
	}

	ids, err := e.remote.FetchDeleted(ctx, userID, t, since)
	if err != nil {
		return err
	}
	for _, id := range ids {
		existed, err := store.DeleteByID(ctx, id)
		if err != nil {
			return err
		}
		if !existed {
			continue
		}
		report.Deleted++
		e.metrics.Pulled.WithLabelValues(string(t), "deleted").Inc()
		e.bus.Publish(Event{Kind: EntityDeleted, EntityType: t, EntityID: id})
	}
	return nil
}
