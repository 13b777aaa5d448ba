package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dmitrijs2005/giftkeeper/internal/client/blob"
	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/entities"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/syncqueue"
	"github.com/dmitrijs2005/giftkeeper/internal/common"
	"github.com/dmitrijs2005/giftkeeper/internal/timex"
)

const backupVersion = 1

// Snapshot is the JSON document written by Export.
type Snapshot struct {
	Version    int                                    `json:"version"`
	ExportedAt time.Time                              `json:"exportedAt"`
	UserID     string                                 `json:"userId,omitempty"`
	Data       map[models.EntityType][]*models.Record `json:"data"`
}

// RestoreResult counts what a restore changed locally.
type RestoreResult struct {
	Created int
	Updated int
	Skipped int
	// Unchanged counts records that won the merge but already matched the
	// local copy. They are not queued again.
	Unchanged int
}

type BackupService interface {
	// Export uploads every local collection and returns the object key.
	Export(ctx context.Context) (string, error)
	// Restore merges a backup with last-write-wins. Newer local data is
	// never overwritten; restored changes are queued for sync.
	Restore(ctx context.Context, key string) (RestoreResult, error)
	// Latest returns the key of the newest backup, "" if there is none.
	Latest(ctx context.Context) (string, error)
}

type backupService struct {
	store    blob.Store
	stores   map[models.EntityType]entities.Repository
	queue    syncqueue.Repository
	owner    Owner
	notifier Notifier
	now      func() time.Time
}

func NewBackupService(store blob.Store, stores map[models.EntityType]entities.Repository, queue syncqueue.Repository, owner Owner, notifier Notifier) BackupService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &backupService{store: store, stores: stores, queue: queue, owner: owner, notifier: notifier, now: timex.Now}
}

func (s *backupService) prefix() string {
	if uid, ok := s.owner.UserID(); ok {
		return "backups/" + uid + "/"
	}
	return "backups/local/"
}

func (s *backupService) Export(ctx context.Context) (string, error) {
	snap := Snapshot{
		Version:    backupVersion,
		ExportedAt: s.now(),
		Data:       make(map[models.EntityType][]*models.Record, len(models.PullOrder)),
	}
	if uid, ok := s.owner.UserID(); ok {
		snap.UserID = uid
	}
	for _, t := range models.PullOrder {
		recs, err := s.stores[t].List(ctx)
		if err != nil {
			return "", fmt.Errorf("export %s: %w", t, err)
		}
		snap.Data[t] = recs
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	key := s.prefix() + snap.ExportedAt.Format("20060102T150405.000000Z") + ".json"
	if err := s.store.Put(ctx, key, bytes.NewReader(body), "application/json"); err != nil {
		return "", err
	}
	return key, nil
}

func (s *backupService) Restore(ctx context.Context, key string) (RestoreResult, error) {
	var res RestoreResult

	rc, err := s.store.Get(ctx, key)
	if err != nil {
		return res, err
	}
	defer rc.Close()

	var snap Snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return res, fmt.Errorf("decode backup %s: %w", key, err)
	}
	if snap.Version != backupVersion {
		return res, fmt.Errorf("backup %s has unsupported version %d", key, snap.Version)
	}

	var owner *string
	if uid, ok := s.owner.UserID(); ok {
		owner = &uid
	}

	defer s.notifier.Notify(ctx)
	for _, t := range models.PullOrder {
		for _, rec := range snap.Data[t] {
			if owner != nil {
				rec.UserID = owner
			}
			before, err := s.stores[t].Get(ctx, rec.ID)
			if err != nil && !errors.Is(err, common.ErrorNotFound) {
				return res, err
			}
			outcome, err := s.stores[t].UpsertLWW(ctx, rec)
			if err != nil {
				return res, err
			}
			if outcome == models.OutcomeSkipped {
				res.Skipped++
				continue
			}

			stored, err := s.stores[t].Get(ctx, rec.ID)
			if err != nil {
				return res, err
			}

			var op models.Operation
			switch {
			case outcome == models.OutcomeCreated:
				res.Created++
				op = models.OpCreate
			case cmp.Equal(before, stored):
				res.Unchanged++
				continue
			default:
				res.Updated++
				op = models.OpUpdate
			}

			if _, err := s.queue.Enqueue(ctx, op, t, rec.ID, stored, stored.UserID); err != nil {
				return res, fmt.Errorf("enqueue restored %s[%s]: %w", t, rec.ID, err)
			}
		}
	}
	return res, nil
}

func (s *backupService) Latest(ctx context.Context) (string, error) {
	keys, err := s.store.List(ctx, s.prefix())
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", nil
	}
	return keys[len(keys)-1], nil
}
