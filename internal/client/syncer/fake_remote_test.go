package syncer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/giftkeeper/internal/client/client"
	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
)

type remoteRow struct {
	rec       *models.Record
	deletedAt *time.Time
}

// fakeRemote is an in-memory backend. Unused account methods come from the
// embedded interface and panic if called.
type fakeRemote struct {
	client.Client

	mu   sync.Mutex
	rows map[models.EntityType]map[string]*remoteRow
	now  time.Time

	down        atomic.Bool  // fails pings and writes
	unreachable atomic.Bool  // fails pings only
	failWrites  atomic.Int32 // remaining writes to fail, -1 fails forever
	fetchErr    map[models.EntityType]error
	clockErr    error

	// when block is set, Upsert signals entered and waits on block
	block   chan struct{}
	entered chan struct{}

	writes     atomic.Int32
	fetchOrder []models.EntityType
	sinceSeen  []*time.Time
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		rows:     map[models.EntityType]map[string]*remoteRow{},
		now:      time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC),
		fetchErr: map[models.EntityType]error{},
	}
}

func (f *fakeRemote) Ping(ctx context.Context) error {
	if f.down.Load() || f.unreachable.Load() {
		return client.ErrUnavailable
	}
	return nil
}

func (f *fakeRemote) ServerTime(ctx context.Context) (time.Time, error) {
	if f.down.Load() {
		return time.Time{}, client.ErrUnavailable
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clockErr != nil {
		return time.Time{}, f.clockErr
	}
	return f.now, nil
}

func (f *fakeRemote) setNow(at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = at
}

func (f *fakeRemote) writeErr() error {
	f.writes.Add(1)
	if f.down.Load() {
		return client.ErrUnavailable
	}
	for {
		n := f.failWrites.Load()
		if n == 0 {
			return nil
		}
		if n < 0 {
			return client.ErrUnavailable
		}
		if f.failWrites.CompareAndSwap(n, n-1) {
			return client.ErrUnavailable
		}
	}
}

func (f *fakeRemote) put(t models.EntityType, rec *models.Record, deletedAt *time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows[t] == nil {
		f.rows[t] = map[string]*remoteRow{}
	}
	f.rows[t][rec.ID] = &remoteRow{rec: rec.Clone(), deletedAt: deletedAt}
}

func (f *fakeRemote) get(t models.EntityType, id string) *remoteRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[t][id]
}

func (f *fakeRemote) Upsert(ctx context.Context, userID string, t models.EntityType, rec *models.Record) error {
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	if err := f.writeErr(); err != nil {
		return err
	}
	stored := rec.Clone()
	stored.UserID = &userID
	f.mu.Lock()
	// the backend trigger stamps inserts and updates alike
	stored.UpdatedAt = f.now
	f.mu.Unlock()
	f.put(t, stored, nil)
	return nil
}

func (f *fakeRemote) SoftDelete(ctx context.Context, userID string, t models.EntityType, id string) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[t][id]; ok && row.deletedAt == nil {
		at := f.now
		row.deletedAt = &at
	}
	return nil
}

func (f *fakeRemote) FetchUpdated(ctx context.Context, userID string, t models.EntityType, since *time.Time) ([]*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchOrder = append(f.fetchOrder, t)
	f.sinceSeen = append(f.sinceSeen, since)
	if err := f.fetchErr[t]; err != nil {
		return nil, err
	}

	var out []*models.Record
	for _, row := range f.rows[t] {
		if row.deletedAt != nil || row.rec.Owner() != userID {
			continue
		}
		if since != nil && row.rec.UpdatedAt.Before(*since) {
			continue
		}
		out = append(out, row.rec.Clone())
	}
	return out, nil
}

func (f *fakeRemote) FetchDeleted(ctx context.Context, userID string, t models.EntityType, since *time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for id, row := range f.rows[t] {
		if row.deletedAt == nil || row.rec.Owner() != userID {
			continue
		}
		if since != nil && row.deletedAt.Before(*since) {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}
