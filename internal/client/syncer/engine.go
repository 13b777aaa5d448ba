package syncer

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/giftkeeper/internal/client/client"
	"github.com/dmitrijs2005/giftkeeper/internal/client/events"
	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/entities"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/syncqueue"
	"github.com/dmitrijs2005/giftkeeper/internal/client/session"
	"github.com/dmitrijs2005/giftkeeper/internal/common"
	"github.com/dmitrijs2005/giftkeeper/internal/logging"
)

// MaxRetries is the number of failed remote applies after which a queue
// entry is dropped.
const MaxRetries = 3

const DefaultInterval = 5 * time.Minute

// Session is the authentication state the engine acts upon.
type Session interface {
	UserID() (string, bool)
	Subscribe() (<-chan session.State, func())
}

// Connectivity reports whether the remote store is reachable.
type Connectivity interface {
	IsOnline() bool
	Subscribe() (<-chan bool, func())
}

// DrainResult summarises one pass over the queue.
type DrainResult struct {
	Success int
	Errors  int
	Dropped int
	// Skipped is set when another pass was already running.
	Skipped bool
}

// Report summarises a full reconciliation.
type Report struct {
	Push      DrainResult
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
	Skipped   bool
}

type Engine struct {
	queue  syncqueue.Repository
	meta   metadata.Repository
	stores map[models.EntityType]entities.Repository
	remote client.Client
	sess   Session
	conn   Connectivity
	log    logging.Logger

	interval time.Duration
	metrics  *Metrics

	syncing atomic.Bool
	bus     *events.Bus[Event]
	wg      gosync.WaitGroup
}

type Option func(*Engine)

func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(repos *client.Repositories, remote client.Client, sess Session, conn Connectivity, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		queue:    repos.Queue,
		meta:     repos.Metadata,
		stores:   repos.Entities(),
		remote:   remote,
		sess:     sess,
		conn:     conn,
		log:      log,
		interval: DefaultInterval,
		bus:      events.NewBus[Event](),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	return e
}

// Subscribe delivers engine events. buffer bounds how far a listener may lag
// before events are dropped for it.
func (e *Engine) Subscribe(buffer int) (<-chan Event, func()) {
	return e.bus.Subscribe(buffer)
}

func (e *Engine) IsSyncInProgress() bool {
	return e.syncing.Load()
}

func (e *Engine) QueueCount(ctx context.Context) (int, error) {
	return e.queue.Count(ctx)
}

// LastSync returns the watermark of the last successful reconciliation, nil
// before the first one.
func (e *Engine) LastSync(ctx context.Context) (*time.Time, error) {
	return e.meta.GetTime(ctx, common.MetaLastFullSyncAt)
}

// ready returns the acting user when sync is possible at all.
func (e *Engine) ready() (string, error) {
	userID, ok := e.sess.UserID()
	if !ok {
		return "", ErrNotAuthenticated
	}
	if !e.conn.IsOnline() {
		return "", ErrOffline
	}
	return userID, nil
}

// Notify is called by the domain services right after a mutation was
// enqueued. It drains the queue when online and authenticated and is a no-op
// otherwise.
func (e *Engine) Notify(ctx context.Context) {
	if _, err := e.ready(); err != nil {
		return
	}
	if _, err := e.ProcessQueue(ctx); err != nil {
		e.log.Error(ctx, "queue drain failed", "error", err)
	}
}

// ProcessQueue pushes every pending queue entry to the remote store.
// Failures are isolated per entry; the returned error is reserved for local
// storage failures.
func (e *Engine) ProcessQueue(ctx context.Context) (DrainResult, error) {
	userID, err := e.ready()
	if err != nil {
		return DrainResult{Skipped: true}, err
	}
	if !e.syncing.CompareAndSwap(false, true) {
		e.metrics.Passes.WithLabelValues("drain", "skipped").Inc()
		return DrainResult{Skipped: true}, nil
	}
	defer e.syncing.Store(false)

	res, err := e.drain(ctx, userID)
	e.updateQueueDepth(ctx)
	if err != nil {
		e.metrics.Passes.WithLabelValues("drain", "failed").Inc()
		e.bus.Publish(Event{Kind: SyncError, Err: err})
		return res, err
	}

	e.metrics.Passes.WithLabelValues("drain", "ok").Inc()
	e.bus.Publish(Event{Kind: SyncCompleted, Success: res.Success, Errors: res.Errors})
	return res, nil
}

// SyncAll pushes the queue and then pulls holidays, recipients and gifts
// changed since the last successful pass. The watermark is the backend clock
// read at pass start and only moves when the whole pass succeeds.
func (e *Engine) SyncAll(ctx context.Context) (Report, error) {
	userID, err := e.ready()
	if err != nil {
		return Report{Skipped: true}, err
	}
	if !e.syncing.CompareAndSwap(false, true) {
		e.metrics.Passes.WithLabelValues("full", "skipped").Inc()
		return Report{Skipped: true}, nil
	}
	defer e.syncing.Store(false)

	e.bus.Publish(Event{Kind: SyncStarted})
	e.log.Info(ctx, "sync started", "user_id", userID)

	report, started, err := e.syncAll(ctx, userID)
	e.updateQueueDepth(ctx)
	if err != nil {
		e.metrics.Passes.WithLabelValues("full", "failed").Inc()
		e.log.Error(ctx, "sync failed", "error", err)
		e.bus.Publish(Event{Kind: SyncError, Err: err})
		return report, err
	}

	e.metrics.Passes.WithLabelValues("full", "ok").Inc()
	e.metrics.LastSuccess.Set(float64(started.Unix()))
	e.log.Info(ctx, "sync completed",
		"pushed", report.Push.Success, "push_errors", report.Push.Errors,
		"created", report.Created, "updated", report.Updated, "deleted", report.Deleted)
	e.bus.Publish(Event{Kind: SyncCompleted, Success: report.Push.Success, Errors: report.Push.Errors})
	return report, nil
}

func (e *Engine) syncAll(ctx context.Context, userID string) (Report, time.Time, error) {
	var report Report

	// Remote rows are stamped by the backend, so the next pass must compare
	// against the backend clock rather than ours.
	started, err := e.remote.ServerTime(ctx)
	if err != nil {
		return report, started, fmt.Errorf("read server time: %w", err)
	}

	push, err := e.drain(ctx, userID)
	report.Push = push
	if err != nil {
		return report, started, fmt.Errorf("push: %w", err)
	}

	since, err := e.meta.GetTime(ctx, common.MetaLastFullSyncAt)
	if err != nil {
		return report, started, fmt.Errorf("read watermark: %w", err)
	}

	for _, t := range models.PullOrder {
		if err := e.pull(ctx, userID, t, since, &report); err != nil {
			return report, started, fmt.Errorf("pull %s: %w", t, err)
		}
	}

	if err := e.meta.SetTime(ctx, common.MetaLastFullSyncAt, started); err != nil {
		return report, started, fmt.Errorf("save watermark: %w", err)
	}
	return report, started, nil
}

func (e *Engine) updateQueueDepth(ctx context.Context) {
	if n, err := e.queue.Count(ctx); err == nil {
		e.metrics.QueueDepth.Set(float64(n))
	}
}

// Run reacts to session and connectivity transitions and to the periodic
// ticker by starting full reconciliations. A pass is also attempted right
// after subscribing, which covers transitions published before Run started.
// It returns when ctx is done and every pass it started has finished.
func (e *Engine) Run(ctx context.Context) {
	sessCh, unsubSession := e.sess.Subscribe()
	defer unsubSession()
	connCh, unsubConn := e.conn.Subscribe()
	defer unsubConn()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	defer e.wg.Wait()

	e.trigger(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			return

		case st, ok := <-sessCh:
			if !ok {
				sessCh = nil
				continue
			}
			if st.Authenticated {
				e.trigger(ctx, "signed in")
			}

		case online, ok := <-connCh:
			if !ok {
				connCh = nil
				continue
			}
			if online {
				e.trigger(ctx, "back online")
			}

		case <-ticker.C:
			e.trigger(ctx, "tick")
		}
	}
}

func (e *Engine) trigger(ctx context.Context, reason string) {
	if _, err := e.ready(); err != nil {
		return
	}
	if e.IsSyncInProgress() {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.log.Debug(ctx, "sync triggered", "reason", reason)
		_, err := e.SyncAll(ctx)
		if err != nil && !errors.Is(err, ErrNotAuthenticated) && !errors.Is(err, ErrOffline) {
			e.log.Warn(ctx, "triggered sync failed", "reason", reason, "error", err)
		}
	}()
}
