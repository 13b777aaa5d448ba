package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/giftkeeper/internal/client/blob"
	"github.com/dmitrijs2005/giftkeeper/internal/client/client"
	"github.com/dmitrijs2005/giftkeeper/internal/client/config"
	"github.com/dmitrijs2005/giftkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/giftkeeper/internal/client/services"
	"github.com/dmitrijs2005/giftkeeper/internal/client/session"
	"github.com/dmitrijs2005/giftkeeper/internal/client/status"
	"github.com/dmitrijs2005/giftkeeper/internal/client/syncer"
	"github.com/dmitrijs2005/giftkeeper/internal/filex"
	"github.com/dmitrijs2005/giftkeeper/internal/logging"
)

// syncControl is the part of the sync engine the commands use.
type syncControl interface {
	SyncAll(ctx context.Context) (syncer.Report, error)
	QueueCount(ctx context.Context) (int, error)
	IsSyncInProgress() bool
	LastSync(ctx context.Context) (*time.Time, error)
}

type sessionView interface {
	State() session.State
}

type presence interface {
	IsOnline() bool
}

type App struct {
	config *config.Config
	log    logging.Logger

	session sessionView
	online  presence
	sync    syncControl

	authService      services.AuthService
	holidayService   services.HolidayService
	recipientService services.RecipientService
	giftService      services.GiftService
	backupService    services.BackupService

	// background workers, nil in tests
	engine   *syncer.Engine
	monitor  *connectivity.Monitor
	registry *prometheus.Registry
	sess     *session.Session

	closers []io.Closer
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp builds the object graph: local store, remote adapter, session,
// connectivity monitor, sync engine, then the services on top of them.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	for _, path := range []string{c.LogFile, filex.SQLitePath(c.LocalDSN)} {
		if err := filex.EnsureParentDir(path); err != nil {
			return nil, err
		}
	}

	logger, logCloser := logging.NewFileLogger(c.LogFile, slog.LevelInfo)
	closers := []io.Closer{logCloser}
	fail := func(err error) (*App, error) {
		closeAll(closers)
		return nil, err
	}

	repos, err := client.InitDatabase(ctx, c.LocalDSN)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return fail(err)
	}
	closers = append(closers, repos)

	remote, err := client.NewPostgresClient(c.RemoteDSN, c.RemoteTimeout)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, remote)

	sess := session.New()
	monitor := connectivity.NewMonitor(remote, c.OnlineCheckInterval, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine := syncer.NewEngine(repos, remote, sess, monitor, logger,
		syncer.WithInterval(c.SyncInterval),
		syncer.WithMetrics(syncer.NewMetrics(registry)),
	)

	gifts := services.NewGiftService(repos.Gifts, repos.Recipients, repos.Queue, sess, engine)
	recipients := services.NewRecipientService(repos.Recipients, repos.Holidays, repos.Queue, gifts, sess, engine)
	holidays := services.NewHolidayService(repos.Holidays, repos.Queue, recipients, gifts, sess, engine)

	var store blob.Store
	if c.S3.Bucket != "" {
		store, err = blob.NewS3Store(ctx, blob.S3Config{
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			Endpoint:        c.S3.Endpoint,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			PathStyle:       c.S3.PathStyle,
		})
		if err != nil {
			return fail(err)
		}
	} else {
		logger.Warn(ctx, "no backup bucket configured, backups are kept in memory")
		store = blob.NewMemoryStore()
	}

	return &App{
		config:           c,
		log:              logger,
		session:          sess,
		online:           monitor,
		sync:             engine,
		authService:      services.NewAuthService(remote, repos.DB, sess, c.SessionTTL, logger),
		holidayService:   holidays,
		recipientService: recipients,
		giftService:      gifts,
		backupService:    services.NewBackupService(store, repos.Entities(), repos.Queue, sess, engine),
		engine:           engine,
		monitor:          monitor,
		registry:         registry,
		sess:             sess,
		closers:          closers,
		reader:           bufio.NewReader(os.Stdin),
		out:              os.Stdout,
	}, nil
}

func closeAll(closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		if closers[i] != nil {
			_ = closers[i].Close()
		}
	}
}

// Run starts the background workers, resumes a stored session and runs the
// REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	defer func() {
		cancel()
		wg.Wait()
		_ = a.authService.Close(context.Background())
		closeAll(a.closers)
	}()

	wg.Add(3)
	go func() { defer wg.Done(); a.monitor.Run(ctx) }()
	go func() { defer wg.Done(); a.engine.Run(ctx) }()
	go func() { defer wg.Done(); a.watchEvents(ctx) }()

	if a.config.StatusAddr != "" {
		h := status.NewRouter(a.engine, a.monitor, a.sess, a.registry, a.log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := status.Serve(ctx, a.config.StatusAddr, h, a.log); err != nil {
				a.log.Error(ctx, "status endpoint stopped", "error", err)
			}
		}()
	}

	fmt.Fprintln(a.out, "Welcome to GiftKeeper CLI (type 'help' for commands)")

	restored, err := a.authService.RestoreSession(ctx)
	if err != nil {
		a.log.Warn(ctx, "session not restored", "error", err)
	}
	if restored {
		fmt.Fprintf(a.out, "Signed in as %s\n", a.session.State().Username)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// watchEvents logs engine events and tells the user about changes that
// were given up on.
func (a *App) watchEvents(ctx context.Context) {
	events, unsubscribe := a.engine.Subscribe(64)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.log.Info(ctx, "sync event", "event", ev.String())
			if ev.Kind == syncer.SyncError {
				fmt.Fprintf(a.out, "\n! %s\n", ev)
			}
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil && a.session.State().Authenticated
}

// getStatus renders the prompt prefix, e.g. "(anna online 2 pending)".
func (a *App) getStatus() string {
	s := ""
	if st := a.session.State(); st.Authenticated {
		s = st.Username + " "
	}
	if a.online != nil && a.online.IsOnline() {
		s += "online"
	} else {
		s += "offline"
	}
	if a.sync != nil {
		if n, err := a.sync.QueueCount(context.Background()); err == nil && n > 0 {
			s += fmt.Sprintf(" %d pending", n)
		}
	}
	return fmt.Sprintf("(%s)", s)
}
