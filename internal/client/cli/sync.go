package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/giftkeeper/internal/client/syncer"
	"github.com/dmitrijs2005/giftkeeper/internal/common"
)

// Sync runs a full reconciliation and prints what changed.
func (a *App) Sync(ctx context.Context) error {
	rep, err := a.sync.SyncAll(ctx)
	switch {
	case errors.Is(err, syncer.ErrNotAuthenticated):
		fmt.Fprintln(a.out, "Log in first to sync")
		return err
	case errors.Is(err, syncer.ErrOffline):
		fmt.Fprintln(a.out, "Server unreachable, changes stay queued")
		return err
	case err != nil:
		return a.report(err)
	}
	if rep.Skipped {
		fmt.Fprintln(a.out, "A sync is already running")
		return nil
	}
	fmt.Fprintf(a.out, "Pushed %d (%d failed), pulled %d new, %d updated, %d deleted\n",
		rep.Push.Success, rep.Push.Errors, rep.Created, rep.Updated, rep.Deleted)
	return nil
}

// Status prints connectivity, session and queue state.
func (a *App) Status(ctx context.Context) error {
	st := a.session.State()
	switch {
	case !st.Authenticated:
		fmt.Fprintln(a.out, "Session:   not logged in")
	case st.Offline:
		fmt.Fprintf(a.out, "Session:   %s (offline login)\n", st.Username)
	default:
		fmt.Fprintf(a.out, "Session:   %s\n", st.Username)
	}

	conn := "offline"
	if a.online.IsOnline() {
		conn = "online"
	}
	fmt.Fprintf(a.out, "Server:    %s\n", conn)

	n, err := a.sync.QueueCount(ctx)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Pending:   %d\n", n)
	if a.sync.IsSyncInProgress() {
		fmt.Fprintln(a.out, "Syncing:   yes")
	}

	last, err := a.sync.LastSync(ctx)
	if err != nil {
		return a.report(err)
	}
	if last == nil {
		fmt.Fprintln(a.out, "Last sync: never")
	} else {
		fmt.Fprintf(a.out, "Last sync: %s\n", last.Local().Format(time.DateTime))
	}
	return nil
}

func (a *App) Backup(ctx context.Context) error {
	key, err := a.backupService.Export(ctx)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Backup saved as %s\n", key)
	return nil
}

// Restore loads the named backup, or the latest one when no key is given.
// Local records newer than the backup are kept.
func (a *App) Restore(ctx context.Context, args []string) error {
	var key string
	if len(args) > 0 {
		key = args[0]
	} else {
		latest, err := a.backupService.Latest(ctx)
		if err != nil {
			return a.report(err)
		}
		if latest == "" {
			fmt.Fprintln(a.out, "No backups found")
			return common.ErrorNotFound
		}
		key = latest
	}

	res, err := a.backupService.Restore(ctx, key)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Restored %s: %d new, %d updated, %d kept, %d unchanged\n", key, res.Created, res.Updated, res.Skipped, res.Unchanged)
	return nil
}
