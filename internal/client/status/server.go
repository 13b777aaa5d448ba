// Package status serves a small local HTTP endpoint with the sync state and
// the Prometheus metrics of the running client.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/giftkeeper/internal/logging"
)

// Source is what the endpoint reports on. The sync engine, session and
// connectivity monitor together provide it.
type Source interface {
	QueueCount(ctx context.Context) (int, error)
	IsSyncInProgress() bool
	LastSync(ctx context.Context) (*time.Time, error)
}

type Presence interface {
	IsOnline() bool
}

type Auth interface {
	UserID() (string, bool)
}

// Report is the JSON body of GET /status.
type Report struct {
	Online        bool       `json:"online"`
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"userId,omitempty"`
	Syncing       bool       `json:"syncing"`
	Pending       int        `json:"pending"`
	LastSync      *time.Time `json:"lastSync,omitempty"`
}

func NewRouter(src Source, presence Presence, auth Auth, gatherer prometheus.Gatherer, log logging.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		pending, err := src.QueueCount(ctx)
		if err != nil {
			log.Error(ctx, "status: queue count", "error", err)
			http.Error(w, "local store unavailable", http.StatusInternalServerError)
			return
		}
		last, err := src.LastSync(ctx)
		if err != nil {
			log.Error(ctx, "status: last sync", "error", err)
			http.Error(w, "local store unavailable", http.StatusInternalServerError)
			return
		}

		uid, authenticated := auth.UserID()
		rep := Report{
			Online:        presence.IsOnline(),
			Authenticated: authenticated,
			UserID:        uid,
			Syncing:       src.IsSyncInProgress(),
			Pending:       pending,
			LastSync:      last,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rep)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Serve runs the endpoint on addr until ctx is done.
func Serve(ctx context.Context, addr string, h http.Handler, log logging.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "status endpoint listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
