package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/giftkeeper/internal/logging"
)

type fakeSource struct {
	pending  int
	countErr error
	syncing  bool
	last     *time.Time
}

func (f *fakeSource) QueueCount(context.Context) (int, error)      { return f.pending, f.countErr }
func (f *fakeSource) IsSyncInProgress() bool                       { return f.syncing }
func (f *fakeSource) LastSync(context.Context) (*time.Time, error) { return f.last, nil }

type fakePresence bool

func (p fakePresence) IsOnline() bool { return bool(p) }

type fakeAuth string

func (a fakeAuth) UserID() (string, bool) { return string(a), a != "" }

func TestStatus(t *testing.T) {
	last := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	h := NewRouter(&fakeSource{pending: 2, syncing: true, last: &last}, fakePresence(true), fakeAuth("u1"), nil, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.Online)
	assert.True(t, got.Authenticated)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.Syncing)
	assert.Equal(t, 2, got.Pending)
	require.NotNil(t, got.LastSync)
	assert.True(t, last.Equal(*got.LastSync))
}

func TestStatus_LocalStoreError(t *testing.T) {
	h := NewRouter(&fakeSource{countErr: errors.New("disk")}, fakePresence(false), fakeAuth(""), nil, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsAndHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "giftkeeper_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	h := NewRouter(&fakeSource{}, fakePresence(false), fakeAuth(""), reg, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "giftkeeper_test_total 1"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestMetricsDisabled(t *testing.T) {
	h := NewRouter(&fakeSource{}, fakePresence(false), fakeAuth(""), nil, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), logging.NewNopLogger())
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
}
