package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/recvault/internal/events"
)

func TestNotifyCountsEvents(t *testing.T) {
	m := New()
	ctx := context.Background()
	m.Notify(ctx, events.Event{Name: events.RecordAdded})
	m.Notify(ctx, events.Event{Name: events.RecordAdded})
	m.Notify(ctx, events.Event{Name: events.RecordDeleted})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.VaultEvents.WithLabelValues(events.RecordAdded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VaultEvents.WithLabelValues(events.RecordDeleted)))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Delete("/records/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		req := httptest.NewRequest(http.MethodDelete, "/records/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodDelete, "/records/{id}", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
}

func TestMiddlewareLabelsUnknownPathsUnmatched(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/records", func(w http.ResponseWriter, _ *http.Request) {})

	for _, p := range []string{"/nope", "/other/1"} {
		req := httptest.NewRequest(http.MethodGet, p, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestsTotal))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.Notify(context.Background(), events.Event{Name: events.BackupCreated})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `recvault_vault_events_total{event="backupCreated"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
