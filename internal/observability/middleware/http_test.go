package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/gauchoride-api/internal/observability/logging"
)

type captureHandler struct {
	mu      sync.Mutex
	records []map[string]slog.Value
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := map[string]slog.Value{"msg": slog.StringValue(r.Message)}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, attrs)
	return nil
}

func (h *captureHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(_ string) slog.Handler { return h }

func captureDefault(t *testing.T) *captureHandler {
	t.Helper()
	capture := &captureHandler{}
	prev := slog.Default()
	slog.SetDefault(slog.New(capture))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return capture
}

func newRouter(t *testing.T, cfg HTTPConfig) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	r.Use(HTTP(cfg))
	r.Use(PanicRecoveryHTTP)
	r.Get("/api/rides/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, w.Header().Get("x-request-id"), logging.RequestIDFromContext(r.Context()))
		w.WriteHeader(http.StatusAccepted)
	})
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	return r
}

func TestHTTPLogsFinishedRequest(t *testing.T) {
	capture := captureDefault(t)
	r := newRouter(t, HTTPConfig{Module: logging.ModuleAPI, TracerName: "test"})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rides/7", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)

	requestID := rec.Header().Get("x-request-id")
	parsed, err := uuid.Parse(requestID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	require.Len(t, capture.records, 1)
	got := capture.records[0]
	assert.Equal(t, "request completed", got["msg"].String())
	assert.Equal(t, "http.request.finish", got["event"].String())
	assert.Equal(t, "/api/rides/7", got["path"].String())
	assert.Equal(t, "/api/rides/{id}", got["route"].String())
	assert.Equal(t, int64(http.StatusAccepted), got["status"].Int64())
}

func TestHTTPModuleResolver(t *testing.T) {
	var got []logging.Module
	r := chi.NewRouter()
	r.Use(HTTP(HTTPConfig{
		Module:         logging.ModuleAPI,
		ModuleResolver: func(r *http.Request) logging.Module {
			if r.URL.Path == "/index.html" {
				return logging.ModuleFrontend
			}
			return ""
		},
	}))
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		got = append(got, logging.ModuleFromContext(r.Context()))
	})

	for _, path := range []string{"/index.html", "/api/rides/7"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, []logging.Module{logging.ModuleFrontend, logging.ModuleAPI}, got)
}

func TestHTTPKeepsValidIncomingRequestID(t *testing.T) {
	captureDefault(t)
	r := newRouter(t, HTTPConfig{})

	incoming := uuid.Must(uuid.NewV7()).String()
	req := httptest.NewRequest(http.MethodGet, "/api/rides/1", nil)
	req.Header.Set("x-request-id", incoming)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, incoming, rec.Header().Get("x-request-id"))
}

func TestHTTPSkipPaths(t *testing.T) {
	capture := captureDefault(t)
	r := newRouter(t, HTTPConfig{SkipPaths: []string{"/health/live"}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("x-request-id"))
	assert.Empty(t, capture.records)
}

func TestHTTPSkipsConnectRequests(t *testing.T) {
	capture := captureDefault(t)
	r := newRouter(t, HTTPConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/rides/1", nil)
	req.Header.Set("Content-Type", "application/grpc")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Empty(t, capture.records)
}

func TestPanicRecovery(t *testing.T) {
	capture := captureDefault(t)
	r := newRouter(t, HTTPConfig{})

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, capture.records, 2)
	assert.Equal(t, "app.panic", capture.records[0]["event"].String())
	assert.Equal(t, int64(http.StatusInternalServerError), capture.records[1]["status"].Int64())
}
