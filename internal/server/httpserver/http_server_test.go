package httpserver

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdxsite/internal/cache"
	"git.home.luguber.info/inful/mdxsite/internal/config"
	"git.home.luguber.info/inful/mdxsite/internal/docs"
	"git.home.luguber.info/inful/mdxsite/internal/metrics"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *config.Config) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "docs")
	p := filepath.Join(root, "v1", "intro.mdx")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("---\ntitle: Intro\n---\n# Intro\n"), 0o600))

	cfg := config.Default()
	cfg.Docs.Root = root
	cfg.Monitoring.Metrics.Enabled = true
	if mutate != nil {
		mutate(cfg)
	}
	reg := metrics.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	r, err := docs.New(cfg, docs.WithRecorder(rec))
	require.NoError(t, err)
	cached := cache.NewDocs(r, cache.NewStore(time.Minute), cache.WithRecorder(rec))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, Options{Docs: cached, Cache: cached, Recorder: rec, Registry: reg, Logger: logger}), cfg
}

func TestServer_SecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_CSPOverride(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.CSP = map[string][]string{"img-src": {"'self'", "https://cdn.example.com"}}
	})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "img-src 'self' https://cdn.example.com")
}

func TestServer_RejectsTraversal(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/versions/v1/docs/%2e%2e/secret", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_DocAndMetrics(t *testing.T) {
	s, cfg := newTestServer(t, nil)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/versions/v1/docs/intro", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/versions/v1/docs/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, cfg.Monitoring.Metrics.Path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "mdxsite_resolve_duration_seconds")
	assert.Contains(t, body, "mdxsite_http_request_duration_seconds")
	assert.Contains(t, body, `route="GET /api/versions/{version}/docs/{slug...}"`)
}

func TestServer_CacheEndpoints(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/versions/v1/docs", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cache", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"entries":1`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/cache", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServer_MetricsDisabled(t *testing.T) {
	s, cfg := newTestServer(t, func(cfg *config.Config) { cfg.Monitoring.Metrics.Enabled = false })
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, cfg.Monitoring.Metrics.Path, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
