package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdxsite/internal/cache"
	"git.home.luguber.info/inful/mdxsite/internal/server/responses"
)

type stubCache struct {
	stats   cache.Stats
	reasons []string
}

func (s *stubCache) Stats() cache.Stats { return s.stats }

func (s *stubCache) Invalidate(_ context.Context, reason string) {
	s.reasons = append(s.reasons, reason)
}

func TestHandleHealthCheck(t *testing.T) {
	h := NewMonitoringHandlers(time.Now().Add(-time.Minute), nil, nil)
	rec := httptest.NewRecorder()
	h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[responses.HealthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.GreaterOrEqual(t, resp.Uptime, 60.0)
}

func TestCacheHandlers(t *testing.T) {
	c := &stubCache{stats: cache.Stats{Entries: 3, Hits: 5, Misses: 2}}
	h := NewMonitoringHandlers(time.Now(), c, nil)

	rec := httptest.NewRecorder()
	h.HandleCacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/cache", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, responses.CacheStatsResponse{Entries: 3, Hits: 5, Misses: 2}, decode[responses.CacheStatsResponse](t, rec))

	rec = httptest.NewRecorder()
	h.HandleCacheClear(rec, httptest.NewRequest(http.MethodDelete, "/api/cache", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"manual"}, c.reasons)
}

func TestCacheHandlers_Disabled(t *testing.T) {
	h := NewMonitoringHandlers(time.Now(), nil, nil)
	rec := httptest.NewRecorder()
	h.HandleCacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/cache", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
