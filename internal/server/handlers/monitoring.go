package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/mdxsite/internal/cache"
	"git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxsite/internal/logfields"
	"git.home.luguber.info/inful/mdxsite/internal/server/responses"
	"git.home.luguber.info/inful/mdxsite/internal/version"
)

// CacheControl exposes cache counters and manual invalidation.
type CacheControl interface {
	Stats() cache.Stats
	Invalidate(ctx context.Context, reason string)
}

// MonitoringHandlers serves health and cache administration endpoints.
type MonitoringHandlers struct {
	started      time.Time
	cache        CacheControl
	errorAdapter *errors.HTTPErrorAdapter
	logger       *slog.Logger
}

// NewMonitoringHandlers creates monitoring handlers. cache may be nil.
func NewMonitoringHandlers(started time.Time, cache CacheControl, logger *slog.Logger) *MonitoringHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &MonitoringHandlers{
		started:      started,
		cache:        cache,
		errorAdapter: errors.NewHTTPErrorAdapter(logger),
		logger:       logger,
	}
}

// HandleHealthCheck serves GET /healthz.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.started).Seconds(),
	}
	h.respond(w, r, health, "failed to write health response")
}

// HandleCacheStats serves GET /api/cache.
func (h *MonitoringHandlers) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.NotFoundError("cache is disabled").Build())
		return
	}
	st := h.cache.Stats()
	resp := &responses.CacheStatsResponse{
		Entries:       st.Entries,
		Hits:          st.Hits,
		Misses:        st.Misses,
		Invalidations: st.Invalidations,
	}
	h.respond(w, r, resp, "failed to write cache stats")
}

// HandleCacheClear serves DELETE /api/cache.
func (h *MonitoringHandlers) HandleCacheClear(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.NotFoundError("cache is disabled").Build())
		return
	}
	h.cache.Invalidate(r.Context(), "manual")
	w.WriteHeader(http.StatusNoContent)
}

func (h *MonitoringHandlers) respond(w http.ResponseWriter, r *http.Request, v any, message string) {
	err := writeJSONPretty(w, r, http.StatusOK, v)
	switch {
	case err == nil:
	case headerSent(err):
		h.logger.Warn("Failed writing response body", logfields.Path(r.URL.Path), logfields.Error(err))
	default:
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, message).Build())
	}
}
