// Package httpserver wires the API handlers, middleware and metrics endpoint
// into one http.Server.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	derrors "git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxsite/internal/metrics"
	"git.home.luguber.info/inful/mdxsite/internal/security"
	handlers "git.home.luguber.info/inful/mdxsite/internal/server/handlers"
	smw "git.home.luguber.info/inful/mdxsite/internal/server/middleware"
)

// Options carries the server's dependencies.
type Options struct {
	Docs     handlers.DocSource
	Cache    handlers.CacheControl // nil when caching is disabled
	Recorder metrics.Recorder
	Registry *prom.Registry // served on the metrics path when metrics are enabled
	Logger   *slog.Logger
}

// Server serves the JSON API.
type Server struct {
	cfg     *config.Config
	opts    Options
	handler http.Handler
	logger  *slog.Logger
}

// New builds the route table and middleware chain.
func New(cfg *config.Config, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	s := &Server{cfg: cfg, opts: opts, logger: logger}

	docsH := handlers.NewDocsHandlers(cfg, opts.Docs, logger)
	monH := handlers.NewMonitoringHandlers(time.Now(), opts.Cache, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", monH.HandleHealthCheck)
	mux.HandleFunc("GET /api/versions", docsH.HandleVersions)
	mux.HandleFunc("GET /api/versions/{version}/docs", docsH.HandleList)
	mux.HandleFunc("GET /api/versions/{version}/docs/{slug...}", docsH.HandleDoc)
	mux.HandleFunc("GET /api/versions/{version}/sidebar", docsH.HandleSidebar)
	mux.HandleFunc("GET /api/redirects", docsH.HandleRedirects)
	if opts.Cache != nil {
		mux.HandleFunc("GET /api/cache", monH.HandleCacheStats)
		mux.HandleFunc("DELETE /api/cache", monH.HandleCacheClear)
	}
	if cfg.Monitoring.Metrics.Enabled {
		mux.Handle("GET "+cfg.Monitoring.Metrics.Path, metrics.HTTPHandler(opts.Registry))
	}

	var h http.Handler = mux
	if cfg.Server.CompressEnabled() {
		h = smw.Compress(h)
	}
	if cfg.Server.RateLimit > 0 {
		h = smw.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.Burst).Middleware(logger)(h)
	}
	h = security.Middleware(security.HeaderOptions{
		CSP:         cspHeader(cfg),
		Production:  cfg.IsProduction(),
		StrictPaths: cfg.Security.StrictPathsEnabled(),
		Logger:      logger,
	})(h)
	s.handler = smw.Chain(logger, derrors.NewHTTPErrorAdapter(logger), opts.Recorder)(h)
	return s
}

// cspHeader applies configured directive overrides to the default policy.
func cspHeader(cfg *config.Config) string {
	if len(cfg.Security.CSP) == 0 {
		return ""
	}
	csp := security.DefaultCSP()
	for _, name := range slices.Sorted(maps.Keys(cfg.Security.CSP)) {
		csp = csp.With(strings.ToLower(name), cfg.Security.CSP[name]...)
	}
	return csp.Header(cfg.IsProduction())
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Start binds the configured address and serves until ctx is done, then
// shuts down gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("http startup failed: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       2 * s.cfg.Server.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("HTTP server started", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
