package commands

import (
	"context"
	"errors"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdxsite/internal/cache"
	"git.home.luguber.info/inful/mdxsite/internal/config"
	"git.home.luguber.info/inful/mdxsite/internal/docs"
	"git.home.luguber.info/inful/mdxsite/internal/logfields"
	"git.home.luguber.info/inful/mdxsite/internal/metrics"
	"git.home.luguber.info/inful/mdxsite/internal/retry"
	"git.home.luguber.info/inful/mdxsite/internal/server/handlers"
)

// Runtime wires the resolver with the optional cache, render store, metrics
// and invalidation sources described by the configuration.
type Runtime struct {
	Config   *config.Config
	Resolver *docs.Resolver
	Cache    *cache.Docs // nil when caching is disabled
	Registry *prom.Registry
	Recorder metrics.Recorder

	logger      *slog.Logger
	renders     *cache.RenderStore
	broadcaster *cache.Broadcaster
	watcher     *cache.Watcher
	warmer      *cache.Warmer
}

// NewRuntime builds the one-shot parts of the runtime. Background
// invalidation and warm-up only run after Start.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{Config: cfg, logger: logger, Recorder: metrics.NoopRecorder{}}
	if cfg.Monitoring.Metrics.Enabled {
		rt.Registry = metrics.NewRegistry()
		rt.Recorder = metrics.NewPrometheusRecorder(rt.Registry)
	}

	opts := []docs.Option{docs.WithLogger(logger), docs.WithRecorder(rt.Recorder)}
	if cfg.Cache.RenderStore != "" {
		store, err := cache.OpenRenderStore(cfg.Cache.RenderStore)
		if err != nil {
			return nil, err
		}
		rt.renders = store
		opts = append(opts, docs.WithRenderCache(store))
	}
	resolver, err := docs.New(cfg, opts...)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Resolver = resolver

	if cfg.Cache.Enabled {
		cacheOpts := []cache.DocsOption{cache.WithLogger(logger), cache.WithRecorder(rt.Recorder)}
		if cfg.Cache.NATS.URL != "" {
			nc := cfg.Cache.NATS
			b, err := cache.ConnectBroadcaster(ctx, nc.URL, nc.Subject, retry.FromConfig(nc.Connect), logger)
			if err != nil {
				_ = rt.Close()
				return nil, err
			}
			rt.broadcaster = b
			cacheOpts = append(cacheOpts, cache.WithPublisher(b))
		}
		rt.Cache = cache.NewDocs(resolver, cache.NewStore(cfg.Cache.TTL), cacheOpts...)
	}
	return rt, nil
}

// Source returns the cached document source when caching is enabled and the
// resolver otherwise.
func (rt *Runtime) Source() handlers.DocSource {
	if rt.Cache != nil {
		return rt.Cache
	}
	return rt.Resolver
}

// CacheControl returns the cache admin surface, or nil.
func (rt *Runtime) CacheControl() handlers.CacheControl {
	if rt.Cache == nil {
		return nil
	}
	return rt.Cache
}

// Start launches the configured invalidation sources and the warm-up job.
func (rt *Runtime) Start(ctx context.Context) error {
	if rt.Cache == nil {
		return nil
	}
	if rt.broadcaster != nil {
		err := rt.broadcaster.Listen(func(reason string) {
			rt.logger.Debug("Remote cache invalidation", slog.String("reason", reason))
			rt.Cache.Clear("nats")
		})
		if err != nil {
			return err
		}
	}
	if rt.Config.Cache.Watch {
		w, err := cache.NewWatcher(rt.Resolver.Root(), func(path string) {
			rt.logger.Debug("Docs tree changed", logfields.Path(path))
			rt.Cache.Invalidate(ctx, "watch")
		}, cache.WithWatchLogger(rt.logger))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		rt.watcher = w
	}
	if rt.Config.Cache.WarmInterval > 0 {
		var locales []string
		if rt.Config.I18n.Enabled {
			locales = rt.Config.I18n.Locales
		}
		w, err := cache.NewWarmer(rt.Cache, locales, rt.logger)
		if err != nil {
			return err
		}
		if _, err := w.Schedule(rt.Config.Cache.WarmInterval); err != nil {
			return err
		}
		w.Start()
		rt.warmer = w
	}
	return nil
}

// Close stops everything Start launched and releases the render store.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.warmer != nil {
		errs = append(errs, rt.warmer.Stop())
	}
	if rt.watcher != nil {
		errs = append(errs, rt.watcher.Stop())
	}
	if rt.broadcaster != nil {
		errs = append(errs, rt.broadcaster.Close())
	}
	if rt.renders != nil {
		errs = append(errs, rt.renders.Close())
	}
	return errors.Join(errs...)
}
