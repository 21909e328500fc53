package cache

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/singleflight"

	"git.home.luguber.info/inful/mdxsite/internal/docs"
	"git.home.luguber.info/inful/mdxsite/internal/logfields"
	"git.home.luguber.info/inful/mdxsite/internal/metrics"
)

// Publisher propagates an invalidation to other instances.
type Publisher interface {
	Publish(ctx context.Context, reason string) error
}

// Docs is a caching front for a docs.Resolver. Concurrent misses for the
// same key share one load.
type Docs struct {
	resolver  *docs.Resolver
	store     *Store
	loads     singleflight.Group
	recorder  metrics.Recorder
	logger    *slog.Logger
	publisher Publisher
}

// DocsOption configures Docs.
type DocsOption func(*Docs)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) DocsOption { return func(d *Docs) { d.recorder = r } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) DocsOption { return func(d *Docs) { d.logger = l } }

// WithPublisher broadcasts Invalidate calls.
func WithPublisher(p Publisher) DocsOption { return func(d *Docs) { d.publisher = p } }

// NewDocs wraps resolver with store.
func NewDocs(resolver *docs.Resolver, store *Store, opts ...DocsOption) *Docs {
	d := &Docs{
		resolver: resolver,
		store:    store,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Resolver returns the wrapped resolver.
func (d *Docs) Resolver() *docs.Resolver { return d.resolver }

// Stats returns the store counters.
func (d *Docs) Stats() Stats { return d.store.Stats() }

const (
	kindVersions  = "versions"
	kindList      = "list"
	kindDoc       = "doc"
	kindRedirects = "redirects"
)

func key(kind string, parts ...string) string {
	return kind + "|" + strings.Join(parts, "|")
}

// load returns the cached value for k or computes it. Errors are not cached.
func load[T any](ctx context.Context, d *Docs, kind, k string, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := d.store.Get(k); ok {
		d.recorder.IncCacheLookup(kind, true)
		return v.(T), nil
	}
	d.recorder.IncCacheLookup(kind, false)
	v, err, _ := d.loads.Do(k, func() (any, error) {
		res, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		d.store.Set(k, res)
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Versions returns the cached version list.
func (d *Docs) Versions(ctx context.Context) ([]string, error) {
	v, err := load(ctx, d, kindVersions, key(kindVersions), d.resolver.Versions)
	return slices.Clone(v), err
}

// List returns the cached listing of version for locale.
func (d *Docs) List(ctx context.Context, version, locale string) ([]docs.Doc, error) {
	v, err := load(ctx, d, kindList, key(kindList, version, locale), func(ctx context.Context) ([]docs.Doc, error) {
		return d.resolver.List(ctx, version, locale)
	})
	return slices.Clone(v), err
}

// Resolve returns a cached resolved document.
func (d *Docs) Resolve(ctx context.Context, slug, version, locale string) (*docs.Doc, error) {
	v, err := load(ctx, d, kindDoc, key(kindDoc, version, locale, slug), func(ctx context.Context) (*docs.Doc, error) {
		return d.resolver.Resolve(ctx, slug, version, locale)
	})
	if err != nil {
		return nil, err
	}
	cp := *v
	return &cp, nil
}

// Redirects returns the cached redirect table.
func (d *Docs) Redirects(ctx context.Context) ([]docs.Redirect, error) {
	v, err := load(ctx, d, kindRedirects, key(kindRedirects), d.resolver.Redirects)
	return slices.Clone(v), err
}

// FindRedirect looks path up in the cached redirect table.
func (d *Docs) FindRedirect(ctx context.Context, path string) (string, bool, error) {
	table, err := d.Redirects(ctx)
	if err != nil {
		return "", false, err
	}
	to, ok := docs.MatchRedirect(table, path)
	return to, ok, nil
}

// Clear drops every cached entry without notifying other instances.
func (d *Docs) Clear(reason string) {
	d.store.Clear()
	d.recorder.IncCacheInvalidation(reason)
	d.logger.Debug("Cache cleared", slog.String("reason", reason))
}

// Invalidate clears the cache and tells other instances to do the same.
func (d *Docs) Invalidate(ctx context.Context, reason string) {
	d.Clear(reason)
	if d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(ctx, reason); err != nil {
		d.logger.Warn("Failed to publish cache invalidation", logfields.Error(err))
	}
}
