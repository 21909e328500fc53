package docs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	foundation "git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxsite/internal/frontmatter"
	"git.home.luguber.info/inful/mdxsite/internal/logfields"
	"git.home.luguber.info/inful/mdxsite/internal/mdx"
	"git.home.luguber.info/inful/mdxsite/internal/metrics"
	"git.home.luguber.info/inful/mdxsite/internal/security"
)

// Rendered is the pipeline output for one document body.
type Rendered struct {
	HTML  string     `json:"html"`
	Nodes []mdx.Node `json:"nodes"`
}

// RenderCache stores pipeline output keyed by document fingerprint.
type RenderCache interface {
	LoadRender(ctx context.Context, fingerprint string) (*Rendered, bool, error)
	StoreRender(ctx context.Context, fingerprint string, r *Rendered) error
}

// Resolver reads documents below a docs root. It is safe for concurrent use.
type Resolver struct {
	cfg       *config.Config
	root      string
	converter *mdx.Converter
	scanner   security.Scanner
	logger    *slog.Logger
	recorder  metrics.Recorder
	renders   RenderCache
	git       *gitDates
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger; slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option { return func(r *Resolver) { r.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option { return func(r *Resolver) { r.recorder = rec } }

// WithScanner replaces the dangerous content scanner.
func WithScanner(s security.Scanner) Option { return func(r *Resolver) { r.scanner = s } }

// WithConverter shares an MDX converter.
func WithConverter(c *mdx.Converter) Option { return func(r *Resolver) { r.converter = c } }

// WithRenderCache short-circuits rendering of unchanged documents.
func WithRenderCache(c RenderCache) Option { return func(r *Resolver) { r.renders = c } }

// New returns a Resolver for cfg.Docs.Root.
func New(cfg *config.Config, opts ...Option) (*Resolver, error) {
	root, err := filepath.Abs(cfg.Docs.Root)
	if err != nil {
		return nil, foundation.WrapError(err, foundation.CategoryConfig, "invalid docs root").
			WithContext("root", cfg.Docs.Root).
			Build()
	}
	r := &Resolver{
		cfg:      cfg,
		root:     root,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.converter == nil {
		r.converter = mdx.NewConverter()
	}
	if r.scanner == nil {
		r.scanner = security.NewPatternScanner()
	}
	if cfg.Docs.GitLastUpdated {
		r.git = openGitDates(root, r.logger)
	}
	return r, nil
}

// Root returns the absolute docs root.
func (r *Resolver) Root() string { return r.root }

// Config returns the configuration the resolver was built with.
func (r *Resolver) Config() *config.Config { return r.cfg }

// Resolve renders the document for slug in version and locale. A slug may
// carry a locale prefix ("fr/guide"), which wins over locale. Missing,
// rejected and unreadable documents all yield an error for which IsNotFound
// is true.
func (r *Resolver) Resolve(ctx context.Context, slug, version, locale string) (*Doc, error) {
	start := time.Now()
	doc, result, err := r.resolve(ctx, slug, version, locale)
	r.recorder.ObserveResolveDuration(result, time.Since(start))
	return doc, err
}

// candidate is one file Resolve may accept.
type candidate struct {
	path       string
	fileLocale string
}

func (r *Resolver) resolve(ctx context.Context, slug, version, locale string) (*Doc, metrics.ResultLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, metrics.ResultCanceled, err
	}
	v, err := cleanVersion(version)
	if err != nil {
		r.logger.Warn("Rejected document version", logfields.Version(version), logfields.Error(err))
		return nil, metrics.ResultRejected, notFound(slug, version, locale)
	}
	s, err := security.SanitizePath(slug)
	if err != nil {
		r.logger.Warn("Rejected document slug", logfields.Slug(slug), logfields.Error(err))
		return nil, metrics.ResultRejected, notFound(slug, version, locale)
	}

	i18n := r.cfg.I18n
	target := i18n.Locale(locale)
	if i18n.Enabled {
		first, rest, _ := strings.Cut(s, "/")
		if slices.Contains(i18n.Locales, first) {
			target, s = first, rest
		}
	}
	if s == "" {
		s = "index"
	}

	base := filepath.Join(r.root, v)
	var candidates []candidate
	if i18n.Enabled {
		candidates = append(candidates, candidate{filepath.Join(base, s+"."+target+".mdx"), target})
	}
	if !i18n.Enabled || i18n.IsDefault(target) || i18n.Fallback() {
		candidates = append(candidates, candidate{filepath.Join(base, s+".mdx"), i18n.DefaultLocale})
	}

	rejected := false
	var doc *Doc
	for _, c := range candidates {
		d, err := r.readDoc(c.path, s, v)
		if errors.Is(err, errNoFile) {
			continue
		}
		if err != nil {
			rejected = rejected || foundation.HasCategory(err, foundation.CategorySecurity)
			r.logger.Warn("Skipping document candidate", logfields.Path(c.path), logfields.Error(err))
			continue
		}
		r.localize(d, target, c.fileLocale)
		doc = d
		break
	}

	if doc == nil {
		doc, err = r.findByCustomSlug(ctx, s, v, target)
		if err != nil {
			return nil, metrics.ResultCanceled, err
		}
	}
	if doc == nil {
		if rejected {
			return nil, metrics.ResultRejected, notFound(slug, version, locale)
		}
		return nil, metrics.ResultNotFound, notFound(slug, version, locale)
	}

	if err := r.render(ctx, doc); err != nil {
		if ctx.Err() != nil {
			return nil, metrics.ResultCanceled, ctx.Err()
		}
		r.logger.Error("Failed to render document", logfields.Path(doc.source), logfields.Error(err))
		return nil, metrics.ResultNotFound, notFound(slug, version, locale)
	}
	return doc, metrics.ResultFound, nil
}

// localize sets the locale of d and prefixes its slug for target.
func (r *Resolver) localize(d *Doc, target, fileLocale string) {
	d.Locale = fileLocale
	d.Meta.Locale = fileLocale
	d.Slug = r.cfg.I18n.PrefixFor(target, fileLocale) + d.logical
}

// findByCustomSlug looks for a document whose slug front matter produces s.
func (r *Resolver) findByCustomSlug(ctx context.Context, s, version, target string) (*Doc, error) {
	listed, err := r.List(ctx, version, target)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, nil
	}
	for i := range listed {
		d := listed[i]
		if d.Meta.Slug != "" && d.logical == s {
			return &d, nil
		}
	}
	return nil, nil
}

func (r *Resolver) render(ctx context.Context, doc *Doc) error {
	if r.renders != nil && doc.Fingerprint != "" {
		cached, ok, err := r.renders.LoadRender(ctx, doc.Fingerprint)
		if err != nil {
			r.logger.Debug("Render cache lookup failed", logfields.Slug(doc.Slug), logfields.Error(err))
		}
		r.recorder.IncCacheLookup("render", ok)
		if ok {
			doc.Content, doc.ContentNodes = cached.HTML, cached.Nodes
			return nil
		}
	}

	res, err := r.converter.Convert(ctx, doc.Content)
	if err != nil {
		return foundation.WrapError(err, foundation.CategoryRender, "render document").
			WithContext("slug", doc.Slug).
			Build()
	}
	doc.Content, doc.ContentNodes = res.HTML, res.Nodes

	if r.renders != nil && doc.Fingerprint != "" {
		if err := r.renders.StoreRender(ctx, doc.Fingerprint, &Rendered{HTML: res.HTML, Nodes: res.Nodes}); err != nil {
			r.logger.Debug("Render cache store failed", logfields.Slug(doc.Slug), logfields.Error(err))
		}
	}
	return nil
}

// readDoc reads, validates and decodes one file. logical is the file's path
// relative to the version directory without extension or locale suffix.
func (r *Resolver) readDoc(path, logical, version string) (*Doc, error) {
	if !security.WithinDirectory(path, r.root) {
		r.logger.Error("Path traversal attempt blocked", logfields.Path(path))
		return nil, foundation.SecurityError("path outside docs root").WithContext("path", path).Build()
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errNoFile
	}
	if err != nil {
		return nil, foundation.WrapError(err, foundation.CategoryFileSystem, "read document").
			WithContext("path", path).
			Build()
	}

	fm, body, _, err := frontmatter.Split(data)
	if err != nil {
		return nil, foundation.WrapError(err, foundation.CategoryValidation, "split front matter").
			WithContext("path", path).
			Build()
	}
	meta, err := frontmatter.DecodeMeta(fm)
	if err != nil {
		return nil, foundation.WrapError(err, foundation.CategoryValidation, "decode front matter").
			WithContext("path", path).
			Build()
	}

	check := security.Validate(string(body), r.securityOptions())
	if !check.Valid {
		for _, issue := range check.Issues {
			r.recorder.IncSecurityIssue(issue.Rule)
		}
		if r.cfg.IsProduction() {
			r.logger.Error("MDX security validation failed",
				logfields.Path(path), logfields.Issues(len(check.Issues)), slog.Any("findings", issueStrings(check.Issues)))
			return nil, foundation.SecurityError("document failed content validation").
				WithContext("path", path).
				WithContext("issues", len(check.Issues)).
				Build()
		}
		r.logger.Warn("Continuing with sanitized content",
			logfields.Path(path), logfields.Issues(len(check.Issues)), slog.Any("findings", issueStrings(check.Issues)))
	}
	safe := check.Sanitized
	meta.SetReadingStats(safe)

	if meta.LastUpdated == "" && r.git != nil {
		meta.LastUpdated = r.git.lastUpdated(path)
	}

	slug := withCustomSlug(logical, meta.Slug)
	title := meta.Title
	if title == "" {
		title = logical
	}
	return &Doc{
		Slug:        slug,
		FilePath:    logical,
		Title:       title,
		Version:     version,
		Locale:      r.cfg.I18n.DefaultLocale,
		Meta:        meta,
		Content:     safe,
		Fingerprint: mdfp.CalculateFingerprintFromParts(strings.TrimSpace(string(fm)), safe),
		source:      path,
		body:        safe,
		logical:     slug,
	}, nil
}

func (r *Resolver) securityOptions() security.Options {
	return security.Options{
		Strict:                r.cfg.IsProduction(),
		BlockDangerous:        r.cfg.Security.BlockDangerousEnabled(),
		AllowCustomComponents: r.cfg.Security.CustomComponentsAllowed(),
		Scanner:               r.scanner,
	}
}

// withCustomSlug replaces the last segment of logical with custom, keeping
// the folder structure.
func withCustomSlug(logical, custom string) string {
	custom = strings.TrimPrefix(strings.TrimSpace(custom), "/")
	if custom == "" {
		return logical
	}
	if i := strings.LastIndexByte(logical, '/'); i >= 0 {
		return logical[:i+1] + custom
	}
	return custom
}

// cleanVersion accepts a single path segment.
func cleanVersion(version string) (string, error) {
	v, err := security.SanitizePath(version)
	if err != nil {
		return "", err
	}
	if v == "" || strings.Contains(v, "/") {
		return "", fmt.Errorf("version must be a single path segment: %q", version)
	}
	return v, nil
}

func issueStrings(issues []security.Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.String()
	}
	return out
}
