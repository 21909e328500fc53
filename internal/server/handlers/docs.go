package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	"git.home.luguber.info/inful/mdxsite/internal/docs"
	"git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxsite/internal/logfields"
	"git.home.luguber.info/inful/mdxsite/internal/server/responses"
	"git.home.luguber.info/inful/mdxsite/internal/sidebar"
)

// DocSource is the document access the API needs. Both docs.Resolver and
// the caching front in package cache satisfy it.
type DocSource interface {
	Versions(ctx context.Context) ([]string, error)
	List(ctx context.Context, version, locale string) ([]docs.Doc, error)
	Resolve(ctx context.Context, slug, version, locale string) (*docs.Doc, error)
	Redirects(ctx context.Context) ([]docs.Redirect, error)
	FindRedirect(ctx context.Context, path string) (string, bool, error)
}

// DocsHandlers serves versions, listings, documents, sidebars and redirects.
type DocsHandlers struct {
	config       *config.Config
	source       DocSource
	errorAdapter *errors.HTTPErrorAdapter
	logger       *slog.Logger
}

// NewDocsHandlers creates docs handlers reading from source.
func NewDocsHandlers(cfg *config.Config, source DocSource, logger *slog.Logger) *DocsHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocsHandlers{
		config:       cfg,
		source:       source,
		errorAdapter: errors.NewHTTPErrorAdapter(logger),
		logger:       logger,
	}
}

// HandleVersions serves GET /api/versions.
func (h *DocsHandlers) HandleVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.source.Versions(r.Context())
	if err != nil {
		h.fail(w, r, errors.WrapError(err, errors.CategoryFileSystem, "failed to list versions").Build())
		return
	}
	h.respond(w, r, http.StatusOK, &responses.VersionsResponse{
		Versions: versions,
		Default:  h.config.Docs.DefaultVersion,
	})
}

// HandleList serves GET /api/versions/{version}/docs.
func (h *DocsHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	version := r.PathValue("version")
	locale := h.config.I18n.Locale(r.URL.Query().Get("locale"))
	listed, err := h.source.List(r.Context(), version, locale)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]responses.DocSummary, len(listed))
	for i, d := range listed {
		out[i] = responses.SummaryOf(d)
	}
	h.respond(w, r, http.StatusOK, &responses.DocListResponse{Version: version, Locale: locale, Docs: out})
}

// HandleDoc serves GET /api/versions/{version}/docs/{slug...}. The ETag is
// the document fingerprint.
func (h *DocsHandlers) HandleDoc(w http.ResponseWriter, r *http.Request) {
	version := r.PathValue("version")
	slug := r.PathValue("slug")
	requested := r.URL.Query().Get("locale")

	doc, err := h.source.Resolve(r.Context(), slug, version, requested)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	etag := `"` + doc.Fingerprint + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	resp := &responses.DocResponse{Doc: doc, TOC: doc.TableOfContents()}
	listed, err := h.source.List(r.Context(), doc.Version, h.routeLocale(doc, requested))
	if err != nil {
		h.logger.Debug("Navigation unavailable", logfields.Slug(doc.Slug), logfields.Error(err))
	} else {
		adj := docs.Adjacent(doc.Slug, listed)
		resp.Previous = responses.LinkTo(adj.Previous)
		resp.Next = responses.LinkTo(adj.Next)
		resp.IsCategoryPage = docs.IsCategoryPage(doc.Slug, listed)
	}
	h.respond(w, r, http.StatusOK, resp)
}

// HandleSidebar serves GET /api/versions/{version}/sidebar.
func (h *DocsHandlers) HandleSidebar(w http.ResponseWriter, r *http.Request) {
	version := r.PathValue("version")
	locale := h.config.I18n.Locale(r.URL.Query().Get("locale"))
	listed, err := h.source.List(r.Context(), version, locale)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, &responses.SidebarResponse{
		Version: version,
		Locale:  locale,
		Sidebar: sidebar.Sorted(docs.Sidebar(listed)),
	})
}

// HandleRedirects serves GET /api/redirects. With ?path= it resolves one
// path, otherwise it returns the whole table.
func (h *DocsHandlers) HandleRedirects(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		table, err := h.source.Redirects(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.respond(w, r, http.StatusOK, &responses.RedirectsResponse{Redirects: table})
		return
	}

	to, ok, err := h.source.FindRedirect(r.Context(), path)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !ok {
		h.fail(w, r, errors.NotFoundError("no redirect for path").WithContext("path", path).Build())
		return
	}
	h.respond(w, r, http.StatusOK, &responses.RedirectResponse{From: path, To: to})
}

// routeLocale returns the locale whose listing holds doc: the slug's locale
// prefix when present, otherwise the requested locale.
func (h *DocsHandlers) routeLocale(doc *docs.Doc, requested string) string {
	i18n := h.config.I18n
	if first, _, ok := strings.Cut(doc.Slug, "/"); ok && i18n.Enabled && slices.Contains(i18n.Locales, first) {
		return first
	}
	return i18n.Locale(requested)
}

func (h *DocsHandlers) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	err := writeJSONPretty(w, r, status, v)
	switch {
	case err == nil:
	case headerSent(err):
		h.logger.Warn("Failed writing response body", logfields.Path(r.URL.Path), logfields.Error(err))
	default:
		h.fail(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to write response").Build())
	}
}

func (h *DocsHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.errorAdapter.WriteErrorResponse(w, r, err)
}
