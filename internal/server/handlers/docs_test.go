package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	"git.home.luguber.info/inful/mdxsite/internal/docs"
	"git.home.luguber.info/inful/mdxsite/internal/server/responses"
)

var apiFixture = map[string]string{
	"v1/intro.mdx":         "---\ntitle: Intro\nsidebar_position: 1\nredirect_from:\n  - /old/intro\n---\n# Intro\n\n## Install\n\nText\n",
	"v1/guide.mdx":         "---\ntitle: Guide\nsidebar_position: 2\n---\n## Usage\n\n<Callout>Hi</Callout>\n",
	"v1/advanced.mdx":      "---\ntitle: Advanced\nsidebar_position: 3\n---\nBody\n",
	"v1/advanced/deep.mdx": "---\ntitle: Deep\n---\nDeep\n",
}

func newTestMux(t *testing.T, mutate func(*config.Config)) (*http.ServeMux, *config.Config) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "docs")
	for rel, content := range apiFixture {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	cfg := config.Default()
	cfg.Docs.Root = root
	cfg.Docs.DefaultVersion = "v1"
	if mutate != nil {
		mutate(cfg)
	}
	r, err := docs.New(cfg)
	require.NoError(t, err)

	h := NewDocsHandlers(cfg, r, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/versions", h.HandleVersions)
	mux.HandleFunc("GET /api/versions/{version}/docs", h.HandleList)
	mux.HandleFunc("GET /api/versions/{version}/docs/{slug...}", h.HandleDoc)
	mux.HandleFunc("GET /api/versions/{version}/sidebar", h.HandleSidebar)
	mux.HandleFunc("GET /api/redirects", h.HandleRedirects)
	return mux, cfg
}

func get(t *testing.T, h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHandleVersions(t *testing.T) {
	mux, _ := newTestMux(t, nil)
	rec := get(t, mux, "/api/versions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	resp := decode[responses.VersionsResponse](t, rec)
	assert.Equal(t, []string{"v1"}, resp.Versions)
	assert.Equal(t, "v1", resp.Default)
}

func TestHandleList_MetadataOnly(t *testing.T) {
	mux, _ := newTestMux(t, nil)
	rec := get(t, mux, "/api/versions/v1/docs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[responses.DocListResponse](t, rec)
	assert.Equal(t, "en", resp.Locale)
	require.Len(t, resp.Docs, 4)
	assert.Equal(t, "intro", resp.Docs[0].Slug)
	assert.NotContains(t, rec.Body.String(), `"content"`)
}

func TestHandleList_UnknownVersion(t *testing.T) {
	mux, _ := newTestMux(t, nil)
	rec := get(t, mux, "/api/versions/v9/docs", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDoc(t *testing.T) {
	mux, _ := newTestMux(t, nil)
	rec := get(t, mux, "/api/versions/v1/docs/guide", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[map[string]any](t, rec)
	assert.Equal(t, "guide", resp["slug"])
	assert.Contains(t, resp["content"], `<h2 id="usage">`)
	assert.NotEmpty(t, resp["content_nodes"])
	assert.Equal(t, []any{map[string]any{"id": "usage", "title": "Usage", "level": float64(2)}}, resp["toc"])
	assert.Equal(t, map[string]any{"slug": "intro", "title": "Intro"}, resp["previous"])
	assert.Equal(t, map[string]any{"slug": "advanced", "title": "Advanced"}, resp["next"])
	assert.Equal(t, false, resp["is_category_page"])

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, `"`+resp["fingerprint"].(string)+`"`, etag)

	again := get(t, mux, "/api/versions/v1/docs/guide", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, again.Code)
	assert.Empty(t, again.Body.String())

	stale := get(t, mux, "/api/versions/v1/docs/guide", http.Header{"If-None-Match": {`"other"`}})
	assert.Equal(t, http.StatusOK, stale.Code)
}

func TestHandleDoc_NestedAndCategory(t *testing.T) {
	mux, _ := newTestMux(t, nil)

	rec := get(t, mux, "/api/versions/v1/docs/advanced", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["is_category_page"])

	rec = get(t, mux, "/api/versions/v1/docs/advanced/deep", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "advanced/deep", decode[map[string]any](t, rec)["slug"])
}

func TestHandleDoc_NotFound(t *testing.T) {
	mux, _ := newTestMux(t, nil)
	rec := get(t, mux, "/api/versions/v1/docs/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decode[map[string]any](t, rec)
	assert.Equal(t, "not_found", resp["code"])
}

func TestHandleSidebar(t *testing.T) {
	mux, _ := newTestMux(t, nil)
	rec := get(t, mux, "/api/versions/v1/sidebar?pretty=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\n  ")

	resp := decode[responses.SidebarResponse](t, rec)
	assert.Equal(t, "v1", resp.Version)
	assert.NotEmpty(t, resp.Sidebar)
}

func TestHandleRedirects(t *testing.T) {
	mux, _ := newTestMux(t, nil)

	rec := get(t, mux, "/api/redirects?path=/old/intro/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, responses.RedirectResponse{From: "/old/intro/", To: "/docs/v1/intro"},
		decode[responses.RedirectResponse](t, rec))

	rec = get(t, mux, "/api/redirects?path=/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, mux, "/api/redirects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[responses.RedirectsResponse](t, rec).Redirects, 1)
}

func TestRouteLocale(t *testing.T) {
	_, cfg := newTestMux(t, func(cfg *config.Config) {
		cfg.I18n.Enabled = true
		cfg.I18n.Locales = []string{"en", "fr"}
	})
	h := NewDocsHandlers(cfg, nil, nil)
	assert.Equal(t, "fr", h.routeLocale(&docs.Doc{Slug: "fr/intro"}, ""))
	assert.Equal(t, "en", h.routeLocale(&docs.Doc{Slug: "guide/intro"}, "de"))
	assert.Equal(t, "fr", h.routeLocale(&docs.Doc{Slug: "intro"}, "fr"))
}

func TestEtagMatches(t *testing.T) {
	assert.True(t, etagMatches(`"a"`, `"a"`))
	assert.True(t, etagMatches(`"b", W/"a"`, `"a"`))
	assert.True(t, etagMatches(`*`, `"a"`))
	assert.False(t, etagMatches(``, `"a"`))
	assert.False(t, etagMatches(`"b"`, `"a"`))
}

// brokenWriter records status codes and fails every body write.
type brokenWriter struct {
	header   http.Header
	statuses []int
}

func (b *brokenWriter) Header() http.Header { return b.header }
func (b *brokenWriter) WriteHeader(code int) { b.statuses = append(b.statuses, code) }
func (b *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestRespond_BodyWriteFailureSendsOneHeader(t *testing.T) {
	mux, _ := newTestMux(t, nil)

	for _, target := range []string{"/api/versions", "/api/versions?pretty=1"} {
		w := &brokenWriter{header: http.Header{}}
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, []int{http.StatusOK}, w.statuses, target)
	}
}

func TestWriteJSON_Errors(t *testing.T) {
	err := writeJSON(&brokenWriter{header: http.Header{}}, http.StatusOK, map[string]string{"a": "b"})
	require.Error(t, err)
	assert.True(t, headerSent(err))

	rec := httptest.NewRecorder()
	err = writeJSON(rec, http.StatusOK, make(chan int))
	require.Error(t, err)
	assert.False(t, headerSent(err))
	assert.Empty(t, rec.Body.String())
}
