// Package responses defines the JSON bodies served by the mdxsite API.
package responses

import (
	"time"

	"git.home.luguber.info/inful/mdxsite/internal/docs"
	"git.home.luguber.info/inful/mdxsite/internal/frontmatter"
	"git.home.luguber.info/inful/mdxsite/internal/mdx"
	"git.home.luguber.info/inful/mdxsite/internal/sidebar"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
}

// VersionsResponse lists the available documentation versions.
type VersionsResponse struct {
	Versions []string `json:"versions"`
	Default  string   `json:"default"`
}

// DocSummary is a listed document without its body.
type DocSummary struct {
	Slug        string           `json:"slug"`
	FilePath    string           `json:"file_path"`
	Title       string           `json:"title"`
	Version     string           `json:"version"`
	Locale      string           `json:"locale"`
	Meta        frontmatter.Meta `json:"meta"`
	Fingerprint string           `json:"fingerprint"`
}

// DocListResponse is the listing of one version and locale.
type DocListResponse struct {
	Version string       `json:"version"`
	Locale  string       `json:"locale"`
	Docs    []DocSummary `json:"docs"`
}

// NavLink points at a neighboring document.
type NavLink struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// DocResponse is a resolved document with its navigation context.
type DocResponse struct {
	*docs.Doc
	TOC            []mdx.TocItem `json:"toc"`
	IsCategoryPage bool          `json:"is_category_page"`
	Previous       *NavLink      `json:"previous,omitempty"`
	Next           *NavLink      `json:"next,omitempty"`
}

// SidebarResponse is the navigation tree of one version and locale.
type SidebarResponse struct {
	Version string            `json:"version"`
	Locale  string            `json:"locale"`
	Sidebar sidebar.Structure `json:"sidebar"`
}

// RedirectResponse is one resolved redirect.
type RedirectResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RedirectsResponse is the full redirect table.
type RedirectsResponse struct {
	Redirects []docs.Redirect `json:"redirects"`
}

// CacheStatsResponse reports cache counters.
type CacheStatsResponse struct {
	Entries       int    `json:"entries"`
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Invalidations uint64 `json:"invalidations"`
}

// SummaryOf strips a listed document down to its metadata.
func SummaryOf(d docs.Doc) DocSummary {
	return DocSummary{
		Slug:        d.Slug,
		FilePath:    d.FilePath,
		Title:       d.Title,
		Version:     d.Version,
		Locale:      d.Locale,
		Meta:        d.Meta,
		Fingerprint: d.Fingerprint,
	}
}

// LinkTo returns the NavLink for d, or nil.
func LinkTo(d *docs.Doc) *NavLink {
	if d == nil {
		return nil
	}
	return &NavLink{Slug: d.Slug, Title: d.Title}
}
