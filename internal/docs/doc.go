// Package docs resolves versioned MDX documents from the docs tree.
//
// A Resolver locates the file for a slug, version and locale, validates its
// content, derives reading statistics and renders the body into flat HTML
// and an mdx.Node tree. Listings read front matter only and feed the
// sidebar, previous/next navigation and the redirect table.
package docs

import (
	"strings"

	"git.home.luguber.info/inful/mdxsite/internal/category"
	"git.home.luguber.info/inful/mdxsite/internal/frontmatter"
	"git.home.luguber.info/inful/mdxsite/internal/mdx"
)

// Doc is a resolved document.
type Doc struct {
	// Slug is the routable id, prefixed with the locale when localization
	// requires it.
	Slug string `json:"slug"`
	// FilePath is the logical path relative to the version directory, without
	// extension or locale suffix.
	FilePath string           `json:"file_path"`
	Title    string           `json:"title"`
	Version  string           `json:"version"`
	Locale   string           `json:"locale"`
	Meta     frontmatter.Meta `json:"meta"`
	// Content is rendered HTML after Resolve and the sanitized markdown body
	// in listings.
	Content      string           `json:"content"`
	ContentNodes []mdx.Node       `json:"content_nodes,omitempty"`
	Category     *category.Config `json:"category,omitempty"`
	Fingerprint  string           `json:"fingerprint"`

	source   string
	body     string
	logical  string
	sidecars map[string]category.Config
}

// TabGroup returns the document's tab group from front matter, falling back
// to its folder's sidecar.
func (d Doc) TabGroup() string {
	if d.Meta.TabGroup != "" {
		return d.Meta.TabGroup
	}
	if d.Category != nil {
		return d.Category.TabGroup
	}
	return ""
}

// LogicalSlug returns the slug without its locale prefix.
func (d Doc) LogicalSlug() string {
	if d.logical != "" {
		return d.logical
	}
	if rest, ok := cutLocale(d.Slug, d.Locale); ok && d.Locale != "" {
		return rest
	}
	return d.Slug
}

// Markdown returns the sanitized markdown body the document was rendered
// from.
func (d Doc) Markdown() string {
	if d.body != "" {
		return d.body
	}
	return d.Content
}

// TableOfContents lists the h2 and h3 headings of the document body. A
// rendered document reads ids from its node tree; listings render the
// markdown body on demand.
func (d Doc) TableOfContents() []mdx.TocItem {
	if len(d.ContentNodes) > 0 {
		return mdx.TableOfContentsOf(d.ContentNodes)
	}
	return mdx.TableOfContents(d.Markdown())
}

// Adjacency holds the neighbors of a document in reading order.
type Adjacency struct {
	Previous *Doc `json:"previous,omitempty"`
	Next     *Doc `json:"next,omitempty"`
}

// Redirect maps an old path to a document route.
type Redirect struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func cutLocale(slug, locale string) (string, bool) {
	return strings.CutPrefix(slug, locale+"/")
}
