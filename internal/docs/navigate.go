package docs

import (
	"strings"

	"git.home.luguber.info/inful/mdxsite/internal/category"
	"git.home.luguber.info/inful/mdxsite/internal/mdx"
	"git.home.luguber.info/inful/mdxsite/internal/sidebar"
)

// Entries converts a listing into sidebar entries. Entry.Ref is the index
// into docs.
func Entries(docs []Doc) []sidebar.Entry {
	entries := make([]sidebar.Entry, len(docs))
	for i, d := range docs {
		e := sidebar.Entry{
			Slug:     d.LogicalSlug(),
			Route:    d.Slug,
			FilePath: d.FilePath,
			Title:    d.Title,
			Icon:     d.Meta.Icon,
			Group:    d.Meta.SidebarGroup(),
			Position: position(d),
			TabGroup: d.TabGroup(),
			Ref:      i,
		}
		if d.Category != nil {
			c := sidebarCategory(*d.Category)
			e.Category = &c
		}
		entries[i] = e
	}
	return entries
}

// Sidebar builds the navigation tree of a listing, including the sidecars of
// folders that hold no documents directly.
func Sidebar(docs []Doc) sidebar.Structure {
	return sidebar.Build(Entries(docs), sidecarsOf(docs))
}

// Ordered returns docs in sidebar reading order.
func Ordered(docs []Doc) []Doc {
	flat := sidebar.Flatten(Sidebar(docs))
	out := make([]Doc, len(flat))
	for i, e := range flat {
		out[i] = docs[e.Ref]
	}
	return out
}

// Adjacent returns the neighbors of slug in sidebar order among documents of
// the same tab group. Documents without a tab group are only adjacent to
// other documents without one. Unknown slugs have no neighbors.
func Adjacent(slug string, docs []Doc) Adjacency {
	ordered := Ordered(docs)
	current := -1
	for i := range ordered {
		if ordered[i].Slug == slug {
			current = i
			break
		}
	}
	if current < 0 {
		return Adjacency{}
	}

	group := ordered[current].TabGroup()
	filtered := make([]*Doc, 0, len(ordered))
	at := -1
	for i := range ordered {
		if ordered[i].TabGroup() != group {
			continue
		}
		if i == current {
			at = len(filtered)
		}
		filtered = append(filtered, &ordered[i])
	}

	var adj Adjacency
	if at > 0 {
		adj.Previous = filtered[at-1]
	}
	if at < len(filtered)-1 {
		adj.Next = filtered[at+1]
	}
	return adj
}

// IsCategoryPage reports whether some other document lives directly below
// slug.
func IsCategoryPage(slug string, docs []Doc) bool {
	for _, d := range docs {
		if d.Slug == slug {
			continue
		}
		if i := strings.LastIndexByte(d.Slug, '/'); i >= 0 && d.Slug[:i] == slug {
			return true
		}
	}
	return false
}

// TableOfContents lists the h2 and h3 headings of a markdown body.
func TableOfContents(markdown string) []mdx.TocItem {
	return mdx.TableOfContents(markdown)
}

func position(d Doc) *int {
	if d.Meta.SidebarPosition != nil {
		return d.Meta.SidebarPosition
	}
	return d.Meta.Order
}

func sidebarCategory(c category.Config) sidebar.Category {
	return sidebar.Category{
		Label:       c.Label,
		Position:    c.EffectivePosition(),
		Collapsible: c.Collapsible,
		Collapsed:   c.Collapsed,
		Icon:        c.Icon,
		TabGroup:    c.TabGroup,
	}
}

// sidecarsOf returns the sidecars of the listing docs came from. Documents
// of one listing share a single sidecar map.
func sidecarsOf(docs []Doc) map[string]sidebar.Category {
	for _, d := range docs {
		if d.sidecars == nil {
			continue
		}
		out := make(map[string]sidebar.Category, len(d.sidecars))
		for folder, c := range d.sidecars {
			out[folder] = sidebarCategory(c)
		}
		return out
	}
	return nil
}
