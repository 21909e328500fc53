// Package sidebar builds the navigation tree of a docs version and the
// linear reading order derived from it. Sidebar display and previous/next
// navigation both come from Flatten, so they never disagree.
package sidebar

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultPosition is the sort key of entries and groups without an explicit
// position.
const DefaultPosition = 999

// Category is folder metadata from a _category_ sidecar.
type Category struct {
	Label       string
	Position    *int
	Collapsible *bool
	Collapsed   *bool
	Icon        string
	TabGroup    string
}

// Entry is one document as seen by the sidebar.
type Entry struct {
	// Slug is the locale-independent slug.
	Slug string `json:"slug"`
	// Route is the routable slug, with any locale prefix.
	Route string `json:"route,omitempty"`
	// FilePath is the logical path used for folder grouping.
	FilePath string `json:"file_path"`
	Title    string `json:"title"`
	Icon     string `json:"icon,omitempty"`
	// Group is the custom group from sidebar or group front matter.
	Group    string `json:"-"`
	Position *int   `json:"position,omitempty"`
	TabGroup string `json:"tab_group,omitempty"`
	// Category holds the sidecar of the entry's own folder.
	Category *Category `json:"-"`
	// Ref lets callers map an entry back to their own document value.
	Ref int `json:"-"`
}

func (e Entry) position() int {
	if e.Position != nil {
		return *e.Position
	}
	return DefaultPosition
}

// Group is a sidebar section: a folder or a custom group.
type Group struct {
	Label            string   `json:"label"`
	Path             string   `json:"path"`
	Icon             string   `json:"icon,omitempty"`
	Position         int      `json:"position"`
	Collapsible      bool     `json:"collapsible"`
	DefaultCollapsed bool     `json:"default_collapsed"`
	Items            []Entry  `json:"items"`
	Children         []*Group `json:"children"`

	children map[string]*Group
}

// Structure is the built sidebar: root groups in encounter order and root
// level documents that belong to no group.
type Structure struct {
	Groups     []*Group `json:"groups"`
	Standalone []Entry  `json:"standalone"`
}

type groupSet struct {
	list  *[]*Group
	index map[string]*Group
}

func (s groupSet) get(key string) (*Group, bool) {
	g, ok := s.index[key]
	return g, ok
}

func (s groupSet) add(key string, g *Group) {
	g.children = make(map[string]*Group)
	s.index[key] = g
	*s.list = append(*s.list, g)
}

func childSet(g *Group) groupSet { return groupSet{list: &g.Children, index: g.children} }

// Build groups entries by custom group and folder hierarchy. Folder labels
// come from the sidecar in categories (keyed by folder path) or from an
// entry's own Category, falling back to the humanized folder name. An index
// document (index, x/index, or a slug equal to its folder) configures its
// folder instead of appearing as an item.
func Build(entries []Entry, categories map[string]Category) Structure {
	meta := make(map[string]Category, len(categories))
	for _, e := range entries {
		folder := folderOf(e.FilePath)
		if folder != "" && e.Category != nil && e.Category.Label != "" {
			meta[folder] = *e.Category
		}
	}
	for path, c := range categories {
		meta[path] = c
	}

	var s Structure
	root := groupSet{list: &s.Groups, index: make(map[string]*Group)}

	for _, e := range entries {
		parts := strings.Split(e.FilePath, "/")
		index := isIndex(e, parts)
		cat := e.Category
		if cat == nil {
			cat = &Category{}
		}

		if e.Group != "" {
			name := capitalize(e.Group)
			g, ok := root.get(name)
			if !ok {
				g = &Group{
					Label:            name,
					Path:             e.Group,
					Position:         DefaultPosition,
					Collapsible:      boolOr(cat.Collapsible, true),
					DefaultCollapsed: boolOr(cat.Collapsed, false),
				}
				root.add(name, g)
			}
			if index {
				g.Position = intOr(cat.Position, intOr(e.Position, DefaultPosition))
				g.Icon = cat.Icon
			} else {
				g.Items = append(g.Items, e)
			}
			continue
		}

		if len(parts) == 1 {
			if !index {
				s.Standalone = append(s.Standalone, e)
			}
			continue
		}

		level := root
		current := ""
		folders := parts[:len(parts)-1]
		for i, folder := range folders {
			if current == "" {
				current = folder
			} else {
				current += "/" + folder
			}
			g, ok := level.get(folder)
			if !ok {
				m := meta[current]
				g = &Group{
					Label:            stringOr(m.Label, Humanize(folder)),
					Path:             current,
					Icon:             m.Icon,
					Position:         intOr(m.Position, DefaultPosition),
					Collapsible:      boolOr(m.Collapsible, true),
					DefaultCollapsed: boolOr(m.Collapsed, false),
				}
				level.add(folder, g)
			}
			if i == len(folders)-1 {
				if index {
					g.Position = intOr(cat.Position, intOr(e.Position, g.Position))
					if cat.Label != "" {
						g.Label = cat.Label
					}
					if cat.Icon != "" {
						g.Icon = cat.Icon
					}
					if cat.Collapsible != nil {
						g.Collapsible = *cat.Collapsible
					}
					if cat.Collapsed != nil {
						g.DefaultCollapsed = *cat.Collapsed
					}
				} else {
					g.Items = append(g.Items, e)
				}
			}
			level = childSet(g)
		}
	}
	return s
}

func isIndex(e Entry, parts []string) bool {
	if e.FilePath == "index" || strings.HasSuffix(e.FilePath, "/index") {
		return true
	}
	return len(parts) > 1 && e.Slug == strings.Join(parts[:len(parts)-1], "/")
}

func folderOf(filePath string) string {
	i := strings.LastIndexByte(filePath, '/')
	if i < 0 {
		return ""
	}
	return filePath[:i]
}

// Humanize turns a folder name into a label: "getting-started" becomes
// "Getting Started".
func Humanize(folder string) string {
	words := strings.Split(folder, "-")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// SortItems orders entries by position ascending. Entries without one sort
// as DefaultPosition and ties keep their input order.
func SortItems(items []Entry) []Entry {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b Entry) int { return a.position() - b.position() })
	return out
}

// SortGroups orders groups by position ascending, ties in input order.
func SortGroups(groups []*Group) []*Group {
	out := slices.Clone(groups)
	slices.SortStableFunc(out, func(a, b *Group) int { return a.Position - b.Position })
	return out
}

// Flatten returns the canonical reading order: standalone entries first,
// then every root group depth first. Inside a group, child groups and items
// are interleaved by position, groups first on ties.
func Flatten(s Structure) []Entry {
	out := SortItems(s.Standalone)
	for _, g := range SortGroups(s.Groups) {
		out = flattenGroup(out, g)
	}
	return out
}

type node struct {
	group    *Group
	entry    Entry
	position int
}

func flattenGroup(out []Entry, g *Group) []Entry {
	children := SortGroups(g.Children)
	items := SortItems(g.Items)
	merged := make([]node, 0, len(children)+len(items))
	for _, c := range children {
		merged = append(merged, node{group: c, position: c.Position})
	}
	for _, it := range items {
		merged = append(merged, node{entry: it, position: it.position()})
	}
	slices.SortStableFunc(merged, func(a, b node) int { return a.position - b.position })

	for _, n := range merged {
		if n.group != nil {
			out = flattenGroup(out, n.group)
		} else {
			out = append(out, n.entry)
		}
	}
	return out
}

// Sorted returns a copy of s with groups, child groups and items ordered the
// way Flatten visits them, for display.
func Sorted(s Structure) Structure {
	out := Structure{Standalone: SortItems(s.Standalone)}
	for _, g := range SortGroups(s.Groups) {
		out.Groups = append(out.Groups, sortedGroup(g))
	}
	if out.Groups == nil {
		out.Groups = []*Group{}
	}
	if out.Standalone == nil {
		out.Standalone = []Entry{}
	}
	return out
}

func sortedGroup(g *Group) *Group {
	cp := *g
	cp.Items = SortItems(g.Items)
	if cp.Items == nil {
		cp.Items = []Entry{}
	}
	cp.Children = make([]*Group, 0, len(g.Children))
	for _, c := range SortGroups(g.Children) {
		cp.Children = append(cp.Children, sortedGroup(c))
	}
	return &cp
}

func intOr(p *int, def int) int {
	if p != nil {
		return *p
	}
	return def
}

func boolOr(p *bool, def bool) bool {
	if p != nil {
		return *p
	}
	return def
}

func stringOr(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
