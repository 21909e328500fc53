package sidebar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(n int) *int { return &n }

func slugs(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Slug)
	}
	return out
}

func entry(path string, position *int) Entry {
	return Entry{Slug: path, FilePath: path, Title: path, Position: position}
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Getting Started", Humanize("getting-started"))
	assert.Equal(t, "Api", Humanize("api"))
	assert.Equal(t, "", Humanize(""))
}

func TestSortItems_StableWithDefault(t *testing.T) {
	items := []Entry{
		entry("c", nil),
		entry("a", pos(2)),
		entry("d", nil),
		entry("b", pos(1)),
		entry("e", pos(2)),
	}
	assert.Equal(t, []string{"b", "a", "e", "c", "d"}, slugs(SortItems(items)))
	assert.Equal(t, "c", items[0].Slug, "input is left untouched")
}

func TestSortGroups(t *testing.T) {
	groups := []*Group{{Label: "x", Position: 999}, {Label: "y", Position: 1}, {Label: "z", Position: 999}}
	sorted := SortGroups(groups)
	assert.Equal(t, "y", sorted[0].Label)
	assert.Equal(t, "x", sorted[1].Label)
	assert.Equal(t, "z", sorted[2].Label)
}

func TestBuild_FoldersAndStandalone(t *testing.T) {
	entries := []Entry{
		entry("index", nil),
		entry("intro", pos(1)),
		entry("getting-started/install", pos(2)),
		entry("getting-started/quickstart", pos(1)),
		entry("getting-started/advanced/tuning", nil),
		entry("reference/cli", nil),
	}

	s := Build(entries, map[string]Category{
		"reference": {Label: "CLI Reference", Position: pos(1), Icon: "terminal"},
	})

	assert.Equal(t, []string{"intro"}, slugs(s.Standalone), "root index is not listed")
	require.Len(t, s.Groups, 2)

	gs := s.Groups[0]
	assert.Equal(t, "Getting Started", gs.Label)
	assert.Equal(t, "getting-started", gs.Path)
	assert.Equal(t, DefaultPosition, gs.Position)
	assert.True(t, gs.Collapsible)
	assert.False(t, gs.DefaultCollapsed)
	assert.Equal(t, []string{"getting-started/install", "getting-started/quickstart"}, slugs(gs.Items))
	require.Len(t, gs.Children, 1)
	assert.Equal(t, "getting-started/advanced", gs.Children[0].Path)
	assert.Equal(t, "Advanced", gs.Children[0].Label)

	ref := s.Groups[1]
	assert.Equal(t, "CLI Reference", ref.Label)
	assert.Equal(t, "terminal", ref.Icon)
	assert.Equal(t, 1, ref.Position)

	assert.Equal(t, []string{
		"intro",
		"reference/cli",
		"getting-started/quickstart",
		"getting-started/install",
		"getting-started/advanced/tuning",
	}, slugs(Flatten(s)))
}

func TestBuild_IndexConfiguresFolder(t *testing.T) {
	collapsed := true
	entries := []Entry{
		entry("guides/setup", nil),
		{
			Slug: "guides/index", FilePath: "guides/index", Position: pos(3),
			Category: &Category{Label: "All Guides", Icon: "book", Collapsed: &collapsed},
		},
		{Slug: "api", FilePath: "api/overview", Position: pos(1)},
		entry("api/endpoints", nil),
	}

	s := Build(entries, nil)
	require.Len(t, s.Groups, 2)

	guides := s.Groups[0]
	assert.Equal(t, "All Guides", guides.Label)
	assert.Equal(t, "book", guides.Icon)
	assert.Equal(t, 3, guides.Position)
	assert.True(t, guides.DefaultCollapsed)
	assert.Equal(t, []string{"guides/setup"}, slugs(guides.Items))

	api := s.Groups[1]
	assert.Equal(t, 1, api.Position, "slug equal to folder marks the index")
	assert.Equal(t, []string{"api/endpoints"}, slugs(api.Items))

	assert.Equal(t, []string{"api/endpoints", "guides/setup"}, slugs(Flatten(s)))
}

func TestBuild_CustomGroups(t *testing.T) {
	entries := []Entry{
		{Slug: "one", FilePath: "one", Group: "tutorials", Position: pos(2)},
		{Slug: "deep/two", FilePath: "deep/two", Group: "tutorials", Position: pos(1)},
		{Slug: "three", FilePath: "three"},
	}
	s := Build(entries, nil)

	require.Len(t, s.Groups, 1)
	g := s.Groups[0]
	assert.Equal(t, "Tutorials", g.Label)
	assert.Equal(t, "tutorials", g.Path)
	assert.Equal(t, []string{"three", "deep/two", "one"}, slugs(Flatten(s)))
}

func TestFlatten_InterleavesGroupsAndItems(t *testing.T) {
	entries := []Entry{
		entry("docs/a", pos(1)),
		entry("docs/late", nil),
		entry("docs/sub/x", nil),
		entry("docs/c", pos(3)),
	}
	s := Build(entries, map[string]Category{"docs/sub": {Position: pos(2)}})

	assert.Equal(t, []string{"docs/a", "docs/sub/x", "docs/c", "docs/late"}, slugs(Flatten(s)))
}

func TestSorted(t *testing.T) {
	s := Build([]Entry{entry("b", pos(2)), entry("a", pos(1)), entry("g/x", nil)}, map[string]Category{"g": {Position: pos(0)}})
	sorted := Sorted(s)

	assert.Equal(t, []string{"a", "b"}, slugs(sorted.Standalone))
	require.Len(t, sorted.Groups, 1)
	assert.NotNil(t, sorted.Groups[0].Children)
	assert.Equal(t, []string{"b", "a"}, slugs(s.Standalone), "original structure is unchanged")
}
