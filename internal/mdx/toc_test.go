package mdx

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tocSource = "# Doc\n\n## Setup\n\n### Install\n\n#### Deep\n\n## Setup\n\n```bash\n## not a heading\n```\n\n## Usage ##\n"

func TestTableOfContents(t *testing.T) {
	got := TableOfContents(tocSource)

	assert.Equal(t, []TocItem{
		{ID: "setup", Title: "Setup", Level: 2},
		{ID: "install", Title: "Install", Level: 3},
		{ID: "setup-1", Title: "Setup", Level: 2},
		{ID: "usage", Title: "Usage", Level: 2},
	}, got)
}

func TestTableOfContents_Empty(t *testing.T) {
	got := TableOfContents("just text\n")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTableOfContents_MatchesRenderedIDs(t *testing.T) {
	out, err := NewPipeline().RenderHTML([]byte(tocSource), nil)
	require.NoError(t, err)

	for _, item := range TableOfContents(tocSource) {
		assert.Contains(t, out, `id="`+item.ID+`"`)
	}
	assert.NotContains(t, out, `id="not-a-heading"`)
}

var treeHeadingRe = regexp.MustCompile(`<h[23] id="([^"]+)"`)

// treeHeadingIDs returns the h2 and h3 ids of a node tree in document order.
func treeHeadingIDs(nodes []Node) []string {
	var ids []string
	Walk(nodes, func(n Node) bool {
		for _, m := range treeHeadingRe.FindAllStringSubmatch(n.Content, -1) {
			ids = append(ids, m[1])
		}
		return true
	})
	return ids
}

func TestTableOfContentsOf_FollowsTree(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []TocItem
	}{
		{
			name:   "heading inside component body",
			source: "<Callout>\n## Setup\nBody text\n</Callout>\n\n## Setup\n",
		},
		{
			name:   "setext heading",
			source: "Setup\n-----\n\n## Setup\n",
			want: []TocItem{
				{ID: "setup", Title: "Setup", Level: 2},
				{ID: "setup-1", Title: "Setup", Level: 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewConverter().Convert(t.Context(), tt.source)
			require.NoError(t, err)

			toc := TableOfContentsOf(res.Nodes)
			ids := make([]string, len(toc))
			for i, item := range toc {
				ids[i] = item.ID
				assert.Equal(t, "Setup", item.Title)
			}
			assert.Equal(t, treeHeadingIDs(res.Nodes), ids)
			assert.ElementsMatch(t, []string{"setup", "setup-1"}, ids)
			if tt.want != nil {
				assert.Equal(t, tt.want, toc)
			}
			assert.Equal(t, toc, TableOfContents(tt.source))
		})
	}
}
