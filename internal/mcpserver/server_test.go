package mcpserver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	"git.home.luguber.info/inful/mdxsite/internal/docs"
	"git.home.luguber.info/inful/mdxsite/internal/mdx"
)

func newTestTools(t *testing.T) *tools {
	t.Helper()
	root := filepath.Join(t.TempDir(), "docs")
	files := map[string]string{
		"v1.0.0/intro.mdx": "---\ntitle: Intro\ndescription: Start here\nsidebar_position: 1\n---\n# Intro\n\nSome **bold** text.\n\n## Setup\n\n<Callout type=\"info\">Note</Callout>\n",
		"v1.0.0/next.mdx":  "---\ntitle: Next\nsidebar_position: 2\n---\nNext\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	cfg := config.Default()
	cfg.Docs.Root = root
	r, err := docs.New(cfg)
	require.NoError(t, err)
	return &tools{cfg: cfg, source: r}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestNewServer_ListsTools(t *testing.T) {
	tt := newTestTools(t)
	s := NewServer(tt.cfg, tt.source)

	resp := s.HandleMessage(t.Context(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"list_versions", "list_docs", "get_doc", "get_toc"} {
		assert.Contains(t, string(b), `"name":"`+name+`"`)
	}
}

func TestListVersions(t *testing.T) {
	tt := newTestTools(t)
	res, err := tt.listVersions(t.Context(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"versions":["v1.0.0"],"default":"v1.0.0"}`, resultText(t, res))
}

func TestListDocs(t *testing.T) {
	tt := newTestTools(t)
	res, err := tt.listDocs(t.Context(), mcp.CallToolRequest{}, ListDocsRequest{})
	require.NoError(t, err)

	var entries []DocEntry
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, DocEntry{Slug: "intro", Title: "Intro", Description: "Start here", Locale: "en"}, entries[0])

	res, err = tt.listDocs(t.Context(), mcp.CallToolRequest{}, ListDocsRequest{Version: "v9"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGetDoc_Formats(t *testing.T) {
	tt := newTestTools(t)
	ctx := t.Context()

	res, err := tt.getDoc(ctx, mcp.CallToolRequest{}, GetDocRequest{Slug: "intro"})
	require.NoError(t, err)
	var md DocResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &md))
	assert.Equal(t, formatMarkdown, md.Format)
	assert.Contains(t, md.Content, "# Intro")
	assert.Contains(t, md.Content, "**bold**")
	assert.NotContains(t, md.Content, "<h1")

	res, err = tt.getDoc(ctx, mcp.CallToolRequest{}, GetDocRequest{Slug: "intro", Format: formatHTML})
	require.NoError(t, err)
	var html DocResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &html))
	assert.Contains(t, html.Content, `<h1 id="intro">Intro</h1>`)

	res, err = tt.getDoc(ctx, mcp.CallToolRequest{}, GetDocRequest{Slug: "intro", Format: formatNodes})
	require.NoError(t, err)
	var nodes DocResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &nodes))
	var names []string
	for _, n := range nodes.Nodes {
		if n.Type == mdx.NodeComponent {
			names = append(names, n.Name)
		}
	}
	assert.Equal(t, []string{"Callout"}, names)
	assert.Empty(t, nodes.Content)
}

func TestGetDoc_Errors(t *testing.T) {
	tt := newTestTools(t)
	ctx := t.Context()

	cases := map[string]GetDocRequest{
		"missing slug":   {},
		"unknown doc":    {Slug: "nope"},
		"unknown format": {Slug: "intro", Format: "pdf"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := tt.getDoc(ctx, mcp.CallToolRequest{}, args)
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}

func TestGetToc(t *testing.T) {
	tt := newTestTools(t)
	res, err := tt.getToc(t.Context(), mcp.CallToolRequest{}, GetTocRequest{Slug: "intro"})
	require.NoError(t, err)

	var toc []mdx.TocItem
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &toc))
	assert.Equal(t, []mdx.TocItem{{ID: "setup", Title: "Setup", Level: 2}}, toc)

	res, err = tt.getToc(t.Context(), mcp.CallToolRequest{}, GetTocRequest{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
