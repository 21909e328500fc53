package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdxsite/internal/config"
)

func TestCheck(t *testing.T) {
	files := map[string]string{
		"v1/ok.mdx":     "---\ntitle: Fine\n---\n\nHello\n",
		"v1/evil.mdx":   "Hello\n\n<script>alert(1)</script>\n",
		"v1/broken.mdx": "---\ntitle: [unclosed\n---\n\nBody\n",
		"v2/ok.mdx":     "Fine\n",
	}
	// Development would sanitize these at resolve time; Check always applies
	// the production rules.
	r := newTestResolver(t, files, func(cfg *config.Config) {
		cfg.Environment = config.EnvironmentDevelopment
	})

	findings, err := r.Check(t.Context(), "")
	require.NoError(t, err)

	byFile := map[string][]Finding{}
	for _, f := range findings {
		byFile[f.File] = append(byFile[f.File], f)
	}
	assert.NotContains(t, byFile, "ok.mdx")
	require.Contains(t, byFile, "evil.mdx")
	assert.Equal(t, "v1", byFile["evil.mdx"][0].Version)
	assert.NotEmpty(t, byFile["evil.mdx"][0].Rule)
	require.Len(t, byFile["broken.mdx"], 1)
	assert.Equal(t, "frontmatter", byFile["broken.mdx"][0].Rule)
}

func TestCheck_SingleVersion(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"v1/evil.mdx": "<script>alert(1)</script>\n",
		"v2/ok.mdx":   "Fine\n",
	}, nil)

	findings, err := r.Check(t.Context(), "v2")
	require.NoError(t, err)
	assert.Empty(t, findings)

	_, err = r.Check(t.Context(), "v9")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
