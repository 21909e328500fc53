package mdx

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

var metaFilenameRe = regexp.MustCompile(`(?:^|\s)(?:title|filename|file)=(?:"([^"]*)"|'([^']*)'|(\S+))`)

// FilenameFromMeta extracts the file name from a fence info string meta,
// the part after the language: `title="app.js"`, `filename=app.js` or a
// bare first token such as `app.js`. Highlight ranges like {1,3} are ignored.
func FilenameFromMeta(meta string) string {
	meta = strings.TrimSpace(meta)
	if meta == "" {
		return ""
	}
	if m := metaFilenameRe.FindStringSubmatch(meta); m != nil {
		for _, g := range m[1:] {
			if g != "" {
				return g
			}
		}
	}
	first := strings.Fields(meta)[0]
	if strings.HasPrefix(first, "{") || strings.Contains(first, "=") {
		return ""
	}
	return first
}

// codeMetaRenderer renders fenced code like goldmark's HTML renderer and
// adds data-filename to <pre> when the info string names a file.
type codeMetaRenderer struct {
	html.Config
}

func (r *codeMetaRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeMetaRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	language := n.Language(source)

	var meta string
	if n.Info != nil {
		info := string(n.Info.Segment.Value(source))
		if i := strings.IndexAny(info, " \t"); i >= 0 {
			meta = info[i+1:]
		}
	}

	_, _ = w.WriteString("<pre")
	if filename := FilenameFromMeta(meta); filename != "" {
		_, _ = w.WriteString(` data-filename="`)
		_, _ = w.Write(util.EscapeHTML([]byte(filename)))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString("><code")
	if language != nil {
		_, _ = w.WriteString(` class="language-`)
		r.Writer.Write(w, language)
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.Writer.RawWrite(w, line.Value(source))
	}
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}

type codeMetaExtension struct{}

// CodeMeta is a goldmark extension that exposes the fence meta file name as
// a data-filename attribute.
var CodeMeta goldmark.Extender = &codeMetaExtension{}

func (e *codeMetaExtension) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&codeMetaRenderer{Config: html.NewConfig()}, 200),
	))
}
