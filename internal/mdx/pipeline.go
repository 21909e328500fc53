package mdx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Pipeline renders Markdown to HTML with GFM, math, code file names, heading
// ids and raw HTML passthrough, and parses the result into an element tree.
// A Pipeline is safe for concurrent use; heading ids are scoped by the
// Slugger passed to each call.
type Pipeline struct {
	md goldmark.Markdown
}

// NewPipeline builds the shared markdown pipeline.
func NewPipeline() *Pipeline {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, Math, CodeMeta),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	return &Pipeline{md: md}
}

// RenderHTML converts markdown to an HTML string.
func (p *Pipeline) RenderHTML(src []byte, ids *Slugger) (string, error) {
	if ids == nil {
		ids = NewSlugger()
	}
	pc := parser.NewContext(parser.WithIDs(ids))
	doc := p.md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	var buf bytes.Buffer
	if err := p.md.Renderer().Render(&buf, src, doc); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Parse renders markdown and parses the HTML as a <body> fragment. It
// returns the HTML string along with the top-level nodes.
func (p *Pipeline) Parse(src []byte, ids *Slugger) (string, []*html.Node, error) {
	out, err := p.RenderHTML(src, ids)
	if err != nil {
		return "", nil, err
	}
	nodes, err := ParseFragment(out)
	if err != nil {
		return "", nil, err
	}
	return out, nodes, nil
}

// ParseFragment parses s in a <body> context. HTML5 tree construction
// lowercases tag and attribute names and decodes entity references.
func ParseFragment(s string) ([]*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}
	return nodes, nil
}
