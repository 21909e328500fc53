package mdx

import (
	"context"
	"strings"

	"golang.org/x/net/html"
)

// Converter turns MDX source into flat HTML plus a Node tree. It is safe for
// concurrent use.
type Converter struct {
	pipeline     *Pipeline
	tags         *Dictionary
	props        *Dictionary
	stripModules bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithTags replaces the component tag dictionary.
func WithTags(d *Dictionary) Option { return func(c *Converter) { c.tags = d } }

// WithProps replaces the prop name dictionary.
func WithProps(d *Dictionary) Option { return func(c *Converter) { c.props = d } }

// WithPipeline shares an existing markdown pipeline.
func WithPipeline(p *Pipeline) Option { return func(c *Converter) { c.pipeline = p } }

// WithModuleStatements keeps import/export lines in the rendered output.
func WithModuleStatements() Option { return func(c *Converter) { c.stripModules = false } }

// NewConverter returns a Converter using the default dictionaries.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		tags:         DefaultTags(),
		props:        DefaultProps(),
		stripModules: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pipeline == nil {
		c.pipeline = NewPipeline()
	}
	return c
}

// Result is the output of one conversion.
type Result struct {
	HTML  string
	Nodes []Node
}

// Prepare returns the text fed to the markdown pipeline: module statements
// removed, attribute expressions encoded and component tags normalized.
func (c *Converter) Prepare(source string) string {
	if c.stripModules {
		source = StripModuleStatements(source)
	}
	return NormalizeComponentTags(Preprocess(source, c.tags), c.tags)
}

// Convert renders source. The flat HTML and the node tree come from the same
// prepared text, so every component in one appears in the other in the same
// order.
func (c *Converter) Convert(ctx context.Context, source string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids := NewSlugger()
	out, nodes, err := c.pipeline.Parse([]byte(c.Prepare(source)), ids)
	if err != nil {
		return nil, err
	}
	b := &treeBuilder{ctx: ctx, conv: c, ids: ids}
	tree, err := b.build(nodes, modePlain, false)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		tree = []Node{}
	}
	return &Result{HTML: out, Nodes: tree}, nil
}

// mode selects how a child list is interpreted.
type mode int

const (
	// modeDetect picks modeMarkdown when any text child looks like
	// markdown and modePlain otherwise. Used for component children.
	modeDetect mode = iota
	// modePlain buffers text together with plain elements.
	modePlain
	// modeMarkdown collects text runs and re-renders them as markdown.
	modeMarkdown
)

type bufferState int

const (
	stateIdle bufferState = iota
	stateCollectingHTML
	stateCollectingText
)

type treeBuilder struct {
	ctx  context.Context
	conv *Converter
	ids  *Slugger
}

// level is the output and pending buffer of one child list. Inline levels
// keep one space at the edges of their html leaves.
type level struct {
	b      *treeBuilder
	inline bool
	state  bufferState
	html   []*html.Node
	text   strings.Builder
	out    []Node
}

// inlineParents hold phrasing content, where whitespace next to a component
// separates words.
var inlineParents = map[string]bool{
	"p": true, "li": true, "td": true, "th": true, "dt": true, "dd": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"a": true, "em": true, "strong": true, "span": true, "del": true,
	"summary": true, "figcaption": true, "caption": true, "label": true,
}

func (b *treeBuilder) build(children []*html.Node, m mode, inline bool) ([]Node, error) {
	if m == modeDetect {
		m = modePlain
		if containsMarkdownText(children) {
			m = modeMarkdown
		}
	}
	nested := modePlain
	if m == modeMarkdown {
		nested = modeDetect
	}

	lv := &level{b: b, inline: inline}
	for _, child := range children {
		switch {
		case child.Type == html.TextNode && m == modeMarkdown && lv.state == stateCollectingHTML &&
			strings.TrimSpace(child.Data) == "":
			lv.html = append(lv.html, child)

		case child.Type == html.TextNode && m == modeMarkdown:
			if err := lv.enter(stateCollectingText); err != nil {
				return nil, err
			}
			lv.text.WriteString(child.Data)

		case isCodeFence(child):
			if err := lv.flush(); err != nil {
				return nil, err
			}
			lv.out = append(lv.out, codeBlockNode(child))

		case b.isComponent(child) || b.soleComponent(child) != nil:
			if err := lv.flush(); err != nil {
				return nil, err
			}
			if inner := b.soleComponent(child); inner != nil {
				child = inner
			}
			node, err := b.component(child)
			if err != nil {
				return nil, err
			}
			lv.out = append(lv.out, node)

		case child.Type == html.ElementNode && b.hasNested(child):
			if err := lv.flush(); err != nil {
				return nil, err
			}
			lv.out = append(lv.out, HTMLNode(openTag(child)))
			inner, err := b.build(childList(child), nested, inlineParents[child.Data])
			if err != nil {
				return nil, err
			}
			lv.out = append(lv.out, inner...)
			lv.out = append(lv.out, HTMLNode("</"+child.Data+">"))

		default:
			if err := lv.enter(stateCollectingHTML); err != nil {
				return nil, err
			}
			lv.html = append(lv.html, child)
		}
	}
	if err := lv.flush(); err != nil {
		return nil, err
	}
	return lv.out, nil
}

// enter switches the buffer state, flushing whatever the previous state
// collected.
func (lv *level) enter(s bufferState) error {
	if lv.state != s && lv.state != stateIdle {
		if err := lv.flush(); err != nil {
			return err
		}
	}
	lv.state = s
	return nil
}

func (lv *level) flush() error {
	defer func() { lv.state = stateIdle }()
	switch lv.state {
	case stateCollectingHTML:
		var sb strings.Builder
		for _, n := range lv.html {
			_ = html.Render(&sb, n)
		}
		lv.html = lv.html[:0]
		raw := sb.String()
		content := strings.TrimSpace(raw)
		if content == "" {
			return nil
		}
		if lv.inline {
			if content[0] != raw[0] {
				content = " " + content
			}
			if content[len(content)-1] != raw[len(raw)-1] {
				content += " "
			}
		}
		lv.out = append(lv.out, HTMLNode(content))
	case stateCollectingText:
		raw := lv.text.String()
		lv.text.Reset()
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		nodes, err := lv.b.reparse(Dedent(raw))
		if err != nil {
			return err
		}
		lv.out = append(lv.out, nodes...)
	}
	return nil
}

// reparse runs text through the markdown pipeline again and converts the
// result in plain mode. Heading ids continue the document's sequence.
func (b *treeBuilder) reparse(markdown string) ([]Node, error) {
	if err := b.ctx.Err(); err != nil {
		return nil, err
	}
	_, nodes, err := b.conv.pipeline.Parse([]byte(markdown), b.ids)
	if err != nil {
		return nil, err
	}
	return b.build(nodes, modePlain, false)
}

func (b *treeBuilder) isComponent(n *html.Node) bool {
	return n.Type == html.ElementNode && b.conv.tags.Has(n.Data)
}

// soleComponent returns the component wrapped by a paragraph that holds
// nothing else but whitespace. Such a paragraph is block-level JSX that the
// markdown parser treated as inline HTML.
func (b *treeBuilder) soleComponent(n *html.Node) *html.Node {
	if n.Type != html.ElementNode || n.Data != "p" {
		return nil
	}
	var found *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
		case found == nil && b.isComponent(c):
			found = c
		default:
			return nil
		}
	}
	return found
}

// hasNested reports whether a descendant of n is a component or code fence.
func (b *treeBuilder) hasNested(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b.isComponent(c) || isCodeFence(c) || b.hasNested(c) {
			return true
		}
	}
	return false
}

func (b *treeBuilder) component(n *html.Node) (Node, error) {
	name, _ := b.conv.tags.Lookup(n.Data)
	props := make(map[string]any, len(n.Attr))
	for _, a := range n.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + key
		}
		if mapped, ok := b.conv.props.Lookup(key); ok {
			key = mapped
		}
		props[key] = DecodeAttribute(a.Val)
	}

	var children []Node
	if n.FirstChild != nil {
		var err error
		children, err = b.build(childList(n), modeDetect, false)
		if err != nil {
			return Node{}, err
		}
	}
	return ComponentNode(name, props, children), nil
}

// isCodeFence matches <pre><code class="language-x"> as produced for fenced
// code blocks.
func isCodeFence(n *html.Node) bool {
	_, ok := fenceCode(n)
	return ok
}

func fenceCode(n *html.Node) (*html.Node, bool) {
	if n.Type != html.ElementNode || n.Data != "pre" {
		return nil, false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			if languageOf(c) != "" {
				return c, true
			}
			return nil, false
		}
	}
	return nil, false
}

func languageOf(code *html.Node) string {
	for _, cls := range strings.Fields(attr(code, "class")) {
		if lang, ok := strings.CutPrefix(cls, "language-"); ok && lang != "" {
			return lang
		}
	}
	return ""
}

func codeBlockNode(pre *html.Node) Node {
	code, _ := fenceCode(pre)
	props := map[string]any{
		"code":     strings.TrimSuffix(textContent(code), "\n"),
		"language": languageOf(code),
	}
	filename := attr(pre, "data-filename")
	if filename == "" {
		filename = attr(code, "data-filename")
	}
	if filename != "" {
		props["filename"] = filename
	}
	return ComponentNode("CodeBlock", props, nil)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func childList(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// openTag serializes the start tag of n without its children.
func openTag(n *html.Node) string {
	shallow := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      n.Attr,
	}
	var sb strings.Builder
	_ = html.Render(&sb, shallow)
	return strings.TrimSuffix(sb.String(), "</"+n.Data+">")
}
