package mdx

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMathBlock is the node kind of a $$ display math block.
var KindMathBlock = ast.NewNodeKind("MathBlock")

// KindMathInline is the node kind of $inline$ math.
var KindMathInline = ast.NewNodeKind("MathInline")

// MathBlock holds the raw TeX lines of a display block.
type MathBlock struct {
	ast.BaseBlock
}

// Kind implements ast.Node.
func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

// IsRaw implements ast.Node.
func (n *MathBlock) IsRaw() bool { return true }

// Dump implements ast.Node.
func (n *MathBlock) Dump(source []byte, level int) { ast.DumpHelper(n, source, level, nil, nil) }

// MathInline holds inline TeX as raw text children.
type MathInline struct {
	ast.BaseInline
}

// Kind implements ast.Node.
func (n *MathInline) Kind() ast.NodeKind { return KindMathInline }

// Dump implements ast.Node.
func (n *MathInline) Dump(source []byte, level int) { ast.DumpHelper(n, source, level, nil, nil) }

var mathBlockInfoKey = parser.NewContextKey()

type mathBlockData struct {
	indent int
}

type mathBlockParser struct{}

func (p *mathBlockParser) Trigger() []byte { return []byte{'$'} }

func (p *mathBlockParser) Open(_ ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || line[pos] != '$' {
		return nil, parser.NoChildren
	}
	i := pos
	for ; i < len(line) && line[i] == '$'; i++ {
	}
	if i-pos != 2 || !util.IsBlank(line[i:]) {
		return nil, parser.NoChildren
	}
	pc.Set(mathBlockInfoKey, &mathBlockData{indent: pos})
	return &MathBlock{}, parser.NoChildren
}

func (p *mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	data := pc.Get(mathBlockInfoKey).(*mathBlockData)

	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w < 4 {
		i := pos
		for ; i < len(line) && line[i] == '$'; i++ {
		}
		if i-pos >= 2 && util.IsBlank(line[i:]) {
			reader.Advance(segment.Stop - segment.Start - segment.Padding)
			return parser.Close
		}
	}

	pos, padding := util.IndentPosition(line, reader.LineOffset(), data.indent)
	if pos < 0 {
		pos, padding = 0, 0
	}
	seg := text.NewSegmentPadding(segment.Start+pos, segment.Stop, padding)
	node.Lines().Append(seg)
	reader.AdvanceAndSetPadding(segment.Stop-segment.Start-pos-1, padding)
	return parser.Continue | parser.NoChildren
}

func (p *mathBlockParser) Close(_ ast.Node, _ text.Reader, pc parser.Context) {
	pc.Set(mathBlockInfoKey, nil)
}

func (p *mathBlockParser) CanInterruptParagraph() bool { return true }

func (p *mathBlockParser) CanAcceptIndentedLine() bool { return false }

// mathInlineParser recognizes $tex$ and $$tex$$ within a line. The opening
// delimiter must not be followed by a space and the closing one must not be
// preceded by a space or, for single dollars, followed by a digit, so that
// prices like "$5 and $10" stay text.
type mathInlineParser struct{}

func (p *mathInlineParser) Trigger() []byte { return []byte{'$'} }

func (p *mathInlineParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, segment := block.PeekLine()
	n := 0
	for n < len(line) && line[n] == '$' {
		n++
	}
	if n > 2 || n >= len(line) || util.IsSpace(line[n]) {
		return nil
	}
	for i := n; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
			continue
		case '$':
		default:
			continue
		}
		m := 0
		for i+m < len(line) && line[i+m] == '$' {
			m++
		}
		if m != n || util.IsSpace(line[i-1]) || (n == 1 && i+m < len(line) && isDigit(line[i+m])) {
			i += m - 1
			continue
		}
		node := &MathInline{}
		node.AppendChild(node, ast.NewRawTextSegment(text.NewSegment(segment.Start+n, segment.Start+i)))
		block.Advance(i + m)
		return node
	}
	return nil
}

type mathRenderer struct{}

func (r *mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathBlock, r.renderBlock)
	reg.Register(KindMathInline, r.renderInline)
}

func (r *mathRenderer) renderBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</div>\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<div class="math math-display">`)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	return ast.WalkContinue, nil
}

func (r *mathRenderer) renderInline(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</span>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<span class="math math-inline">`)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			_, _ = w.Write(util.EscapeHTML(t.Segment.Value(source)))
		}
	}
	return ast.WalkSkipChildren, nil
}

type mathExtension struct{}

// Math is a goldmark extension for $$ display blocks and $inline$ math. TeX
// is emitted escaped inside math-display / math-inline elements for
// client-side typesetting.
var Math goldmark.Extender = &mathExtension{}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(&mathBlockParser{}, 850)),
		parser.WithInlineParsers(util.Prioritized(&mathInlineParser{}, 150)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&mathRenderer{}, 500)))
}
