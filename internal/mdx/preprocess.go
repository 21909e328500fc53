package mdx

import (
	"regexp"
	"strings"
)

// ExpressionPrefix marks an attribute value that carries a JSX expression.
const ExpressionPrefix = "__jsx:"

var expressionEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"\n", "&#10;",
	"\r", "&#13;",
)

// EscapeExpression encodes a JSX expression for use inside a double-quoted
// HTML attribute. The HTML tokenizer's entity decoding is the exact inverse.
func EscapeExpression(expr string) string {
	return expressionEscaper.Replace(expr)
}

// Preprocess rewrites every name={expression} attribute on a recognized tag
// into name="__jsx:<escaped expression>" so the HTML parser keeps it as a
// plain string. Fenced code blocks and inline code spans are returned
// byte-for-byte, as is everything else that is not such an attribute.
func Preprocess(src string, tags *Dictionary) string {
	return transformProse(src, func(b *strings.Builder, prose string) {
		rewriteProse(b, prose, tags, rewriteExpressions)
	})
}

// reservedTags are component names the HTML5 tree builder treats specially:
// <image> becomes <img>, <frame> is dropped in body context and <math>
// switches to MathML parsing.
var reservedTags = map[string]string{
	"image": "mdx-image",
	"frame": "mdx-frame",
	"math":  "mdx-math",
}

// NormalizeComponentTags prepares recognized tags for an HTML5 parser.
// Reserved names are renamed to their mdx- prefixed aliases and self-closing
// tags are expanded to an explicit open/close pair, since the parser ignores
// the trailing slash on non-void elements. Code is left untouched.
func NormalizeComponentTags(src string, tags *Dictionary) string {
	return transformProse(src, func(b *strings.Builder, prose string) {
		rewriteProse(b, prose, tags, normalizeTag)
	})
}

var (
	importRe = regexp.MustCompile(`^import\s+(?:(?:\{[^}]*\}|\w+|\*\s+as\s+\w+)(?:\s*,\s*(?:\{[^}]*\}|\w+))?\s+from\s+)?['"][^'"]+['"];?\s*$`)
	exportRe = regexp.MustCompile(`^export\s+(?:default\s+|const\s+|let\s+|function\s+|class\s+)`)
)

// StripModuleStatements removes single-line import and export statements
// outside fenced code.
func StripModuleStatements(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	for _, seg := range splitFences(src) {
		if seg.code {
			b.WriteString(seg.text)
			continue
		}
		for _, line := range strings.SplitAfter(seg.text, "\n") {
			trimmed := strings.TrimSpace(line)
			if importRe.MatchString(trimmed) || exportRe.MatchString(trimmed) {
				continue
			}
			b.WriteString(line)
		}
	}
	return b.String()
}

func transformProse(src string, fn func(b *strings.Builder, prose string)) string {
	var b strings.Builder
	b.Grow(len(src) + len(src)/8)
	for _, seg := range splitFences(src) {
		if seg.code {
			b.WriteString(seg.text)
			continue
		}
		fn(&b, seg.text)
	}
	return b.String()
}

type tagRewriter func(b *strings.Builder, s string, nameStart, nameEnd int, closing bool, tags *Dictionary) int

// rewriteProse copies prose into b, handing every recognized tag to rw.
func rewriteProse(b *strings.Builder, s string, tags *Dictionary, rw tagRewriter) {
	for i := 0; i < len(s); {
		switch s[i] {
		case '`':
			if end := inlineCodeEnd(s, i); end > 0 {
				b.WriteString(s[i:end])
				i = end
				continue
			}
			for i < len(s) && s[i] == '`' {
				b.WriteByte('`')
				i++
			}
			continue
		case '<':
			closing := i+1 < len(s) && s[i+1] == '/'
			nameStart := i + 1
			if closing {
				nameStart++
			}
			nameEnd := scanTagName(s, nameStart)
			if nameEnd > nameStart && tags.Has(s[nameStart:nameEnd]) {
				i = rw(b, s, nameStart, nameEnd, closing, tags)
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
}

func scanTagName(s string, i int) int {
	if i >= len(s) || !isLetter(s[i]) {
		return i
	}
	j := i + 1
	for j < len(s) && (isLetter(s[j]) || isDigit(s[j]) || s[j] == '-') {
		j++
	}
	return j
}

func normalizeTag(b *strings.Builder, s string, nameStart, nameEnd int, closing bool, _ *Dictionary) int {
	open := nameStart - 1
	if closing {
		open--
	}
	if nameEnd < len(s) && !isTagBoundary(s[nameEnd]) {
		b.WriteString(s[open:nameEnd])
		return nameEnd
	}
	name := s[nameStart:nameEnd]
	if alias, reserved := reservedTags[strings.ToLower(name)]; reserved {
		name = alias
	}
	b.WriteString(s[open:nameStart])
	b.WriteString(name)
	if closing {
		return nameEnd
	}

	end := tagEnd(s, nameEnd)
	if end < 0 {
		return nameEnd
	}
	attrs := strings.TrimRight(s[nameEnd:end], " \t\n\r")
	if !strings.HasSuffix(attrs, "/") {
		b.WriteString(s[nameEnd : end+1])
		return end + 1
	}
	b.WriteString(strings.TrimRight(strings.TrimSuffix(attrs, "/"), " \t\n\r"))
	b.WriteString("></")
	b.WriteString(name)
	b.WriteByte('>')
	return end + 1
}

// tagEnd returns the index of the '>' closing the tag whose attributes start
// at i, skipping quoted values, or -1.
func tagEnd(s string, i int) int {
	for ; i < len(s); i++ {
		switch s[i] {
		case '>':
			return i
		case '"', '\'':
			j := strings.IndexByte(s[i+1:], s[i])
			if j < 0 {
				return -1
			}
			i += j + 1
		case '<':
			return -1
		}
	}
	return -1
}

func rewriteExpressions(b *strings.Builder, s string, nameStart, nameEnd int, closing bool, _ *Dictionary) int {
	open := nameStart - 1
	if closing {
		open--
	}
	b.WriteString(s[open:nameEnd])
	if closing || nameEnd >= len(s) || !isSpace(s[nameEnd]) {
		return nameEnd
	}

	for i := nameEnd; i < len(s); {
		c := s[i]
		switch {
		case c == '>':
			b.WriteByte(c)
			return i + 1
		case c == '"' || c == '\'':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				b.WriteString(s[i:])
				return len(s)
			}
			b.WriteString(s[i : i+end+2])
			i += end + 2
		case isLetter(c) || c == '_':
			j := i + 1
			for j < len(s) && isAttrNameChar(s[j]) {
				j++
			}
			if j+1 < len(s) && s[j] == '=' && s[j+1] == '{' {
				if end := matchBrace(s, j+1); end > 0 {
					b.WriteString(s[i:j])
					b.WriteString(`="`)
					b.WriteString(ExpressionPrefix)
					b.WriteString(EscapeExpression(s[j+2 : end]))
					b.WriteByte('"')
					i = end + 1
					continue
				}
			}
			b.WriteString(s[i:j])
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return len(s)
}

// matchBrace returns the index of the brace closing the one at s[open], or -1.
// String literals inside the expression are skipped.
func matchBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch c := s[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		case '"', '\'', '`':
			end := skipString(s, i)
			if end < 0 {
				return -1
			}
			i = end
		}
	}
	return -1
}

// skipString returns the index of the quote closing the literal at s[i].
func skipString(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j
		case '\n':
			if quote != '`' {
				return -1
			}
		}
	}
	return -1
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' }

func isAttrNameChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_' || c == '-' || c == ':'
}

func isTagBoundary(c byte) bool { return isSpace(c) || c == '>' || c == '/' }
