package mdx

import "strings"

// segment is a run of source text that is either inside a fenced code block
// (fence lines included) or outside of one.
type segment struct {
	text string
	code bool
}

// splitFences cuts src into alternating prose and fenced-code segments.
// Fences may be indented since they are often nested inside component bodies.
// An unclosed fence extends to the end of src.
func splitFences(src string) []segment {
	var (
		segs      []segment
		start     int
		inFence   bool
		fenceChar byte
		fenceLen  int
	)
	for pos := 0; pos < len(src); {
		end := strings.IndexByte(src[pos:], '\n')
		if end < 0 {
			end = len(src)
		} else {
			end += pos + 1
		}
		line := src[pos:end]

		if !inFence {
			if ch, n, ok := openingFence(line); ok {
				if pos > start {
					segs = append(segs, segment{text: src[start:pos]})
				}
				start, inFence, fenceChar, fenceLen = pos, true, ch, n
			}
		} else if closingFence(line, fenceChar, fenceLen) {
			segs = append(segs, segment{text: src[start:end], code: true})
			start, inFence = end, false
		}
		pos = end
	}
	if start < len(src) {
		segs = append(segs, segment{text: src[start:], code: inFence})
	}
	return segs
}

func openingFence(line string) (byte, int, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" || (trimmed[0] != '`' && trimmed[0] != '~') {
		return 0, 0, false
	}
	ch := trimmed[0]
	n := 0
	for n < len(trimmed) && trimmed[n] == ch {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}
	if ch == '`' && strings.IndexByte(trimmed[n:], '`') >= 0 {
		return 0, 0, false
	}
	return ch, n, true
}

func closingFence(line string, ch byte, minLen int) bool {
	trimmed := strings.TrimLeft(line, " \t")
	n := 0
	for n < len(trimmed) && trimmed[n] == ch {
		n++
	}
	return n >= minLen && strings.TrimSpace(trimmed[n:]) == ""
}

// inlineCodeEnd returns the index just past the code span starting at i
// (src[i] is a backtick), or -1 when the run has no matching closer before
// a blank line.
func inlineCodeEnd(src string, i int) int {
	n := 0
	for i+n < len(src) && src[i+n] == '`' {
		n++
	}
	limit := len(src)
	if blank := strings.Index(src[i+n:], "\n\n"); blank >= 0 {
		limit = i + n + blank
	}
	for j := i + n; j < limit; {
		k := strings.IndexByte(src[j:limit], '`')
		if k < 0 {
			return -1
		}
		j += k
		m := 0
		for j+m < limit && src[j+m] == '`' {
			m++
		}
		if m == n {
			return j + m
		}
		j += m
	}
	return -1
}

// MapProse applies fn to every region of src outside fenced code blocks and
// inline code spans and returns the reassembled text. Code is kept
// byte-for-byte and segmented the same way MaskCode segments it.
func MapProse(src string, fn func(prose string) string) string {
	return transformProse(src, func(b *strings.Builder, prose string) {
		start := 0
		for i := 0; i < len(prose); {
			if prose[i] != '`' {
				i++
				continue
			}
			end := inlineCodeEnd(prose, i)
			if end < 0 {
				for i < len(prose) && prose[i] == '`' {
					i++
				}
				continue
			}
			b.WriteString(fn(prose[start:i]))
			b.WriteString(prose[i:end])
			start, i = end, end
		}
		b.WriteString(fn(prose[start:]))
	})
}

// MaskCode replaces the contents of fenced code blocks and inline code spans
// with spaces. Newlines are kept, so byte offsets and line numbers in the
// result still point into src.
func MaskCode(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	for _, seg := range splitFences(src) {
		if seg.code {
			b.WriteString(blank(seg.text))
			continue
		}
		s := seg.text
		for i := 0; i < len(s); {
			if s[i] != '`' {
				b.WriteByte(s[i])
				i++
				continue
			}
			end := inlineCodeEnd(s, i)
			if end < 0 {
				for i < len(s) && s[i] == '`' {
					b.WriteByte('`')
					i++
				}
				continue
			}
			b.WriteString(blank(s[i:end]))
			i = end
		}
	}
	return b.String()
}

func blank(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c != '\n' {
			out[i] = ' '
		}
	}
	return string(out)
}
