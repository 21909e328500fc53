package mdx

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns heading text into an anchor id: diacritics folded,
// lowercased, whitespace runs collapsed to "-", anything outside [a-z0-9-]
// dropped and one leading and trailing "-" trimmed.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	inSpace := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
		inSpace = false
	}
	out := b.String()
	out = strings.TrimPrefix(out, "-")
	out = strings.TrimSuffix(out, "-")
	return out
}

// Slugger hands out unique heading ids for one document. It implements
// goldmark's parser.IDs so rendered headings and the table of contents
// agree. A Slugger is not safe for concurrent use.
type Slugger struct {
	seen map[string]int
}

// NewSlugger returns an empty Slugger.
func NewSlugger() *Slugger {
	return &Slugger{seen: make(map[string]int)}
}

// Slug returns the unique id for text, suffixing -1, -2, ... on repeats.
func (s *Slugger) Slug(text string) string {
	base := Slugify(text)
	if base == "" {
		base = "heading"
	}
	id := base
	if n, taken := s.seen[base]; taken {
		for {
			n++
			id = base + "-" + strconv.Itoa(n)
			if _, dup := s.seen[id]; !dup {
				break
			}
		}
		s.seen[base] = n
	}
	s.seen[id] = 0
	return id
}

// Generate implements parser.IDs.
func (s *Slugger) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(s.Slug(headingText(string(value))))
}

// Put implements parser.IDs for explicitly set ids.
func (s *Slugger) Put(value []byte) {
	if _, ok := s.seen[string(value)]; !ok {
		s.seen[string(value)] = 0
	}
}

// headingText strips an ATX closing sequence from raw heading text.
func headingText(raw string) string {
	t := strings.TrimSpace(raw)
	trimmed := strings.TrimRight(t, "#")
	if trimmed == "" {
		return ""
	}
	if trimmed != t && (strings.HasSuffix(trimmed, " ") || strings.HasSuffix(trimmed, "\t")) {
		return strings.TrimSpace(trimmed)
	}
	return t
}
