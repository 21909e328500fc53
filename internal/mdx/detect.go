package mdx

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	mdHeadingRe     = regexp.MustCompile(`(?:^|\n)\s*#{1,6}\s`)
	mdLinkRe        = regexp.MustCompile(`\[.*\]\(`)
	mdListRe        = regexp.MustCompile(`(?:^|\n)\s*[-*+]\s`)
	mdOrderedListRe = regexp.MustCompile(`(?:^|\n)\s*\d+\.\s`)
)

// looksLikeMarkdown reports whether raw text left unparsed inside an HTML
// block carries markdown syntax.
func looksLikeMarkdown(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	return mdHeadingRe.MatchString(raw) ||
		strings.Contains(trimmed, "**") ||
		mdLinkRe.MatchString(trimmed) ||
		mdListRe.MatchString(raw) ||
		mdOrderedListRe.MatchString(raw) ||
		(len(trimmed) > 10 && strings.Contains(trimmed, "\n"))
}

func containsMarkdownText(children []*html.Node) bool {
	for _, c := range children {
		if c.Type == html.TextNode && looksLikeMarkdown(c.Data) {
			return true
		}
	}
	return false
}

// Dedent removes the common leading whitespace of all non-blank lines.
func Dedent(s string) string {
	lines := strings.Split(s, "\n")
	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t\r\f\v"))
		if minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return s
	}
	for i, line := range lines {
		if len(line) >= minIndent {
			lines[i] = line[minIndent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t\r\f\v")
		}
	}
	return strings.Join(lines, "\n")
}
