package security

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/mdxsite/internal/mdx"
)

// Issue is one finding of a content scan.
type Issue struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
	Line    int    `json:"line"`
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("line %d: %s", i.Line, i.Message)
	}
	return i.Message
}

// Scanner reports dangerous constructs in an MDX body.
type Scanner interface {
	Scan(content string) []Issue
}

// ScannerFunc adapts a function to Scanner.
type ScannerFunc func(content string) []Issue

// Scan calls f.
func (f ScannerFunc) Scan(content string) []Issue { return f(content) }

// Rule is a named pattern that marks content as dangerous.
type Rule struct {
	Name    string
	Message string
	Pattern *regexp.Regexp
}

// DefaultRules returns the built-in dangerous-pattern set.
func DefaultRules() []Rule {
	return []Rule{
		{"script-tag", "script tag", regexp.MustCompile(`(?i)<script\b`)},
		{"javascript-url", "javascript: URL", regexp.MustCompile(`(?i)\bjavascript\s*:`)},
		{"vbscript-url", "vbscript: URL", regexp.MustCompile(`(?i)\bvbscript\s*:`)},
		{"data-html-url", "data:text/html URL", regexp.MustCompile(`(?i)\bdata\s*:\s*text/html`)},
		{"event-handler", "inline event handler", regexp.MustCompile(`(?i)<[a-z][^>]*\son[a-z]+\s*=`)},
		{"eval", "eval() call", regexp.MustCompile(`\beval\s*\(`)},
		{"function-constructor", "Function constructor", regexp.MustCompile(`\bnew\s+Function\s*\(`)},
		{"inner-html", "dangerouslySetInnerHTML", regexp.MustCompile(`dangerouslySetInnerHTML`)},
		{"cookie-access", "document.cookie access", regexp.MustCompile(`\bdocument\.cookie\b`)},
		{"dynamic-import", "dynamic import() expression", regexp.MustCompile(`\bimport\s*\(`)},
		{"require-call", "require() call", regexp.MustCompile(`\brequire\s*\(`)},
		{"prototype-pollution", "__proto__ access", regexp.MustCompile(`__proto__`)},
	}
}

// PatternScanner matches a rule set against prose. Fenced code blocks and
// inline code spans are not scanned.
type PatternScanner struct {
	rules []Rule
}

// NewPatternScanner returns a scanner over rules, or over DefaultRules when
// none are given.
func NewPatternScanner(rules ...Rule) *PatternScanner {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &PatternScanner{rules: rules}
}

// Scan reports the first occurrence of each matching rule, in rule order.
func (s *PatternScanner) Scan(content string) []Issue {
	masked := mdx.MaskCode(content)
	var issues []Issue
	for _, r := range s.rules {
		loc := r.Pattern.FindStringIndex(masked)
		if loc == nil {
			continue
		}
		issues = append(issues, Issue{
			Rule:    r.Name,
			Message: "dangerous pattern: " + r.Message,
			Line:    strings.Count(masked[:loc[0]], "\n") + 1,
		})
	}
	return issues
}
