package security

import (
	"regexp"
	"sort"

	"git.home.luguber.info/inful/mdxsite/internal/mdx"
)

// Options controls Validate.
type Options struct {
	// Strict additionally neutralizes JSX escape hatches while sanitizing.
	Strict bool
	// BlockDangerous runs the Scanner and fails validation on any issue.
	BlockDangerous bool
	// AllowCustomComponents skips the component allowlist check.
	AllowCustomComponents bool
	// Scanner defaults to NewPatternScanner().
	Scanner Scanner
	// Components is the allowlist, defaulting to mdx.DefaultTags().
	Components *mdx.Dictionary
}

// Result is the outcome of Validate.
type Result struct {
	Valid     bool
	Issues    []Issue
	Sanitized string
}

var defaultScanner = NewPatternScanner()

// Validate checks an MDX body and returns it sanitized. Issues from the
// scanner and from unknown capitalized component tags make the result
// invalid; the sanitized text is always populated.
func Validate(content string, opts Options) Result {
	var issues []Issue
	if opts.BlockDangerous {
		scanner := opts.Scanner
		if scanner == nil {
			scanner = defaultScanner
		}
		issues = append(issues, scanner.Scan(content)...)
	}
	if !opts.AllowCustomComponents {
		allow := opts.Components
		if allow == nil {
			allow = mdx.DefaultTags()
		}
		issues = append(issues, ValidateComponents(content, allow)...)
	}
	return Result{
		Valid:     len(issues) == 0,
		Issues:    issues,
		Sanitized: Sanitize(content, opts.Strict),
	}
}

var componentTagRe = regexp.MustCompile(`<([A-Z][A-Za-z0-9]*)\b`)

// ValidateComponents reports every capitalized JSX tag outside code that is
// not in allow, once per name in sorted order.
func ValidateComponents(content string, allow *mdx.Dictionary) []Issue {
	unknown := map[string]bool{}
	for _, m := range componentTagRe.FindAllStringSubmatch(mdx.MaskCode(content), -1) {
		if !allow.Has(m[1]) {
			unknown[m[1]] = true
		}
	}
	names := make([]string, 0, len(unknown))
	for name := range unknown {
		names = append(names, name)
	}
	sort.Strings(names)

	issues := make([]Issue, 0, len(names))
	for _, name := range names {
		issues = append(issues, Issue{Rule: "unknown-component", Message: "component not allowed: " + name})
	}
	return issues
}

var (
	scriptBlockRe  = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	scriptOpenRe   = regexp.MustCompile(`(?i)<script\b[^>]*>`)
	handlerAttrRe  = regexp.MustCompile(`(?i)(<[a-z][^>]*?)\s+on[a-z]+\s*=\s*(?:"[^"]*"|'[^']*'|\{[^}]*\}|[^\s>]+)`)
	scriptURLRe    = regexp.MustCompile(`(?i)\b(?:javascript|vbscript)\s*:`)
	dataHTMLRe     = regexp.MustCompile(`(?i)\bdata\s*:\s*text/html`)
	innerHTMLRe    = regexp.MustCompile(`\s+dangerouslySetInnerHTML\s*=\s*\{\{.*?\}\}`)
	evalCallRe     = regexp.MustCompile(`\beval\s*\(`)
	funcCtorCallRe = regexp.MustCompile(`\bnew\s+Function\s*\(`)
)

// Sanitize removes script blocks and inline event handlers and disarms
// script URLs outside fenced code and inline code spans. Strict mode also strips
// dangerouslySetInnerHTML attributes, data:text/html URLs and eval or
// Function constructor calls.
func Sanitize(content string, strict bool) string {
	return mdx.MapProse(content, func(prose string) string {
		prose = scriptBlockRe.ReplaceAllString(prose, "")
		prose = scriptOpenRe.ReplaceAllString(prose, "")
		for {
			next := handlerAttrRe.ReplaceAllString(prose, "$1")
			if next == prose {
				break
			}
			prose = next
		}
		prose = scriptURLRe.ReplaceAllString(prose, "blocked:")
		if strict {
			prose = innerHTMLRe.ReplaceAllString(prose, "")
			prose = dataHTMLRe.ReplaceAllString(prose, "blocked:")
			prose = evalCallRe.ReplaceAllString(prose, "blocked(")
			prose = funcCtorCallRe.ReplaceAllString(prose, "blocked(")
		}
		return prose
	})
}
