package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rules(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Rule)
	}
	return out
}

func TestPatternScanner(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"clean", "# Title\n\nSome <Callout>text</Callout>", []string{}},
		{"script", "hello\n<script>alert(1)</script>", []string{"script-tag"}},
		{"javascript url", `[x](javascript:alert(1))`, []string{"javascript-url"}},
		{"event handler", `<img src="x" onerror="alert(1)">`, []string{"event-handler"}},
		{"eval", "<Card title={eval('x')}>", []string{"eval"}},
		{"cookie", "{document.cookie}", []string{"cookie-access"}},
		{"proto", `{ __proto__: {} }`, []string{"prototype-pollution"}},
		{"data html", `<iframe src="data:text/html;base64,xx">`, []string{"data-html-url"}},
		{"fenced code ignored", "```html\n<script>alert(1)</script>\n```\n", []string{}},
		{"inline code ignored", "Never use `eval(x)` here.", []string{}},
	}
	s := NewPatternScanner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules(s.Scan(tt.content)))
		})
	}
}

func TestPatternScanner_ReportsLine(t *testing.T) {
	issues := NewPatternScanner().Scan("a\nb\n\n<script>")
	require.Len(t, issues, 1)
	assert.Equal(t, 4, issues[0].Line)
	assert.Equal(t, "line 4: dangerous pattern: script tag", issues[0].String())
}

func TestValidate(t *testing.T) {
	t.Run("clean content is valid", func(t *testing.T) {
		res := Validate("# Hi\n\n<Tabs><Tab>x</Tab></Tabs>", Options{BlockDangerous: true})
		assert.True(t, res.Valid)
		assert.Empty(t, res.Issues)
		assert.Equal(t, "# Hi\n\n<Tabs><Tab>x</Tab></Tabs>", res.Sanitized)
	})

	t.Run("dangerous content is invalid and sanitized", func(t *testing.T) {
		res := Validate("Hi <script>alert(1)</script><a href=\"javascript:x\" onclick=\"y\">z</a>", Options{BlockDangerous: true})
		assert.False(t, res.Valid)
		assert.Equal(t, []string{"script-tag", "javascript-url", "event-handler"}, rules(res.Issues))
		assert.Equal(t, `Hi <a href="blocked:x">z</a>`, res.Sanitized)
	})

	t.Run("scanner can be replaced", func(t *testing.T) {
		flagAll := ScannerFunc(func(string) []Issue { return []Issue{{Rule: "policy"}} })
		res := Validate("fine", Options{BlockDangerous: true, Scanner: flagAll})
		assert.False(t, res.Valid)
	})

	t.Run("unknown components rejected", func(t *testing.T) {
		res := Validate("<Callout /> <Evil /> <Evil/> `<Other />`", Options{})
		assert.False(t, res.Valid)
		require.Len(t, res.Issues, 1)
		assert.Equal(t, "component not allowed: Evil", res.Issues[0].Message)
	})

	t.Run("custom components allowed", func(t *testing.T) {
		res := Validate("<Evil />", Options{AllowCustomComponents: true})
		assert.True(t, res.Valid)
	})
}

func TestSanitize_Strict(t *testing.T) {
	in := "<div dangerouslySetInnerHTML={{ __html: x }}>a</div> eval(1) <iframe src=\"data:text/html,x\">"
	assert.Equal(t, in, Sanitize(in, false))

	got := Sanitize(in, true)
	assert.NotContains(t, got, "dangerouslySetInnerHTML")
	assert.NotContains(t, got, "eval(")
	assert.NotContains(t, got, "data:text/html")
}

func TestSanitize_KeepsCode(t *testing.T) {
	in := "```html\n<script>x</script>\n```\n"
	assert.Equal(t, in, Sanitize(in, true))
}

func TestValidate_InlineCodeUntouched(t *testing.T) {
	in := "Avoid `<a href=\"javascript:alert(1)\" onclick=\"x()\">` links, and `eval(x)` too.\n\n<a onclick=\"y\">z</a>"
	res := Validate(in, Options{Strict: true})
	assert.True(t, res.Valid)
	assert.Equal(t, "Avoid `<a href=\"javascript:alert(1)\" onclick=\"x()\">` links, and `eval(x)` too.\n\n<a>z</a>", res.Sanitized)

	res = Validate("Avoid `<a href=\"javascript:alert(1)\" onclick=\"x()\">` links.", Options{BlockDangerous: true, Strict: true})
	assert.True(t, res.Valid)
	assert.Empty(t, res.Issues)
	assert.Equal(t, "Avoid `<a href=\"javascript:alert(1)\" onclick=\"x()\">` links.", res.Sanitized)
}

func TestCSPHeader(t *testing.T) {
	prod := DefaultCSP().Header(true)
	assert.True(t, strings.HasPrefix(prod, "default-src 'self'; script-src 'self' 'unsafe-inline' 'unsafe-eval'"))
	assert.True(t, strings.HasSuffix(prod, "; upgrade-insecure-requests"))

	dev := DefaultCSP().Header(false)
	assert.Contains(t, dev, "connect-src 'self' ws: wss:")
	assert.NotContains(t, dev, "upgrade-insecure-requests")

	custom := DefaultCSP().With("img-src", "'self'").With("worker-src", "'self'").Header(true)
	assert.Contains(t, custom, "img-src 'self';")
	assert.True(t, strings.HasSuffix(custom, "worker-src 'self'"))
	assert.Contains(t, DefaultCSP().Header(true), "img-src 'self' data: https:")
}

func TestMiddleware(t *testing.T) {
	h := Middleware(HeaderOptions{Production: true, StrictPaths: true})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/versions", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/%2e%2e/etc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
