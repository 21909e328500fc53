package security

import (
	"log/slog"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/mdxsite/internal/logfields"
)

// Directive is one Content-Security-Policy directive.
type Directive struct {
	Name    string
	Sources []string
}

// CSP is an ordered list of directives.
type CSP []Directive

// DefaultCSP returns the policy for rendered documentation. Client-side
// component hydration needs inline scripts and styles.
func DefaultCSP() CSP {
	return CSP{
		{"default-src", []string{"'self'"}},
		{"script-src", []string{"'self'", "'unsafe-inline'", "'unsafe-eval'"}},
		{"style-src", []string{"'self'", "'unsafe-inline'"}},
		{"img-src", []string{"'self'", "data:", "https:"}},
		{"font-src", []string{"'self'", "data:"}},
		{"connect-src", []string{"'self'"}},
		{"frame-src", []string{"'self'"}},
		{"object-src", []string{"'none'"}},
		{"base-uri", []string{"'self'"}},
		{"form-action", []string{"'self'"}},
		{"frame-ancestors", []string{"'self'"}},
		{"upgrade-insecure-requests", nil},
	}
}

// With returns a copy of c where the named directive's sources are
// replaced, appending it when absent.
func (c CSP) With(name string, sources ...string) CSP {
	out := make(CSP, 0, len(c)+1)
	found := false
	for _, d := range c {
		if d.Name == name {
			d = Directive{Name: name, Sources: sources}
			found = true
		}
		out = append(out, d)
	}
	if !found {
		out = append(out, Directive{Name: name, Sources: sources})
	}
	return out
}

// Header renders the policy. Outside production websocket connections are
// allowed for live reload and upgrade-insecure-requests is omitted.
func (c CSP) Header(production bool) string {
	parts := make([]string, 0, len(c))
	for _, d := range c {
		sources := d.Sources
		if !production {
			switch d.Name {
			case "upgrade-insecure-requests":
				continue
			case "connect-src":
				sources = append(append([]string{}, sources...), "ws:", "wss:")
			}
		}
		if len(sources) == 0 {
			parts = append(parts, d.Name)
			continue
		}
		parts = append(parts, d.Name+" "+strings.Join(sources, " "))
	}
	return strings.Join(parts, "; ")
}

// Headers are the static security headers sent with every response.
var Headers = map[string]string{
	"X-Frame-Options":        "SAMEORIGIN",
	"X-Content-Type-Options": "nosniff",
	"X-XSS-Protection":       "1; mode=block",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
	"Permissions-Policy":     "camera=(), microphone=(), geolocation=()",
}

// HeaderOptions configures Middleware.
type HeaderOptions struct {
	// CSP overrides the generated policy when non-empty.
	CSP string
	// Production selects the production policy.
	Production bool
	// StrictPaths rejects traversal in request paths with 400.
	StrictPaths bool
	Logger      *slog.Logger
}

// Middleware sets the security headers and CSP on every response and, with
// StrictPaths, rejects suspicious request paths.
func Middleware(opts HeaderOptions) func(http.Handler) http.Handler {
	csp := opts.CSP
	if csp == "" {
		csp = DefaultCSP().Header(opts.Production)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range Headers {
				h.Set(k, v)
			}
			h.Set("Content-Security-Policy", csp)

			if opts.StrictPaths {
				if err := ValidateRequestPath(r.URL.EscapedPath()); err != nil {
					logger.Warn("Blocked request",
						logfields.Path(r.URL.Path),
						slog.String("remote_addr", r.RemoteAddr),
						logfields.Error(err))
					http.Error(w, "Bad Request", http.StatusBadRequest)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
