package docs

import (
	"context"
	"strings"
)

// Redirects builds the redirect table from redirect_from front matter across
// all versions, using default locale listings. Targets are
// <base_path>/<version>/<slug>.
func (r *Resolver) Redirects(ctx context.Context) ([]Redirect, error) {
	versions, err := r.Versions(ctx)
	if err != nil {
		return nil, err
	}
	out := []Redirect{}
	for _, v := range versions {
		listed, err := r.List(ctx, v, r.cfg.I18n.DefaultLocale)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		for _, d := range listed {
			for _, from := range d.Meta.RedirectFrom {
				out = append(out, Redirect{From: from, To: r.route(v, d.Slug)})
			}
		}
	}
	return out, nil
}

// FindRedirect returns the target for path, ignoring a trailing slash.
func (r *Resolver) FindRedirect(ctx context.Context, path string) (string, bool, error) {
	table, err := r.Redirects(ctx)
	if err != nil {
		return "", false, err
	}
	to, ok := MatchRedirect(table, path)
	return to, ok, nil
}

// MatchRedirect looks path up in table, ignoring a trailing slash.
func MatchRedirect(table []Redirect, path string) (string, bool) {
	want := trimSlash(path)
	for _, rd := range table {
		if trimSlash(rd.From) == want {
			return rd.To, true
		}
	}
	return "", false
}

func (r *Resolver) route(version, slug string) string {
	return r.cfg.Site.BasePath + "/" + version + "/" + slug
}

func trimSlash(p string) string {
	if len(p) > 1 {
		return strings.TrimSuffix(p, "/")
	}
	return p
}
