package docs

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/mdxsite/internal/category"
	"git.home.luguber.info/inful/mdxsite/internal/logfields"
	"git.home.luguber.info/inful/mdxsite/internal/sidebar"
)

// Versions lists the version directories under the docs root in name
// order. When the root cannot be read the configured default version is
// the only version.
func (r *Resolver) Versions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.root)
	if err != nil {
		r.logger.Warn("Cannot read docs root", logfields.Path(r.root), logfields.Error(err))
		return []string{r.cfg.Docs.DefaultVersion}, nil
	}
	versions := []string{}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			versions = append(versions, e.Name())
		}
	}
	return versions, nil
}

// List returns the documents of version for locale, metadata only. Each
// logical slug appears once, in the requested locale when a translation
// exists and in the default locale otherwise. Drafts are hidden outside
// development. The result is stably sorted by sidebar_position, then order.
func (r *Resolver) List(ctx context.Context, version, locale string) ([]Doc, error) {
	start := time.Now()
	v, err := cleanVersion(version)
	if err != nil {
		return nil, versionNotFound(version)
	}
	versionDir := filepath.Join(r.root, v)
	if info, err := os.Stat(versionDir); err != nil || !info.IsDir() {
		return nil, versionNotFound(version)
	}

	files, err := findFiles(versionDir)
	if err != nil {
		r.logger.Warn("Error walking version directory", logfields.Path(versionDir), logfields.Error(err))
	}
	sidecars, err := category.LoadAll(versionDir)
	if err != nil {
		r.logger.Warn("Invalid category sidecar", logfields.Version(v), logfields.Error(err))
	}

	read := make([]*Doc, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Docs.Concurrency)
	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			read[i] = r.listEntry(versionDir, rel, v, sidecars)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	target := r.cfg.I18n.Locale(locale)
	out := r.dedupe(read, target)
	slices.SortStableFunc(out, func(a, b Doc) int {
		return a.Meta.Position(sidebar.DefaultPosition) - b.Meta.Position(sidebar.DefaultPosition)
	})

	r.recorder.ObserveListDuration(v, time.Since(start))
	r.recorder.SetListedDocuments(v, len(out))
	return out, nil
}

// listEntry reads one file for a listing and attaches its folder's sidecar.
func (r *Resolver) listEntry(versionDir, rel, version string, sidecars map[string]category.Config) *Doc {
	logical := strings.TrimSuffix(rel, ".mdx")
	fileLocale := r.cfg.I18n.DefaultLocale
	if r.cfg.I18n.Enabled {
		if i := strings.LastIndexByte(logical, '.'); i >= 0 && !strings.Contains(logical[i:], "/") {
			if suffix := logical[i+1:]; slices.Contains(r.cfg.I18n.Locales, suffix) {
				fileLocale, logical = suffix, logical[:i]
			}
		}
	}

	doc, err := r.readDoc(filepath.Join(versionDir, filepath.FromSlash(rel)), logical, version)
	if err != nil {
		r.logger.Warn("Skipping document", logfields.File(rel), logfields.Version(version), logfields.Error(err))
		return nil
	}
	r.localize(doc, fileLocale, fileLocale)
	if folder := path.Dir(logical); folder != "." {
		if c, ok := sidecars[folder]; ok {
			doc.Category = &c
		}
	}
	doc.sidecars = sidecars
	return doc
}

// dedupe drops drafts and keeps one document per logical slug, preferring
// target over the default locale. Order of first appearance is kept.
func (r *Resolver) dedupe(read []*Doc, target string) []Doc {
	i18n := r.cfg.I18n
	showDrafts := r.cfg.IsDevelopment()
	index := make(map[string]int, len(read))
	out := make([]Doc, 0, len(read))
	for _, d := range read {
		if d == nil || (d.Meta.Draft && !showDrafts) {
			continue
		}
		key := d.logical
		i, seen := index[key]
		switch {
		case !seen && (d.Locale == target || d.Locale == i18n.DefaultLocale):
			index[key] = len(out)
			out = append(out, *d)
		case seen && d.Locale == target && out[i].Locale != target:
			out[i] = *d
		}
	}
	// Fallback documents route within the requested locale.
	for i := range out {
		if out[i].Locale != target {
			out[i].Slug = i18n.PrefixFor(target, out[i].Locale) + out[i].logical
		}
	}
	return out
}

// findFiles returns the .mdx files under dir as slash separated paths
// relative to dir, in lexical walk order. Hidden directories are skipped.
func findFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), ".mdx") {
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	return files, err
}
