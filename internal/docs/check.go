package docs

import (
	"context"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/mdxsite/internal/frontmatter"
	"git.home.luguber.info/inful/mdxsite/internal/security"
)

// Finding is one problem reported by Check.
type Finding struct {
	Version string `json:"version"`
	File    string `json:"file"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// Check validates every document of version, or of every version when
// version is empty, against the production content rules and renders the
// sanitized body. Unlike List it reports problems instead of skipping the
// affected files.
func (r *Resolver) Check(ctx context.Context, version string) ([]Finding, error) {
	versions := []string{version}
	if version == "" {
		var err error
		if versions, err = r.Versions(ctx); err != nil {
			return nil, err
		}
	}

	opts := r.securityOptions()
	opts.Strict = true
	opts.BlockDangerous = true

	findings := []Finding{}
	for _, v := range versions {
		clean, err := cleanVersion(v)
		if err != nil {
			return nil, versionNotFound(v)
		}
		dir := filepath.Join(r.root, clean)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, versionNotFound(v)
		}
		files, err := findFiles(dir)
		if err != nil {
			return nil, err
		}
		for _, rel := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			findings = append(findings, r.checkFile(ctx, dir, rel, clean, opts)...)
		}
	}
	return findings, nil
}

func (r *Resolver) checkFile(ctx context.Context, dir, rel, version string, opts security.Options) []Finding {
	fail := func(rule, msg string, line int) []Finding {
		return []Finding{{Version: version, File: rel, Rule: rule, Message: msg, Line: line}}
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return fail("read", err.Error(), 0)
	}
	fm, body, _, err := frontmatter.Split(data)
	if err != nil {
		return fail("frontmatter", err.Error(), 0)
	}
	if _, err := frontmatter.DecodeMeta(fm); err != nil {
		return fail("frontmatter", err.Error(), 0)
	}

	var out []Finding
	check := security.Validate(string(body), opts)
	for _, issue := range check.Issues {
		r.recorder.IncSecurityIssue(issue.Rule)
		out = append(out, Finding{Version: version, File: rel, Rule: issue.Rule, Message: issue.Message, Line: issue.Line})
	}
	if _, err := r.converter.Convert(ctx, check.Sanitized); err != nil {
		out = append(out, fail("render", err.Error(), 0)...)
	}
	return out
}
