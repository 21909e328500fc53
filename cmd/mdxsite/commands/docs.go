package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	derrors "git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxsite/internal/server/handlers"
	"git.home.luguber.info/inful/mdxsite/internal/server/responses"
)

// DocFlags selects version and locale for the document commands.
type DocFlags struct {
	DocVersion string `name:"docs-version" short:"V" help:"Docs version, defaults to docs.default_version"`
	Locale     string `short:"l" help:"Locale, defaults to the default locale"`
}

func (f DocFlags) version(cfg *config.Config) string {
	if f.DocVersion != "" {
		return f.DocVersion
	}
	return cfg.Docs.DefaultVersion
}

// withSource loads the configuration and runs fn against the document
// source. One-shot commands never start background invalidation.
func withSource(g *Global, root *CLI, fn func(ctx context.Context, cfg *config.Config, src handlers.DocSource) error) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	rt, err := NewRuntime(context.Background(), cfg, g.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()
	return fn(context.Background(), cfg, rt.Source())
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	DocFlags `embed:""`

	Slug   string `arg:"" help:"Document slug, optionally locale prefixed"`
	Format string `short:"f" default:"json" enum:"json,html,nodes,markdown" help:"Output format (json, html, nodes or markdown)"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	return withSource(g, root, func(ctx context.Context, cfg *config.Config, src handlers.DocSource) error {
		doc, err := src.Resolve(ctx, r.Slug, r.version(cfg), r.Locale)
		if err != nil {
			return err
		}
		switch r.Format {
		case "html":
			_, err = fmt.Fprintln(g.Out, doc.Content)
		case "markdown":
			_, err = fmt.Fprint(g.Out, doc.Markdown())
		case "nodes":
			err = printJSON(g.Out, doc.ContentNodes)
		default:
			err = printJSON(g.Out, responses.DocResponse{Doc: doc, TOC: doc.TableOfContents()})
		}
		return err
	})
}

// ListCmd implements the 'list' command.
type ListCmd struct {
	DocFlags `embed:""`

	Format string `short:"f" default:"text" enum:"text,json" help:"Output format (text or json)"`
}

func (l *ListCmd) Run(g *Global, root *CLI) error {
	return withSource(g, root, func(ctx context.Context, cfg *config.Config, src handlers.DocSource) error {
		version := l.version(cfg)
		listed, err := src.List(ctx, version, l.Locale)
		if err != nil {
			return err
		}
		if l.Format == "json" {
			summaries := make([]responses.DocSummary, len(listed))
			for i := range listed {
				summaries[i] = responses.SummaryOf(listed[i])
			}
			return printJSON(g.Out, responses.DocListResponse{
				Version: version,
				Locale:  cfg.I18n.Locale(l.Locale),
				Docs:    summaries,
			})
		}
		for _, d := range listed {
			draft := ""
			if d.Meta.Draft {
				draft = " (draft)"
			}
			if _, err := fmt.Fprintf(g.Out, "%-40s %s%s\n", d.Slug, d.Title, draft); err != nil {
				return err
			}
		}
		return nil
	})
}

// TocCmd implements the 'toc' command.
type TocCmd struct {
	DocFlags `embed:""`

	Slug string `arg:"" help:"Document slug"`
}

func (c *TocCmd) Run(g *Global, root *CLI) error {
	return withSource(g, root, func(ctx context.Context, cfg *config.Config, src handlers.DocSource) error {
		doc, err := src.Resolve(ctx, c.Slug, c.version(cfg), c.Locale)
		if err != nil {
			return err
		}
		for _, item := range doc.TableOfContents() {
			indent := strings.Repeat("  ", max(item.Level-2, 0))
			if _, err := fmt.Fprintf(g.Out, "%s- %s (#%s)\n", indent, item.Title, item.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// RedirectsCmd implements the 'redirects' command.
type RedirectsCmd struct {
	Path string `short:"p" help:"Look up the target of one path instead of printing the table"`
}

func (c *RedirectsCmd) Run(g *Global, root *CLI) error {
	return withSource(g, root, func(ctx context.Context, _ *config.Config, src handlers.DocSource) error {
		if c.Path != "" {
			to, ok, err := src.FindRedirect(ctx, c.Path)
			if err != nil {
				return err
			}
			if !ok {
				return derrors.NotFoundError("no redirect for path").WithContext("path", c.Path).Build()
			}
			_, err = fmt.Fprintln(g.Out, to)
			return err
		}
		table, err := src.Redirects(ctx)
		if err != nil {
			return err
		}
		for _, r := range table {
			if _, err := fmt.Fprintf(g.Out, "%s -> %s\n", r.From, r.To); err != nil {
				return err
			}
		}
		return nil
	})
}
