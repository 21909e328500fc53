package commands

import (
	"context"
	"fmt"

	derrors "git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	DocVersion string `name:"docs-version" short:"V" help:"Check one version instead of all of them"`
	Format     string `short:"f" default:"text" enum:"text,json" help:"Output format (text or json)"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	rt, err := NewRuntime(context.Background(), cfg, g.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	findings, err := rt.Resolver.Check(context.Background(), c.DocVersion)
	if err != nil {
		return err
	}
	if c.Format == "json" {
		if err := printJSON(g.Out, findings); err != nil {
			return err
		}
	} else {
		for _, f := range findings {
			loc := f.File
			if f.Line > 0 {
				loc = fmt.Sprintf("%s:%d", f.File, f.Line)
			}
			if _, err := fmt.Fprintf(g.Out, "%s/%s: [%s] %s\n", f.Version, loc, f.Rule, f.Message); err != nil {
				return err
			}
		}
	}
	if len(findings) > 0 {
		return derrors.ValidationError("documents failed validation").
			WithContext("findings", len(findings)).
			Build()
	}
	if c.Format == "text" {
		_, err = fmt.Fprintln(g.Out, "all documents valid")
	}
	return err
}
