package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdxsite/cmd/mdxsite/commands"
	derrors "git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxsite/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{Out: os.Stdout, Err: os.Stderr}
	ctx := kong.Parse(&cli,
		kong.Name("mdxsite"),
		kong.Description("Serve versioned MDX documentation as structured JSON."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	if err := ctx.Run(); err != nil {
		logger := global.Logger
		if logger == nil {
			logger = slog.Default()
		}
		os.Exit(derrors.NewCLIErrorAdapter(cli.Verbose, logger).HandleError(err))
	}
}
