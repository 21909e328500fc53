// Package commands implements the mdxsite command line.
package commands

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	derrors "git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "mdxsite.yaml"

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
	Err    io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"mdxsite.yaml"`
	Docs    string           `short:"d" help:"Docs root, overrides docs.root"`
	Env     string           `short:"e" help:"Environment (production or development), overrides the configuration"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve     ServeCmd     `cmd:"" help:"Serve the JSON docs API"`
	Render    RenderCmd    `cmd:"" help:"Resolve and render one document"`
	List      ListCmd      `cmd:"" help:"List the documents of a version"`
	Toc       TocCmd       `cmd:"" help:"Print the table of contents of a document"`
	Check     CheckCmd     `cmd:"" help:"Validate every document against the content rules"`
	Redirects RedirectsCmd `cmd:"" help:"Print the redirect table or look up one path"`
	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`
	MCP       MCPCmd       `cmd:"" name:"mcp" help:"Expose the docs as MCP tools"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	if g.Out == nil {
		g.Out = os.Stdout
	}
	if g.Err == nil {
		g.Err = os.Stderr
	}
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(g.Err, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// LoadConfig reads the configuration file and applies the global flag
// overrides. A missing file at the default path yields the defaults; a
// missing file anywhere else is an error. Logging is reconfigured from the
// monitoring section.
func (c *CLI) LoadConfig(g *Global) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	_, statErr := os.Stat(c.Config)
	if errors.Is(statErr, fs.ErrNotExist) && c.Config == DefaultConfigPath {
		g.Logger.Debug("No configuration file, using defaults", slog.String("path", c.Config))
		cfg, err = config.Parse(nil)
	} else {
		cfg, err = config.Load(c.Config)
	}
	if err != nil {
		return nil, configError(err, c.Config)
	}
	if c.Env != "" {
		cfg.Environment = config.NormalizeEnvironment(c.Env)
	}
	if c.Docs != "" {
		cfg.Docs.Root = c.Docs
	}

	g.Logger = newLogger(g.Err, cfg.Monitoring.Logging, c.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

func newLogger(w io.Writer, lc config.MonitoringLogging, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch lc.Level {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func configError(err error, path string) error {
	return derrors.WrapError(err, derrors.CategoryConfig, "load configuration").
		WithContext("path", path).
		Build()
}
