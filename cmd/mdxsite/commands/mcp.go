package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	"git.home.luguber.info/inful/mdxsite/internal/mcpserver"
)

// MCPCmd implements the 'mcp' command.
type MCPCmd struct {
	Transport string `short:"t" help:"Transport (stdio or http), overrides mcp.transport"`
	Addr      string `short:"a" help:"Listen address for the http transport, overrides mcp.addr"`
}

func (m *MCPCmd) Run(g *Global, root *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	if m.Transport != "" {
		cfg.MCP.Transport = config.NormalizeMCPTransport(m.Transport)
	}
	if m.Addr != "" {
		cfg.MCP.Addr = m.Addr
	}

	rt, err := NewRuntime(ctx, cfg, g.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()
	if err := rt.Start(ctx); err != nil {
		return err
	}
	return mcpserver.Serve(ctx, cfg, mcpserver.NewServer(cfg, rt.Source()), g.Logger)
}
