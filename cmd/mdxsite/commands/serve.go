package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/mdxsite/internal/server/httpserver"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr string `short:"a" help:"Listen address, overrides server.addr"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.run(ctx, g, root)
}

func (s *ServeCmd) run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}

	rt, err := NewRuntime(ctx, cfg, g.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()
	if err := rt.Start(ctx); err != nil {
		return err
	}

	srv := httpserver.New(cfg, httpserver.Options{
		Docs:     rt.Source(),
		Cache:    rt.CacheControl(),
		Recorder: rt.Recorder,
		Registry: rt.Registry,
		Logger:   g.Logger,
	})
	return srv.Start(ctx)
}
