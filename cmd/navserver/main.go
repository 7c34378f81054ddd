package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/navgo/internal/config"
	"github.com/udisondev/navgo/internal/service"
)

const ConfigPath = "config/navserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config
	cfgPath := ConfigPath
	if p := os.Getenv("NAVGO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadNavServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Configure slog
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))

	slog.Info("navgo navigation server starting")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", cfgPath, err)
	}
	slog.Info("config loaded",
		"bind", cfg.BindAddress,
		"port", cfg.Port,
		"mmaps", cfg.MmapsPath,
		"format", cfg.MmapFormat)

	svc, err := service.New(cfg)
	if err != nil {
		return fmt.Errorf("creating navigation service: %w", err)
	}
	svc.Preload(cfg.PreloadMaps...)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting navigation server")
		if err := svc.Run(gctx); err != nil {
			return fmt.Errorf("navigation server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("navigation server stopped")
	return nil
}
