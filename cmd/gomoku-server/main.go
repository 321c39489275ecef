package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NikitosII/gomoku/internal/config"
	"github.com/NikitosII/gomoku/internal/game"
	"github.com/NikitosII/gomoku/internal/logger"
	"github.com/NikitosII/gomoku/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("gomoku-server", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to a config file (yaml, json, toml)")
	flags.String("addr", ":8080", "listen address")
	flags.String("log-level", "info", "log level")
	flags.Bool("log-dev", false, "human-readable development logs")
	flags.String("difficulty", "", "easy, medium or hard")
	_ = flags.Parse(os.Args[1:])

	loader := config.NewLoader()
	for key, name := range map[string]string{
		"server.addr":     "addr",
		"log.level":       "log-level",
		"log.development": "log-dev",
		"game.difficulty": "difficulty",
	} {
		if err := loader.BindFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	cfg, err := loader.Load(*configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	settings, err := game.DefaultSettings().WithMode(cfg.Game.Mode, cfg.Game.HumanPlayer)
	if err != nil {
		return err
	}
	settings.BoardSize = cfg.Game.BoardSize
	settings.BlackStarts = cfg.Game.BlackStarts

	g, err := game.New(settings, cfg.AI,
		game.WithLogger(log.Named("game")),
		game.WithGhostThrottle(cfg.Server.GhostThrottle),
	)
	if err != nil {
		return err
	}
	controller := game.NewController(g)
	srv := server.New(controller, config.NewStore(cfg.AI),
		server.WithLogger(log.Named("server")),
		server.WithGhostMode(cfg.Server.GhostMode),
		server.WithAnalyzeTimeout(cfg.Server.AnalyzeTimeout),
	)
	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: srv.Router()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return srv.Hub().Run(ctx) })
	eg.Go(func() error { return srv.GhostHub().Run(ctx) })
	eg.Go(func() error { return srv.RunTicker(ctx, cfg.Server.TickInterval) })
	eg.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.Int("depth", cfg.AI.Depth), zap.String("evaluator", cfg.AI.Evaluator))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("graceful shutdown failed", zap.Error(err))
			return httpServer.Close()
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		log.Error("exiting after error", zap.Error(err))
		return err
	}
	return nil
}
