package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/NikitosII/gomoku/internal/ai"
	"github.com/NikitosII/gomoku/internal/arena"
	"github.com/NikitosII/gomoku/internal/board"
	"github.com/NikitosII/gomoku/internal/config"
	"github.com/NikitosII/gomoku/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("gomoku-arena", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to a config file (yaml, json, toml)")
	flags.Int("size", 15, "board size")
	flags.Int("depth", ai.DefaultConfig().Depth, "search depth for both contenders")
	flags.String("log-level", "info", "log level")
	openings := flags.Int("openings", 4, "openings to play; each is played twice with colours swapped")
	plies := flags.Int("plies", 4, "stones in each opening")
	seed := flags.Int64("seed", 1, "seed for openings and engine tie-breaks")
	moveTimeout := flags.Duration("move-timeout", 10*time.Second, "per-move search limit, 0 for none")
	first := flags.String("first", ai.EvaluatorPattern, "evaluator of the first contender")
	second := flags.String("second", ai.EvaluatorDirectional, "evaluator of the second contender")
	_ = flags.Parse(os.Args[1:])

	loader := config.NewLoader()
	for key, name := range map[string]string{
		"game.board_size": "size",
		"ai.depth":        "depth",
		"log.level":       "log-level",
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

	a, b := cfg.AI, cfg.AI
	a.Evaluator, b.Evaluator = *first, *second
	contenderA := arena.Contender{Name: "a-" + *first, Config: a}
	contenderB := arena.Contender{Name: "b-" + *second, Config: b}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ar := arena.New(board.Square(cfg.Game.BoardSize),
		arena.WithLogger(log.Named("arena")),
		arena.WithSeed(*seed),
		arena.WithOpeningPlies(*plies),
		arena.WithMoveTimeout(*moveTimeout),
	)
	start := time.Now()
	standings, err := ar.Run(ctx, contenderA, contenderB, *openings)
	if err != nil {
		return err
	}
	for _, s := range standings {
		log.Info("standing",
			zap.String("name", s.Name),
			zap.Int("wins", s.Wins),
			zap.Int("losses", s.Losses),
			zap.Int("draws", s.Draws),
			zap.Float64("elo", s.Elo),
		)
	}
	log.Info("arena finished", zap.Int("games", 2*(*openings)), zap.Duration("elapsed", time.Since(start)))
	return nil
}
