package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/NikitosII/gomoku/internal/ai"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Server.Addr != want.Server.Addr || cfg.Game.BoardSize != want.Game.BoardSize {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AI.Depth != want.AI.Depth || cfg.AI.Evaluator != ai.EvaluatorPattern {
		t.Fatalf("unexpected ai defaults: %+v", cfg.AI)
	}
	if len(cfg.AI.Patterns) != len(ai.DefaultPatterns()) {
		t.Fatalf("expected default patterns, got %d", len(cfg.AI.Patterns))
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gomoku.yaml")
	body := []byte(`
server:
  addr: ":9090"
ai:
  depth: 2
  evaluator: directional
  patterns:
    xxxxx: 1000
    _xxxx_: 500
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GOMOKU_GAME_BOARD_SIZE", "19")

	cfg, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("file value ignored: %q", cfg.Server.Addr)
	}
	if cfg.Game.BoardSize != 19 {
		t.Fatalf("env value ignored: %d", cfg.Game.BoardSize)
	}
	if cfg.AI.Depth != 2 || cfg.AI.Evaluator != ai.EvaluatorDirectional {
		t.Fatalf("ai section ignored: %+v", cfg.AI)
	}
	if cfg.AI.Patterns["XXXXX"] != 1000 || cfg.AI.Patterns["_XXXX_"] != 500 {
		t.Fatalf("patterns not normalized: %v", cfg.AI.Patterns)
	}
}

func TestLoadFlagOverridesDefault(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("depth", 3, "")
	if err := fs.Parse([]string{"--depth", "4"}); err != nil {
		t.Fatal(err)
	}
	l := NewLoader()
	if err := l.BindFlag("ai.depth", fs.Lookup("depth")); err != nil {
		t.Fatal(err)
	}
	if err := l.BindFlag("ai.breadth", fs.Lookup("missing")); err == nil {
		t.Fatalf("expected error binding an undefined flag")
	}
	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Depth != 4 {
		t.Fatalf("flag ignored: depth=%d", cfg.AI.Depth)
	}
}

func TestLoadDifficultyPreset(t *testing.T) {
	t.Setenv("GOMOKU_GAME_DIFFICULTY", "easy")
	cfg, err := NewLoader().Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Depth != 1 || cfg.AI.Strategy != ai.StrategyGreedy {
		t.Fatalf("expected easy greedy depth 1, got %s depth %d", cfg.AI.Strategy, cfg.AI.Depth)
	}

	t.Setenv("GOMOKU_GAME_DIFFICULTY", "medium")
	cfg, err = NewLoader().Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Strategy != ai.StrategyBalanced || cfg.AI.RootBreadth != 6 {
		t.Fatalf("expected medium balanced breadth 6, got %s breadth %d", cfg.AI.Strategy, cfg.AI.RootBreadth)
	}

	t.Setenv("GOMOKU_GAME_DIFFICULTY", "impossible")
	if _, err := NewLoader().Load(""); !errors.Is(err, ai.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	for _, size := range []string{"3", "3000"} {
		t.Setenv("GOMOKU_GAME_BOARD_SIZE", size)
		if _, err := NewLoader().Load(""); !errors.Is(err, ErrInvalid) {
			t.Fatalf("size %s: expected ErrInvalid, got %v", size, err)
		}
	}
	if _, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}

func TestStoreCopiesPatterns(t *testing.T) {
	s := NewStore(ai.DefaultConfig())
	got := s.Get()
	got.Patterns["XXXXX"] = -1
	if s.Get().Patterns["XXXXX"] == -1 {
		t.Fatalf("store leaked its pattern map")
	}

	bad := ai.DefaultConfig()
	bad.Depth = 0
	if err := s.Update(bad); !errors.Is(err, ai.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	good := ai.DefaultConfig()
	good.Depth = 2
	if err := s.Update(good); err != nil {
		t.Fatal(err)
	}
	if s.Get().Depth != 2 {
		t.Fatalf("update not applied")
	}
}
