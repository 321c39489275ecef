package ai

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid ai config")

const (
	EvaluatorPattern     = "pattern"
	EvaluatorDirectional = "directional"
)

// Strategies used after the tactical check. Greedy and balanced never
// call minimax.
const (
	StrategySearch   = "search"
	StrategyBalanced = "balanced"
	StrategyGreedy   = "greedy"
)

type Config struct {
	Depth           int          `mapstructure:"depth" json:"depth"`
	RootBreadth     int          `mapstructure:"root_breadth" json:"root_breadth"`
	Breadth         int          `mapstructure:"breadth" json:"breadth"`
	Radius          int          `mapstructure:"radius" json:"radius"`
	DangerThreshold int          `mapstructure:"danger_threshold" json:"danger_threshold"`
	ForkThreshold   int          `mapstructure:"fork_threshold" json:"fork_threshold"`
	Strategy        string       `mapstructure:"strategy" json:"strategy"`
	Evaluator       string       `mapstructure:"evaluator" json:"evaluator"`
	OpponentWeight  float64      `mapstructure:"opponent_weight" json:"opponent_weight"`
	Patterns        PatternTable `mapstructure:"patterns" json:"patterns,omitempty"`
	WinScore        int          `mapstructure:"win_score" json:"win_score"`
	WinBase         int          `mapstructure:"win_base" json:"win_base"`
	EarlyGameStones int          `mapstructure:"early_game_stones" json:"early_game_stones"`
	UseCache        bool         `mapstructure:"use_cache" json:"use_cache"`
	CacheSize       int          `mapstructure:"cache_size" json:"cache_size"`
	CacheBuckets    int          `mapstructure:"cache_buckets" json:"cache_buckets"`
	LogStats        bool         `mapstructure:"log_stats" json:"log_stats"`
}

func DefaultConfig() Config {
	return Config{
		Depth:       3,
		RootBreadth: 12,
		Breadth:     8,
		Radius:      1,

		// Strong three or better.
		DangerThreshold: 500,
		ForkThreshold:   1000,

		Strategy:       StrategySearch,
		Evaluator:      EvaluatorPattern,
		OpponentWeight: 1.2,
		Patterns:       DefaultPatterns(),

		// WinBase must stay above WinScore so real wins outrank evaluated fives.
		WinScore: 100_000_000,
		WinBase:  1_000_000_000,

		EarlyGameStones: 10,

		UseCache:     true,
		CacheSize:    1 << 16,
		CacheBuckets: 4,
	}
}

// Difficulty presets map onto search depth and breadth.
func DifficultyConfig(level string) (Config, error) {
	cfg := DefaultConfig()
	switch level {
	case "easy":
		cfg.Strategy = StrategyGreedy
		cfg.Depth = 1
		cfg.RootBreadth = 8
	case "medium":
		cfg.Strategy = StrategyBalanced
		cfg.Depth = 2
		cfg.RootBreadth = 6
	case "hard", "":
		cfg.Strategy = StrategySearch
		cfg.Depth = 3
	default:
		return Config{}, fmt.Errorf("difficulty %q: %w", level, ErrInvalidConfig)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Depth < 1:
		return fmt.Errorf("depth must be >= 1, got %d: %w", c.Depth, ErrInvalidConfig)
	case c.RootBreadth < 1 || c.Breadth < 1:
		return fmt.Errorf("breadth must be >= 1, got root=%d interior=%d: %w", c.RootBreadth, c.Breadth, ErrInvalidConfig)
	case c.Radius < 1:
		return fmt.Errorf("radius must be >= 1, got %d: %w", c.Radius, ErrInvalidConfig)
	case c.OpponentWeight <= 0:
		return fmt.Errorf("opponent weight must be positive, got %v: %w", c.OpponentWeight, ErrInvalidConfig)
	case c.WinScore <= 0 || c.WinBase <= c.WinScore:
		return fmt.Errorf("win base %d must exceed win score %d: %w", c.WinBase, c.WinScore, ErrInvalidConfig)
	case c.Evaluator != EvaluatorPattern && c.Evaluator != EvaluatorDirectional:
		return fmt.Errorf("unknown evaluator %q: %w", c.Evaluator, ErrInvalidConfig)
	}
	switch c.Strategy {
	case "", StrategySearch, StrategyBalanced, StrategyGreedy:
	default:
		return fmt.Errorf("unknown strategy %q: %w", c.Strategy, ErrInvalidConfig)
	}
	if c.UseCache && (c.CacheSize < 1 || c.CacheBuckets < 1) {
		return fmt.Errorf("cache size and buckets must be >= 1: %w", ErrInvalidConfig)
	}
	return c.Patterns.Validate()
}
