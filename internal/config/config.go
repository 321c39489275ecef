package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/NikitosII/gomoku/internal/ai"
	"github.com/NikitosII/gomoku/internal/game"
)

const EnvPrefix = "GOMOKU"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Game   GameConfig   `mapstructure:"game"`
	AI     ai.Config    `mapstructure:"ai"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	TickInterval    time.Duration `mapstructure:"tick_interval"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	GhostThrottle   time.Duration `mapstructure:"ghost_throttle"`
	GhostMode       bool          `mapstructure:"ghost_mode"`
	AnalyzeTimeout  time.Duration `mapstructure:"analyze_timeout"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type GameConfig struct {
	BoardSize   int    `mapstructure:"board_size"`
	Mode        string `mapstructure:"mode"`
	HumanPlayer int    `mapstructure:"human_player"`
	BlackStarts bool   `mapstructure:"black_starts"`
	Difficulty  string `mapstructure:"difficulty"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			TickInterval:    50 * time.Millisecond,
			ShutdownTimeout: 5 * time.Second,
			GhostThrottle:   50 * time.Millisecond,
			GhostMode:       true,
			AnalyzeTimeout:  10 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Game: GameConfig{
			BoardSize:   15,
			Mode:        "ai_vs_human",
			HumanPlayer: 1,
			BlackStarts: true,
		},
		AI: ai.DefaultConfig(),
	}
}

// Loader reads configuration from defaults, an optional file, GOMOKU_*
// environment variables and bound command-line flags, lowest to highest.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: flag not defined", key)
	}
	return l.v.BindPFlag(key, flag)
}

func (l *Loader) Load(path string) (Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Game.Difficulty != "" {
		preset, err := ai.DifficultyConfig(cfg.Game.Difficulty)
		if err != nil {
			return Config{}, err
		}
		// A named difficulty owns the strategy and search shape.
		cfg.AI.Strategy = preset.Strategy
		cfg.AI.Depth = preset.Depth
		cfg.AI.RootBreadth = preset.RootBreadth
	}
	if len(cfg.AI.Patterns) == 0 {
		cfg.AI.Patterns = ai.DefaultPatterns()
	} else {
		cfg.AI.Patterns = cfg.AI.Patterns.Normalized()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var ErrInvalid = errors.New("invalid config")

func (c Config) Validate() error {
	if c.Game.BoardSize < game.MinBoardSize || c.Game.BoardSize > game.MaxBoardSize {
		return fmt.Errorf("game.board_size must be in %d..%d, got %d: %w", game.MinBoardSize, game.MaxBoardSize, c.Game.BoardSize, ErrInvalid)
	}
	if c.Server.TickInterval <= 0 {
		return fmt.Errorf("server.tick_interval must be positive: %w", ErrInvalid)
	}
	return c.AI.Validate()
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.tick_interval", d.Server.TickInterval)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.ghost_throttle", d.Server.GhostThrottle)
	v.SetDefault("server.ghost_mode", d.Server.GhostMode)
	v.SetDefault("server.analyze_timeout", d.Server.AnalyzeTimeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)

	v.SetDefault("game.board_size", d.Game.BoardSize)
	v.SetDefault("game.mode", d.Game.Mode)
	v.SetDefault("game.human_player", d.Game.HumanPlayer)
	v.SetDefault("game.black_starts", d.Game.BlackStarts)
	v.SetDefault("game.difficulty", d.Game.Difficulty)

	v.SetDefault("ai.depth", d.AI.Depth)
	v.SetDefault("ai.root_breadth", d.AI.RootBreadth)
	v.SetDefault("ai.breadth", d.AI.Breadth)
	v.SetDefault("ai.radius", d.AI.Radius)
	v.SetDefault("ai.danger_threshold", d.AI.DangerThreshold)
	v.SetDefault("ai.fork_threshold", d.AI.ForkThreshold)
	v.SetDefault("ai.strategy", d.AI.Strategy)
	v.SetDefault("ai.evaluator", d.AI.Evaluator)
	v.SetDefault("ai.opponent_weight", d.AI.OpponentWeight)
	v.SetDefault("ai.win_score", d.AI.WinScore)
	v.SetDefault("ai.win_base", d.AI.WinBase)
	v.SetDefault("ai.early_game_stones", d.AI.EarlyGameStones)
	v.SetDefault("ai.use_cache", d.AI.UseCache)
	v.SetDefault("ai.cache_size", d.AI.CacheSize)
	v.SetDefault("ai.cache_buckets", d.AI.CacheBuckets)
	v.SetDefault("ai.log_stats", d.AI.LogStats)
}
