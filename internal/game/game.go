package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NikitosII/gomoku/internal/ai"
	"github.com/NikitosII/gomoku/internal/board"
	"github.com/NikitosII/gomoku/internal/rules"
)

var (
	ErrNotRunning   = errors.New("game not running")
	ErrNotHumanTurn = errors.New("not human turn")
)

type Option func(*Game)

func WithLogger(logger *zap.Logger) Option {
	return func(g *Game) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithGhostThrottle(d time.Duration) Option {
	return func(g *Game) {
		g.throttle = d
	}
}

// WithEngineOptions passes options to every engine the game builds.
func WithEngineOptions(opts ...ai.Option) Option {
	return func(g *Game) {
		g.engineOpts = append(g.engineOpts, opts...)
	}
}

// Game is a single match: board, turn order, players and history. It is
// not safe for concurrent use; Controller serialises access.
type Game struct {
	id         uuid.UUID
	settings   Settings
	aiCfg      ai.Config
	rules      rules.Rules
	state      State
	history    History
	black      Player
	white      Player
	turnStart  time.Time
	aiFailed   bool
	logger     *zap.Logger
	throttle   time.Duration
	engineOpts []ai.Option
}

func New(settings Settings, cfg ai.Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Game{aiCfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.Reset(settings); err != nil {
		return nil, err
	}
	return g, nil
}

// Reset stops any thinking player and starts a fresh, not yet running
// session with a new id.
func (g *Game) Reset(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	g.stopPlayers()
	g.settings = settings
	g.rules = rules.New(board.Square(settings.BoardSize))
	g.state = newState(settings)
	g.history.Clear()
	g.aiFailed = false
	if err := g.createPlayers(); err != nil {
		return err
	}
	g.id = uuid.New()
	g.turnStart = time.Now()
	g.logger.Info("game reset",
		zap.Stringer("session", g.id),
		zap.Int("size", settings.BoardSize),
		zap.Stringer("black", settings.BlackType),
		zap.Stringer("white", settings.WhiteType),
	)
	return nil
}

func (g *Game) Start() {
	if g.state.Status != StatusNotStarted {
		return
	}
	g.state.Status = StatusRunning
	g.turnStart = time.Now()
	g.logger.Info("game started", zap.Stringer("session", g.id))
}

func (g *Game) ID() uuid.UUID {
	return g.id
}

func (g *Game) Settings() Settings {
	return g.settings
}

func (g *Game) AIConfig() ai.Config {
	return g.aiCfg
}

func (g *Game) Rules() rules.Rules {
	return g.rules
}

func (g *Game) State() State {
	return g.state.Clone()
}

func (g *Game) History() History {
	return History{entries: g.history.All()}
}

func (g *Game) TurnStartedAt() time.Time {
	return g.turnStart
}

// SetPlayers switches who plays each colour without touching the board.
func (g *Game) SetPlayers(settings Settings) error {
	if settings.BoardSize != g.settings.BoardSize {
		return g.Reset(settings)
	}
	g.stopPlayers()
	g.settings = settings
	g.aiFailed = false
	return g.createPlayers()
}

// SetAIConfig rebuilds the AI players with cfg.
func (g *Game) SetAIConfig(cfg ai.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.stopPlayers()
	g.aiCfg = cfg
	g.aiFailed = false
	return g.createPlayers()
}

func (g *Game) CurrentPlayerIsHuman() bool {
	p := g.currentPlayer()
	return p != nil && p.IsHuman()
}

func (g *Game) AIThinking() bool {
	if a, ok := g.currentPlayer().(*AIPlayer); ok {
		return a.IsThinking()
	}
	return false
}

// SubmitHumanMove queues p for the next Tick.
func (g *Game) SubmitHumanMove(p board.Position) error {
	human, ok := g.currentPlayer().(*HumanPlayer)
	if !ok {
		return ErrNotHumanTurn
	}
	human.SetPendingMove(p)
	return nil
}

// ApplyHumanMove plays p immediately for the human to move.
func (g *Game) ApplyHumanMove(p board.Position) error {
	if g.state.Status != StatusRunning {
		return ErrNotRunning
	}
	if !g.CurrentPlayerIsHuman() {
		return ErrNotHumanTurn
	}
	return g.TryApplyMove(p)
}

func (g *Game) TryApplyMove(p board.Position) error {
	entry := HistoryEntry{IsAI: !g.CurrentPlayerIsHuman()}
	return g.applyMove(p, entry)
}

func (g *Game) applyMove(p board.Position, entry HistoryEntry) error {
	if g.state.Status != StatusRunning {
		return ErrNotRunning
	}
	if err := g.rules.CheckMove(g.state.Board, p); err != nil {
		g.state.LastMessage = "Illegal move: " + err.Error()
		return err
	}
	player := g.state.ToMove
	g.state.Board.Place(p, player)
	g.state.LastMove = p
	g.state.HasLastMove = true
	g.state.LastMessage = ""
	g.state.WinningLine = nil

	entry.Move = p
	entry.Player = player
	entry.Elapsed = time.Since(g.turnStart)
	g.history.Push(entry)
	g.logger.Debug("move played",
		zap.Stringer("session", g.id),
		zap.Stringer("player", player),
		zap.Stringer("move", p),
		zap.Bool("ai", entry.IsAI),
		zap.Duration("elapsed", entry.Elapsed),
	)

	if result, over := g.rules.Result(g.state.Board, p); over {
		if result.IsDraw() {
			g.state.Status = StatusDraw
		} else {
			g.state.Status = statusForWinner(result.Winner)
			g.state.WinningLine = result.Line
		}
		g.logger.Info("game over", zap.Stringer("session", g.id), zap.Stringer("status", g.state.Status))
		return nil
	}
	g.state.ToMove = player.Opponent()
	g.turnStart = time.Now()
	return nil
}

// Tick advances the game by at most one move. It reports whether the
// visible state changed. ghost may be nil.
func (g *Game) Tick(ghost GhostFunc) bool {
	if g.state.Status != StatusRunning {
		g.stopPlayers()
		return false
	}
	switch p := g.currentPlayer().(type) {
	case *HumanPlayer:
		if !p.HasPendingMove() {
			return false
		}
		return g.TryApplyMove(p.TakePendingMove()) == nil
	case *AIPlayer:
		if p.HasMoveReady() {
			return g.applyDecision(p, ghost)
		}
		if !g.aiFailed && !p.IsThinking() {
			p.StartThinking(g.state.Board, g.state.ToMove, ghost)
		}
	}
	return false
}

func (g *Game) applyDecision(p *AIPlayer, ghost GhostFunc) bool {
	d, err := p.TakeMove()
	if ghost != nil {
		ghost(GhostUpdate{Player: g.state.ToMove, Active: false})
	}
	if err == nil {
		err = g.applyMove(d.Move, HistoryEntry{
			IsAI:     true,
			Source:   d.Source,
			Score:    d.Score,
			Depth:    d.Depth,
			Complete: d.Complete,
		})
	}
	if err != nil {
		g.aiFailed = true
		g.state.LastMessage = "AI error: " + err.Error()
		g.logger.Error("ai decision failed", zap.Stringer("session", g.id), zap.Error(err))
	}
	return true
}

// Close stops background thinking.
func (g *Game) Close() {
	g.stopPlayers()
}

func (g *Game) currentPlayer() Player {
	if g.state.ToMove == board.CellBlack {
		return g.black
	}
	return g.white
}

func (g *Game) createPlayers() error {
	black, err := g.newPlayer(g.settings.BlackType)
	if err != nil {
		return fmt.Errorf("black player: %w", err)
	}
	white, err := g.newPlayer(g.settings.WhiteType)
	if err != nil {
		return fmt.Errorf("white player: %w", err)
	}
	g.black, g.white = black, white
	return nil
}

func (g *Game) newPlayer(t PlayerType) (Player, error) {
	if t == PlayerHuman {
		return NewHumanPlayer(), nil
	}
	opts := append([]ai.Option{ai.WithLogger(g.logger)}, g.engineOpts...)
	return NewAIPlayer(g.rules, g.aiCfg, g.throttle, opts...)
}

func (g *Game) stopPlayers() {
	for _, p := range []Player{g.black, g.white} {
		if a, ok := p.(*AIPlayer); ok {
			a.StopThinking()
		}
	}
}
