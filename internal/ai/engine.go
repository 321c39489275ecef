package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/NikitosII/gomoku/internal/board"
	"github.com/NikitosII/gomoku/internal/rules"
)

var (
	ErrNilBoard      = errors.New("nil board")
	ErrInvalidPlayer = errors.New("player must be black or white")
	ErrSizeMismatch  = errors.New("board size does not match engine rules")
)

type Source string

const (
	SourceWin      Source = "win"
	SourceBlock    Source = "block"
	SourceFork     Source = "fork"
	SourceSearch   Source = "search"
	SourceGreedy   Source = "greedy"
	SourceBalanced Source = "balanced"
	SourceFallback Source = "fallback"
)

type MoveScore struct {
	Move  board.Position `json:"move"`
	Score int            `json:"score"`
}

// Decision is the outcome of one DecideMove call. Complete is false when
// the search was cancelled and Move is a best-effort pick.
type Decision struct {
	Move     board.Position `json:"move"`
	Score    int            `json:"score"`
	Source   Source         `json:"source"`
	Complete bool           `json:"complete"`
	Depth    int            `json:"depth"`
	Nodes    int            `json:"nodes"`
	Root     []MoveScore    `json:"root,omitempty"`
}

// Progress is reported after each root move is searched.
type Progress struct {
	Move      board.Position
	Score     int
	Best      board.Position
	BestScore int
	Searched  int
	Total     int
}

type ProgressFunc func(Progress)

type Option func(*Engine)

func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithEvaluator(eval Evaluator) Option {
	return func(e *Engine) {
		if eval != nil {
			e.eval = eval
		}
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

type Engine struct {
	cfg       Config
	rules     rules.Rules
	threats   *ThreatDetector
	moves     *MoveEvaluator
	generator *CandidateGenerator
	eval      Evaluator
	logger    *zap.Logger
	progress  ProgressFunc
	tables    sync.Pool

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewEngine(r rules.Rules, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg,
		rules:  r,
		logger: zap.NewNop(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.threats = NewThreatDetector(r, cfg)
	e.moves = NewMoveEvaluator(e.threats, cfg)
	e.generator = NewCandidateGenerator(r, e.moves, cfg)
	for _, opt := range opts {
		opt(e)
	}
	if e.eval == nil {
		eval, err := NewEvaluator(cfg)
		if err != nil {
			return nil, err
		}
		e.eval = eval
	}
	if cfg.UseCache {
		e.tables.New = func() any {
			return NewTranspositionTable(uint64(cfg.CacheSize), cfg.CacheBuckets)
		}
	}
	return e, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Threats() *ThreatDetector {
	return e.threats
}

func (e *Engine) Candidates() *CandidateGenerator {
	return e.generator
}

// Evaluate scores b from player's point of view with the configured evaluator.
func (e *Engine) Evaluate(b *board.Board, player board.Cell) int {
	return e.eval.Evaluate(b, player)
}

// DecideMove picks a move for player. The board is mutated during the
// search and restored before returning; pass a clone if another goroutine
// reads it concurrently.
func (e *Engine) DecideMove(ctx context.Context, b *board.Board, player board.Cell) (Decision, error) {
	if b == nil {
		return Decision{}, ErrNilBoard
	}
	if !player.IsStone() {
		return Decision{}, fmt.Errorf("decide move for %s: %w", player, ErrInvalidPlayer)
	}
	if b.Size() != e.rules.Size() {
		return Decision{}, fmt.Errorf("decide move on %dx%d board: %w", b.Size().Rows, b.Size().Cols, ErrSizeMismatch)
	}
	start := time.Now()
	opponent := player.Opponent()

	if b.IsFull() {
		d := e.fallback()
		e.logDecision(d, searchStats{}, time.Since(start))
		return d, nil
	}

	if critical, tier := e.threats.CriticalMoves(b, player, opponent); len(critical) > 0 {
		d := Decision{
			Move:     e.pick(critical),
			Source:   tierSource(tier),
			Complete: true,
		}
		if tier == TierWin {
			d.Score = e.cfg.WinBase - 1
		}
		e.logDecision(d, searchStats{}, time.Since(start))
		return d, nil
	}

	var (
		d     Decision
		stats searchStats
	)
	switch e.cfg.Strategy {
	case StrategyGreedy:
		d = e.greedyMove(b, player)
	case StrategyBalanced:
		d = e.balancedMove(ctx, b, player)
	default:
		d, stats = e.searchRoot(ctx, b, player)
	}
	e.logDecision(d, stats, time.Since(start))
	return d, nil
}

func (e *Engine) searchRoot(ctx context.Context, b *board.Board, player board.Cell) (Decision, searchStats) {
	s := e.newSearch(ctx, b, player)
	defer e.release(s)

	cands := truncate(e.generator.Candidates(b, player, s.opp), e.cfg.RootBreadth)
	if len(cands) == 0 {
		return e.fallback(), s.stats
	}

	bestScore := math.MinInt
	var best []board.Position
	root := make([]MoveScore, 0, len(cands))
	for _, c := range cands {
		if s.shouldStop() {
			break
		}
		s.place(c.Pos, player)
		score := s.minimax(c.Pos, e.cfg.Depth-1, 1, false, math.MinInt, math.MaxInt)
		s.remove(c.Pos, player)
		if s.aborted {
			break
		}
		root = append(root, MoveScore{Move: c.Pos, Score: score})
		if score > bestScore {
			bestScore = score
			best = append(best[:0], c.Pos)
		} else if score == bestScore {
			best = append(best, c.Pos)
		}
		if e.progress != nil {
			e.progress(Progress{
				Move:      c.Pos,
				Score:     score,
				Best:      best[0],
				BestScore: bestScore,
				Searched:  len(root),
				Total:     len(cands),
			})
		}
	}

	d := Decision{
		Source:   SourceSearch,
		Complete: len(root) == len(cands),
		Depth:    e.cfg.Depth,
		Nodes:    s.stats.Nodes,
		Root:     root,
	}
	if len(best) == 0 {
		d.Move = cands[0].Pos
		return d, s.stats
	}
	d.Move = e.pick(best)
	d.Score = bestScore
	return d, s.stats
}

func (e *Engine) fallback() Decision {
	return Decision{Move: e.rules.Size().Center(), Source: SourceFallback, Complete: true}
}

func (e *Engine) pick(moves []board.Position) board.Position {
	if len(moves) == 1 {
		return moves[0]
	}
	e.rngMu.Lock()
	idx := e.rng.Intn(len(moves))
	e.rngMu.Unlock()
	return moves[idx]
}

func (e *Engine) logDecision(d Decision, stats searchStats, elapsed time.Duration) {
	level := zap.DebugLevel
	if e.cfg.LogStats {
		level = zap.InfoLevel
	}
	ce := e.logger.Check(level, "ai decision")
	if ce == nil {
		return
	}
	ce.Write(
		zap.String("source", string(d.Source)),
		zap.Stringer("move", d.Move),
		zap.Int("score", d.Score),
		zap.Int("depth", d.Depth),
		zap.Bool("complete", d.Complete),
		zap.Int("nodes", stats.Nodes),
		zap.Int("evals", stats.Evaluations),
		zap.Int("cutoffs", stats.Cutoffs),
		zap.Int("tt_probe", stats.TTProbes),
		zap.Int("tt_hit", stats.TTHits),
		zap.Int("tt_cutoff", stats.TTCutoffs),
		zap.Int("tt_store", stats.TTStores),
		zap.Int("tt_replace", stats.TTReplacements),
		zap.Int("tt_capacity", stats.TTCapacity),
		zap.Duration("elapsed", elapsed),
	)
}

func tierSource(t Tier) Source {
	switch t {
	case TierWin:
		return SourceWin
	case TierBlock:
		return SourceBlock
	default:
		return SourceFork
	}
}
