package ai

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/NikitosII/gomoku/internal/board"
	"github.com/NikitosII/gomoku/internal/rules"
)

func newEngine(t *testing.T, size board.Size, cfg Config, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(rules.New(size), cfg, opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestDecideMoveTakesForcedWin(t *testing.T) {
	b := boardWith(t, 15,
		[]board.Position{pos(7, 7), pos(7, 8), pos(7, 9), pos(7, 10)},
		[]board.Position{pos(8, 7), pos(8, 8), pos(8, 9)},
	)
	e := newEngine(t, b.Size(), DefaultConfig(), WithRand(rand.New(rand.NewSource(1))))
	d, err := e.DecideMove(context.Background(), b, board.CellBlack)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if d.Source != SourceWin {
		t.Fatalf("expected win source, got %s", d.Source)
	}
	if d.Move != pos(7, 6) && d.Move != pos(7, 11) {
		t.Fatalf("expected (7,6) or (7,11), got %s", d.Move)
	}
}

func TestDecideMoveBlocksOpponentWin(t *testing.T) {
	b := boardWith(t, 15,
		[]board.Position{pos(0, 0), pos(14, 14), pos(3, 12)},
		[]board.Position{pos(7, 7), pos(7, 8), pos(7, 9), pos(7, 10)},
	)
	e := newEngine(t, b.Size(), DefaultConfig())
	d, err := e.DecideMove(context.Background(), b, board.CellBlack)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if d.Source != SourceBlock {
		t.Fatalf("expected block source, got %s", d.Source)
	}
	if d.Move != pos(7, 6) && d.Move != pos(7, 11) {
		t.Fatalf("expected a block at (7,6) or (7,11), got %s", d.Move)
	}
}

// Four black stones on an otherwise empty board: black completes the
// five, white blocks one of the same two ends.
func TestDecideMoveOpenFourBothSides(t *testing.T) {
	for _, tc := range []struct {
		player board.Cell
		source Source
	}{
		{board.CellBlack, SourceWin},
		{board.CellWhite, SourceBlock},
	} {
		b := boardWith(t, 15, []board.Position{pos(7, 7), pos(7, 8), pos(7, 9), pos(7, 10)}, nil)
		e := newEngine(t, b.Size(), DefaultConfig(), WithRand(rand.New(rand.NewSource(1))))
		d, err := e.DecideMove(context.Background(), b, tc.player)
		if err != nil {
			t.Fatalf("%s: DecideMove: %v", tc.player, err)
		}
		if d.Source != tc.source {
			t.Fatalf("%s: expected source %s, got %s", tc.player, tc.source, d.Source)
		}
		if d.Move != pos(7, 6) && d.Move != pos(7, 11) {
			t.Fatalf("%s: expected (7,6) or (7,11), got %s", tc.player, d.Move)
		}
		if b.Stones() != 4 {
			t.Fatalf("%s: board changed during decision", tc.player)
		}
	}
}

func TestDecideMoveLeavesBoardUntouched(t *testing.T) {
	b := boardWith(t, 15,
		[]board.Position{pos(7, 7), pos(8, 8), pos(6, 9)},
		[]board.Position{pos(7, 8), pos(9, 9)},
	)
	before := b.Clone()
	for _, kind := range []string{EvaluatorPattern, EvaluatorDirectional} {
		cfg := DefaultConfig()
		cfg.Evaluator = kind
		cfg.Depth = 2
		e := newEngine(t, b.Size(), cfg)
		d, err := e.DecideMove(context.Background(), b, board.CellWhite)
		if err != nil {
			t.Fatalf("%s: DecideMove: %v", kind, err)
		}
		if !b.Equal(before) {
			t.Fatalf("%s: board changed during search:\n%s", kind, b)
		}
		if !rules.New(b.Size()).IsMoveLegal(b, d.Move) {
			t.Fatalf("%s: illegal move %s", kind, d.Move)
		}
		if !d.Complete {
			t.Fatalf("%s: expected a complete search", kind)
		}
	}
}

func TestDecideMoveEmptyBoardPlaysCenter(t *testing.T) {
	b := board.New(board.Square(15))
	e := newEngine(t, b.Size(), DefaultConfig())
	d, err := e.DecideMove(context.Background(), b, board.CellBlack)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if d.Move != pos(7, 7) {
		t.Fatalf("expected center, got %s", d.Move)
	}
}

func TestDecideMoveFullBoardFallsBack(t *testing.T) {
	b := boardWith(t, 2, []board.Position{pos(0, 0), pos(1, 1)}, []board.Position{pos(0, 1), pos(1, 0)})
	e := newEngine(t, b.Size(), DefaultConfig())
	d, err := e.DecideMove(context.Background(), b, board.CellBlack)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if d.Source != SourceFallback || d.Move != b.Size().Center() {
		t.Fatalf("expected center fallback, got %+v", d)
	}
}

func TestDecideMoveRejectsBadInput(t *testing.T) {
	e := newEngine(t, board.Square(15), DefaultConfig())
	if _, err := e.DecideMove(context.Background(), nil, board.CellBlack); !errors.Is(err, ErrNilBoard) {
		t.Fatalf("expected ErrNilBoard, got %v", err)
	}
	if _, err := e.DecideMove(context.Background(), board.New(board.Square(15)), board.CellEmpty); !errors.Is(err, ErrInvalidPlayer) {
		t.Fatalf("expected ErrInvalidPlayer, got %v", err)
	}
	if _, err := e.DecideMove(context.Background(), board.New(board.Square(9)), board.CellBlack); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WinBase = cfg.WinScore
	if _, err := NewEngine(rules.New(board.Square(15)), cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestDecideMoveCancelledReturnsPartialResult(t *testing.T) {
	b := boardWith(t, 15, []board.Position{pos(7, 7), pos(8, 9)}, []board.Position{pos(7, 8)})
	before := b.Clone()
	e := newEngine(t, b.Size(), DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d, err := e.DecideMove(ctx, b, board.CellWhite)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if d.Complete {
		t.Fatalf("expected an incomplete decision after cancellation")
	}
	if !rules.New(b.Size()).IsMoveLegal(b, d.Move) {
		t.Fatalf("cancelled decision returned illegal move %s", d.Move)
	}
	if !b.Equal(before) {
		t.Fatalf("board changed after cancelled search")
	}
}

func TestDecideMoveCancelledMidSearch(t *testing.T) {
	b := boardWith(t, 15, []board.Position{pos(7, 7), pos(8, 9)}, []board.Position{pos(7, 8)})
	before := b.Clone()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := DefaultConfig()
	cfg.Depth = 4
	e := newEngine(t, b.Size(), cfg, WithProgress(func(p Progress) {
		if p.Searched == 2 {
			cancel()
		}
	}))
	d, err := e.DecideMove(ctx, b, board.CellWhite)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	if d.Complete || len(d.Root) != 2 {
		t.Fatalf("expected search to stop after two root moves, got complete=%v root=%d", d.Complete, len(d.Root))
	}
	if !b.Equal(before) {
		t.Fatalf("board changed after cancelled search")
	}
}

func TestSeededTieBreakIsReproducible(t *testing.T) {
	b := boardWith(t, 15, []board.Position{pos(7, 7)}, nil)
	cfg := DefaultConfig()
	cfg.Depth = 1

	first := newEngine(t, b.Size(), cfg, WithRand(rand.New(rand.NewSource(7))))
	second := newEngine(t, b.Size(), cfg, WithRand(rand.New(rand.NewSource(7))))
	d1, err := first.DecideMove(context.Background(), b, board.CellWhite)
	if err != nil {
		t.Fatalf("DecideMove: %v", err)
	}
	d2, _ := second.DecideMove(context.Background(), b, board.CellWhite)
	if d1.Move != d2.Move {
		t.Fatalf("same seed picked different moves: %s vs %s", d1.Move, d2.Move)
	}

	ties := 0
	for _, rs := range d1.Root {
		if rs.Score == d1.Score {
			ties++
		}
	}
	if ties < 2 {
		t.Fatalf("expected symmetric position to tie, root=%v", d1.Root)
	}

	seen := map[board.Position]bool{}
	e := newEngine(t, b.Size(), cfg, WithRand(rand.New(rand.NewSource(11))))
	for i := 0; i < 40; i++ {
		d, _ := e.DecideMove(context.Background(), b, board.CellWhite)
		if d.Score != d1.Score {
			t.Fatalf("chosen move must belong to the best set: %d vs %d", d.Score, d1.Score)
		}
		seen[d.Move] = true
	}
	if len(seen) < 2 {
		t.Fatalf("tie-break never varied across 40 decisions")
	}
}

func TestEngineEvaluateMatchesEvaluator(t *testing.T) {
	b := boardWith(t, 15, []board.Position{pos(7, 7), pos(7, 8)}, []board.Position{pos(8, 8)})
	cfg := DefaultConfig()
	e := newEngine(t, b.Size(), cfg)
	eval, _ := NewEvaluator(cfg)
	if e.Evaluate(b, board.CellBlack) != eval.Evaluate(b, board.CellBlack) {
		t.Fatalf("engine evaluation differs from configured evaluator")
	}
}

// referenceMinimax is plain minimax without pruning or caching over the
// same move ordering the engine uses.
func referenceMinimax(e *Engine, b *board.Board, last board.Position, depth, ply int, maximizing bool, root board.Cell) int {
	if e.rules.IsWinningMove(b, last) {
		if b.At(last) == root {
			return e.cfg.WinBase - ply
		}
		return -e.cfg.WinBase + ply
	}
	if b.IsFull() {
		return 0
	}
	if depth <= 0 {
		return e.eval.Evaluate(b, root)
	}
	side := root
	if !maximizing {
		side = root.Opponent()
	}
	cands := truncate(e.generator.Candidates(b, side, side.Opponent()), e.cfg.Breadth)
	if len(cands) == 0 {
		return e.eval.Evaluate(b, root)
	}
	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}
	for _, c := range cands {
		b.Place(c.Pos, side)
		v := referenceMinimax(e, b, c.Pos, depth-1, ply+1, !maximizing, root)
		b.Remove(c.Pos)
		if maximizing && v > best || !maximizing && v < best {
			best = v
		}
	}
	return best
}

func TestAlphaBetaMatchesPlainMinimax(t *testing.T) {
	b := boardWith(t, 5, []board.Position{pos(1, 1), pos(3, 2)}, []board.Position{pos(2, 2), pos(1, 3)})
	for _, depth := range []int{2, 3} {
		for _, useCache := range []bool{false, true} {
			cfg := DefaultConfig()
			cfg.Depth = depth
			cfg.UseCache = useCache
			e := newEngine(t, b.Size(), cfg)
			d, err := e.DecideMove(context.Background(), b, board.CellBlack)
			if err != nil {
				t.Fatalf("DecideMove: %v", err)
			}
			if d.Source != SourceSearch {
				t.Fatalf("expected a searched decision, got %s", d.Source)
			}
			cands := truncate(e.generator.Candidates(b, board.CellBlack, board.CellWhite), cfg.RootBreadth)
			if len(d.Root) != len(cands) {
				t.Fatalf("expected %d root scores, got %d", len(cands), len(d.Root))
			}
			best := math.MinInt
			for i, c := range cands {
				b.Place(c.Pos, board.CellBlack)
				want := referenceMinimax(e, b, c.Pos, depth-1, 1, false, board.CellBlack)
				b.Remove(c.Pos)
				if d.Root[i].Move != c.Pos || d.Root[i].Score != want {
					t.Fatalf("depth=%d cache=%v: root %s scored %d, plain minimax %d", depth, useCache, c.Pos, d.Root[i].Score, want)
				}
				best = max(best, want)
			}
			if d.Score != best {
				t.Fatalf("depth=%d cache=%v: decision score %d, want %d", depth, useCache, d.Score, best)
			}
		}
	}
}

func TestDrawTerminalScoresZero(t *testing.T) {
	// One empty cell left; filling it neither side wins.
	b, err := board.Parse(
		"XOXOX",
		"XOXOX",
		"OXOXO",
		"OXOXO",
		"XOXO.",
	)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	e := newEngine(t, b.Size(), DefaultConfig())
	s := e.newSearch(context.Background(), b, board.CellWhite)
	defer e.release(s)
	s.place(pos(4, 4), board.CellWhite)
	score := s.minimax(pos(4, 4), 2, 1, false, math.MinInt, math.MaxInt)
	s.remove(pos(4, 4), board.CellWhite)
	if score != 0 {
		t.Fatalf("expected a draw to score 0, got %d", score)
	}
}

func TestFasterWinScoresHigher(t *testing.T) {
	cfg := DefaultConfig()
	b := boardWith(t, 15, []board.Position{pos(7, 7), pos(7, 8), pos(7, 9), pos(7, 10)}, nil)
	e := newEngine(t, b.Size(), cfg)
	s := e.newSearch(context.Background(), b, board.CellBlack)
	defer e.release(s)
	s.place(pos(7, 11), board.CellBlack)
	quick := s.minimax(pos(7, 11), 3, 1, false, math.MinInt, math.MaxInt)
	slow := s.minimax(pos(7, 11), 3, 3, false, math.MinInt, math.MaxInt)
	s.remove(pos(7, 11), board.CellBlack)
	if quick != cfg.WinBase-1 || slow >= quick {
		t.Fatalf("expected quicker win to score higher: quick=%d slow=%d", quick, slow)
	}
}
