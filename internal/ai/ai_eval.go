package ai

import (
	"fmt"
	"math"

	"github.com/NikitosII/gomoku/internal/board"
)

// Evaluator scores a position from player's point of view. Positive
// values favour player.
type Evaluator interface {
	Evaluate(b *board.Board, player board.Cell) int
}

func NewEvaluator(cfg Config) (Evaluator, error) {
	switch cfg.Evaluator {
	case EvaluatorPattern, "":
		patterns := cfg.Patterns
		if len(patterns) == 0 {
			patterns = DefaultPatterns()
		}
		if err := patterns.Validate(); err != nil {
			return nil, err
		}
		return NewPatternEvaluator(patterns, cfg.OpponentWeight, cfg.WinScore), nil
	case EvaluatorDirectional:
		return NewDirectionalEvaluator(cfg.OpponentWeight, cfg.WinScore), nil
	default:
		return nil, fmt.Errorf("unknown evaluator %q: %w", cfg.Evaluator, ErrInvalidConfig)
	}
}

type PatternEvaluator struct {
	matcher        patternMatcher
	opponentWeight float64
	winScore       int
}

func NewPatternEvaluator(patterns PatternTable, opponentWeight float64, winScore int) *PatternEvaluator {
	return &PatternEvaluator{
		matcher:        compilePatterns(patterns),
		opponentWeight: opponentWeight,
		winScore:       winScore,
	}
}

func (e *PatternEvaluator) Evaluate(b *board.Board, player board.Cell) int {
	if b.Stones() == 0 {
		return 0
	}
	size := b.Size()
	var mineBuf, theirsBuf [windowSize + 2]byte
	own, opp := 0, 0
	for r := 0; r < size.Rows; r++ {
		for c := 0; c < size.Cols; c++ {
			start := board.Position{Row: r, Col: c}
			for _, d := range board.Directions {
				if !size.Contains(start.Offset(d, windowSize-1)) {
					continue
				}
				mineHas, theirsHas := fillWindow(b, start, d, player, mineBuf[:], theirsBuf[:])
				if mineHas {
					if isFive(mineBuf[1 : windowSize+1]) {
						return e.winScore
					}
					own += e.matcher.best(mineBuf[:])
				}
				if theirsHas {
					if isFive(theirsBuf[1 : windowSize+1]) {
						return -e.winScore
					}
					opp += e.matcher.best(theirsBuf[:])
				}
			}
		}
	}
	return own - int(math.Round(float64(opp)*e.opponentWeight))
}

// fillWindow writes the window starting at start with one guard cell on
// each side, once from each side's perspective.
func fillWindow(b *board.Board, start, d board.Position, player board.Cell, mine, theirs []byte) (bool, bool) {
	size := b.Size()
	mineHas, theirsHas := false, false
	for i := -1; i <= windowSize; i++ {
		p := start.Offset(d, i)
		var m, o byte
		if !size.Contains(p) {
			m, o = 'O', 'O'
		} else {
			switch b.At(p) {
			case board.CellEmpty:
				m, o = '_', '_'
			case player:
				m, o = 'X', 'O'
				mineHas = true
			default:
				m, o = 'O', 'X'
				theirsHas = true
			}
		}
		mine[i+1] = m
		theirs[i+1] = o
	}
	return mineHas, theirsHas
}

func isFive(core []byte) bool {
	for _, ch := range core {
		if ch != 'X' {
			return false
		}
	}
	return true
}

// DirectionalEvaluator scores each stone by the run it sits in and how
// many ends of that run are open.
type DirectionalEvaluator struct {
	opponentWeight float64
	winScore       int
}

func NewDirectionalEvaluator(opponentWeight float64, winScore int) *DirectionalEvaluator {
	return &DirectionalEvaluator{opponentWeight: opponentWeight, winScore: winScore}
}

func (e *DirectionalEvaluator) Evaluate(b *board.Board, player board.Cell) int {
	if b.Stones() == 0 {
		return 0
	}
	size := b.Size()
	own, opp := 0, 0
	for r := 0; r < size.Rows; r++ {
		for c := 0; c < size.Cols; c++ {
			p := board.Position{Row: r, Col: c}
			cell := b.At(p)
			if cell == board.CellEmpty {
				continue
			}
			for _, d := range board.Directions {
				count, open := runShape(b, p, d, cell)
				if count >= windowSize {
					if cell == player {
						return e.winScore
					}
					return -e.winScore
				}
				if cell == player {
					own += shapeScore(count, open)
				} else {
					opp += shapeScore(count, open)
				}
			}
		}
	}
	return own - int(math.Round(float64(opp)*e.opponentWeight))
}

func runShape(b *board.Board, p, d board.Position, cell board.Cell) (int, int) {
	size := b.Size()
	count, open := 1, 0
	for _, dir := range [2]board.Position{d, d.Scale(-1)} {
		for i := 1; i < windowSize; i++ {
			q := p.Offset(dir, i)
			if !size.Contains(q) {
				break
			}
			v := b.At(q)
			if v == cell {
				count++
				continue
			}
			if v == board.CellEmpty {
				open++
			}
			break
		}
	}
	return count, open
}

func shapeScore(count, open int) int {
	switch {
	case count == 4 && open == 2:
		return 10000
	case count == 4 && open == 1:
		return 5000
	case count == 3 && open == 2:
		return 1000
	case count == 3 && open == 1:
		return 500
	case count == 2 && open == 2:
		return 100
	case count == 2 && open == 1:
		return 50
	case count == 1 && open == 2:
		return 10
	default:
		return 1
	}
}
