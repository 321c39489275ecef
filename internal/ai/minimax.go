package ai

import (
	"context"
	"math"

	"github.com/NikitosII/gomoku/internal/board"
)

type searchStats struct {
	Nodes          int
	Evaluations    int
	Cutoffs        int
	TTProbes       int
	TTHits         int
	TTCutoffs      int
	TTStores       int
	TTReplacements int
	TTCapacity     int
}

// search holds the state of one decision. The board is mutated in place
// and every placement is undone before the owning call returns.
type search struct {
	e       *Engine
	ctx     context.Context
	b       *board.Board
	root    board.Cell
	opp     board.Cell
	tt      *TranspositionTable
	zobrist *ZobristTable
	hash    uint64
	aborted bool
	stats   searchStats
}

func (e *Engine) newSearch(ctx context.Context, b *board.Board, player board.Cell) *search {
	s := &search{
		e:    e,
		ctx:  ctx,
		b:    b,
		root: player,
		opp:  player.Opponent(),
	}
	if e.cfg.UseCache {
		s.tt = e.tables.Get().(*TranspositionTable)
		s.tt.Clear()
		s.zobrist = GetZobrist(b.Size())
		s.hash = s.zobrist.Hash(b)
	}
	s.stats.TTCapacity = s.tt.Capacity()
	return s
}

func (e *Engine) release(s *search) {
	if s.tt != nil {
		e.tables.Put(s.tt)
		s.tt = nil
	}
}

func (s *search) shouldStop() bool {
	if s.aborted {
		return true
	}
	select {
	case <-s.ctx.Done():
		s.aborted = true
	default:
	}
	return s.aborted
}

func (s *search) place(p board.Position, cell board.Cell) {
	s.b.Place(p, cell)
	if s.zobrist != nil {
		s.hash ^= s.zobrist.Stone(p, cell)
	}
}

func (s *search) remove(p board.Position, cell board.Cell) {
	s.b.Remove(p)
	if s.zobrist != nil {
		s.hash ^= s.zobrist.Stone(p, cell)
	}
}

// minimax scores the position after last was played, from the root
// player's point of view. ply counts placements since the root so that
// quicker wins and slower losses score higher.
func (s *search) minimax(last board.Position, depth, ply int, maximizing bool, alpha, beta int) int {
	s.stats.Nodes++
	if s.shouldStop() {
		return 0
	}
	if s.e.rules.IsWinningMove(s.b, last) {
		if s.b.At(last) == s.root {
			return s.e.cfg.WinBase - ply
		}
		return -s.e.cfg.WinBase + ply
	}
	if s.b.IsFull() {
		return 0
	}
	if depth <= 0 {
		s.stats.Evaluations++
		return s.e.eval.Evaluate(s.b, s.root)
	}

	var pv board.Position
	hasPV := false
	if s.tt != nil {
		s.stats.TTProbes++
		if entry, ok := s.tt.Probe(s.hash); ok {
			pv, hasPV = entry.BestMove, entry.HasBest
			if entry.Depth == depth {
				s.stats.TTHits++
				switch entry.Flag {
				case TTExact:
					return entry.Score
				case TTLower:
					alpha = max(alpha, entry.Score)
				case TTUpper:
					beta = min(beta, entry.Score)
				}
				if beta <= alpha {
					s.stats.TTCutoffs++
					return entry.Score
				}
			}
		}
	}
	windowLow, windowHigh := alpha, beta

	side := s.root
	if !maximizing {
		side = s.opp
	}
	cands := truncate(s.e.generator.Candidates(s.b, side, side.Opponent()), s.e.cfg.Breadth)
	if len(cands) == 0 {
		s.stats.Evaluations++
		return s.e.eval.Evaluate(s.b, s.root)
	}
	if hasPV {
		promote(cands, pv)
	}

	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}
	var bestMove board.Position
	for _, c := range cands {
		s.place(c.Pos, side)
		score := s.minimax(c.Pos, depth-1, ply+1, !maximizing, alpha, beta)
		s.remove(c.Pos, side)
		if s.aborted {
			return 0
		}
		if maximizing {
			if score > best {
				best, bestMove = score, c.Pos
			}
			alpha = max(alpha, best)
		} else {
			if score < best {
				best, bestMove = score, c.Pos
			}
			beta = min(beta, best)
		}
		if beta <= alpha {
			s.stats.Cutoffs++
			break
		}
	}

	if s.tt != nil {
		flag := TTExact
		if best <= windowLow {
			flag = TTUpper
		} else if best >= windowHigh {
			flag = TTLower
		}
		s.stats.TTStores++
		if s.tt.Store(s.hash, depth, best, flag, bestMove, true) {
			s.stats.TTReplacements++
		}
	}
	return best
}

// promote moves pv to the front of moves, keeping the others in order.
func promote(moves []ScoredMove, pv board.Position) {
	for i := range moves {
		if moves[i].Pos != pv {
			continue
		}
		if i == 0 {
			return
		}
		m := moves[i]
		copy(moves[1:i+1], moves[:i])
		moves[0] = m
		return
	}
}
