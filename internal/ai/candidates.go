package ai

import (
	"sort"

	"github.com/NikitosII/gomoku/internal/board"
	"github.com/NikitosII/gomoku/internal/rules"
)

type ScoredMove struct {
	Pos   board.Position `json:"pos"`
	Score int            `json:"score"`
}

type CandidateGenerator struct {
	rules  rules.Rules
	moves  *MoveEvaluator
	radius int
}

func NewCandidateGenerator(r rules.Rules, moves *MoveEvaluator, cfg Config) *CandidateGenerator {
	return &CandidateGenerator{rules: r, moves: moves, radius: cfg.Radius}
}

// Candidates returns every empty cell near a stone, best first. Ties keep
// row-major discovery order. An empty board yields the centre if legal.
func (g *CandidateGenerator) Candidates(b *board.Board, player, opponent board.Cell) []ScoredMove {
	cells := neighbourCells(b, g.radius)
	if len(cells) == 0 {
		center := b.Size().Center()
		if g.rules.IsMoveLegal(b, center) {
			return []ScoredMove{{Pos: center}}
		}
		return nil
	}
	out := make([]ScoredMove, len(cells))
	for i, p := range cells {
		out[i] = ScoredMove{Pos: p, Score: g.moves.EvaluateMove(b, p, player, opponent)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func truncate(moves []ScoredMove, limit int) []ScoredMove {
	if limit > 0 && len(moves) > limit {
		return moves[:limit]
	}
	return moves
}
