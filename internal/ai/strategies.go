package ai

import (
	"context"
	"math"

	"github.com/NikitosII/gomoku/internal/board"
)

// balancedReplies is how many opponent replies balancedMove inspects.
const balancedReplies = 4

// greedyMove plays the candidate that builds the strongest own threat.
// Ties keep candidate order.
func (e *Engine) greedyMove(b *board.Board, player board.Cell) Decision {
	opponent := player.Opponent()
	cands := truncate(e.generator.Candidates(b, player, opponent), e.cfg.RootBreadth)
	if len(cands) == 0 {
		return e.fallback()
	}
	best, bestScore := cands[0].Pos, math.MinInt
	for _, c := range cands {
		if level := e.threats.ThreatLevel(b, c.Pos, player, opponent); level > bestScore {
			best, bestScore = c.Pos, level
		}
	}
	return Decision{Move: best, Score: bestScore, Source: SourceGreedy, Complete: true}
}

// balancedMove scores each candidate by its ordering value minus the
// strongest threat the opponent can answer with.
func (e *Engine) balancedMove(ctx context.Context, b *board.Board, player board.Cell) Decision {
	opponent := player.Opponent()
	cands := truncate(e.generator.Candidates(b, player, opponent), e.cfg.RootBreadth)
	if len(cands) == 0 {
		return e.fallback()
	}
	d := Decision{Move: cands[0].Pos, Source: SourceBalanced, Depth: 1, Complete: true}
	bestScore := math.MinInt
	root := make([]MoveScore, 0, len(cands))
	for _, c := range cands {
		if ctx.Err() != nil {
			d.Complete = false
			break
		}
		score := e.moves.EvaluateMove(b, c.Pos, player, opponent)
		b.Place(c.Pos, player)
		score -= e.bestReply(b, opponent, player)
		b.Remove(c.Pos)

		root = append(root, MoveScore{Move: c.Pos, Score: score})
		if score > bestScore {
			bestScore = score
			d.Move, d.Score = c.Pos, score
		}
	}
	d.Root = root
	return d
}

func (e *Engine) bestReply(b *board.Board, side, other board.Cell) int {
	best := 0
	for _, c := range truncate(e.generator.Candidates(b, side, other), balancedReplies) {
		best = max(best, e.threats.ThreatLevel(b, c.Pos, side, other))
	}
	return best
}
