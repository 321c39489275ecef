package ai

import "github.com/NikitosII/gomoku/internal/board"

const mobilityRadius = 2

// MoveEvaluator scores a prospective placement for move ordering only.
type MoveEvaluator struct {
	threats         *ThreatDetector
	earlyGameStones int
}

func NewMoveEvaluator(threats *ThreatDetector, cfg Config) *MoveEvaluator {
	return &MoveEvaluator{threats: threats, earlyGameStones: cfg.EarlyGameStones}
}

func (m *MoveEvaluator) EvaluateMove(b *board.Board, p board.Position, player, opponent board.Cell) int {
	score := 0
	if b.Stones() < m.earlyGameStones {
		score += centrality(b.Size(), p)
	}
	score += mobility(b, p)
	score += m.threats.ThreatLevel(b, p, player, opponent)
	score += m.threats.ThreatLevel(b, p, opponent, player)
	return score
}

func centrality(size board.Size, p board.Position) int {
	center := size.Center()
	distance := abs(p.Row-center.Row) + abs(p.Col-center.Col)
	if bonus := 20 - 2*distance; bonus > 0 {
		return bonus
	}
	return 0
}

func mobility(b *board.Board, p board.Position) int {
	size := b.Size()
	free := 0
	for dr := -mobilityRadius; dr <= mobilityRadius; dr++ {
		for dc := -mobilityRadius; dc <= mobilityRadius; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			q := board.Position{Row: p.Row + dr, Col: p.Col + dc}
			if size.Contains(q) && b.At(q) == board.CellEmpty {
				free++
			}
		}
	}
	return 2 * free
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
