package ai

import (
	"github.com/NikitosII/gomoku/internal/board"
	"github.com/NikitosII/gomoku/internal/rules"
)

const windowSize = 5

// Severity per number of own stones in an unblocked 5-cell window.
var windowSeverity = [windowSize + 1]int{0, 10, 100, 1000, 10000, 100000}

type Tier int

const (
	TierNone Tier = iota
	TierWin
	TierBlock
	TierFork
)

func (t Tier) String() string {
	switch t {
	case TierWin:
		return "win"
	case TierBlock:
		return "block"
	case TierFork:
		return "fork"
	default:
		return "none"
	}
}

type ThreatDetector struct {
	rules           rules.Rules
	radius          int
	dangerThreshold int
	forkThreshold   int
}

func NewThreatDetector(r rules.Rules, cfg Config) *ThreatDetector {
	return &ThreatDetector{
		rules:           r,
		radius:          cfg.Radius,
		dangerThreshold: cfg.DangerThreshold,
		forkThreshold:   cfg.ForkThreshold,
	}
}

// ThreatLevel sums, over the four axes, the best unblocked window through p.
func (t *ThreatDetector) ThreatLevel(b *board.Board, p board.Position, player, opponent board.Cell) int {
	total := 0
	for _, d := range board.Directions {
		total += directionThreat(b, p, d, player, opponent)
	}
	return total
}

func (t *ThreatDetector) IsImmediateWin(b *board.Board, p board.Position, player board.Cell) bool {
	if !b.IsEmpty(p) {
		return false
	}
	b.Place(p, player)
	win := t.rules.IsWinningMove(b, p)
	b.Remove(p)
	return win
}

func (t *ThreatDetector) IsImmediateThreat(b *board.Board, p board.Position, player board.Cell) (bool, int) {
	if !b.IsEmpty(p) {
		return false, 0
	}
	b.Place(p, player)
	level := t.ThreatLevel(b, p, player, player.Opponent())
	b.Remove(p)
	return level >= t.dangerThreshold, level
}

// CriticalMoves returns the moves of the highest non-empty tier: wins,
// then blocks of opponent wins, then forks.
func (t *ThreatDetector) CriticalMoves(b *board.Board, player, opponent board.Cell) ([]board.Position, Tier) {
	cells := neighbourCells(b, t.radius)
	if len(cells) == 0 {
		return nil, TierNone
	}
	var wins, blocks []board.Position
	for _, p := range cells {
		if t.IsImmediateWin(b, p, player) {
			wins = append(wins, p)
		}
	}
	if len(wins) > 0 {
		return wins, TierWin
	}
	for _, p := range cells {
		if t.IsImmediateWin(b, p, opponent) {
			blocks = append(blocks, p)
		}
	}
	if len(blocks) > 0 {
		return blocks, TierBlock
	}
	var forks []board.Position
	for _, p := range cells {
		if t.isFork(b, p, player, opponent) {
			forks = append(forks, p)
		}
	}
	if len(forks) > 0 {
		return forks, TierFork
	}
	return nil, TierNone
}

func (t *ThreatDetector) isFork(b *board.Board, p board.Position, player, opponent board.Cell) bool {
	b.Place(p, player)
	threats := 0
	for _, d := range board.Directions {
		if directionThreat(b, p, d, player, opponent) >= t.forkThreshold {
			threats++
		}
	}
	b.Remove(p)
	return threats >= 2
}

func directionThreat(b *board.Board, p board.Position, d board.Position, player, opponent board.Cell) int {
	size := b.Size()
	best := 0
	for shift := -(windowSize - 1); shift <= 0; shift++ {
		start := p.Offset(d, shift)
		if !size.Contains(start) || !size.Contains(start.Offset(d, windowSize-1)) {
			continue
		}
		stones := 0
		blocked := false
		for i := 0; i < windowSize; i++ {
			switch b.At(start.Offset(d, i)) {
			case player:
				stones++
			case opponent:
				blocked = true
			}
			if blocked {
				break
			}
		}
		if blocked {
			continue
		}
		if score := windowSeverity[stones]; score > best {
			best = score
		}
	}
	return best
}

// neighbourCells lists empty cells within radius of any stone in row-major order.
func neighbourCells(b *board.Board, radius int) []board.Position {
	size := b.Size()
	if b.Stones() == 0 {
		return nil
	}
	out := make([]board.Position, 0, 64)
	for r := 0; r < size.Rows; r++ {
		for c := 0; c < size.Cols; c++ {
			p := board.Position{Row: r, Col: c}
			if b.At(p) != board.CellEmpty {
				continue
			}
			if hasStoneNearby(b, p, radius) {
				out = append(out, p)
			}
		}
	}
	return out
}

func hasStoneNearby(b *board.Board, p board.Position, radius int) bool {
	size := b.Size()
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			q := board.Position{Row: p.Row + dr, Col: p.Col + dc}
			if size.Contains(q) && b.At(q) != board.CellEmpty {
				return true
			}
		}
	}
	return false
}
