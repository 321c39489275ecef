package game

import "github.com/NikitosII/gomoku/internal/board"

// Player is one side of a game. Humans queue moves; AI players think in
// the background.
type Player interface {
	IsHuman() bool
}

type HumanPlayer struct {
	pending     bool
	pendingMove board.Position
}

func NewHumanPlayer() *HumanPlayer {
	return &HumanPlayer{}
}

func (h *HumanPlayer) IsHuman() bool {
	return true
}

func (h *HumanPlayer) SetPendingMove(p board.Position) {
	h.pendingMove = p
	h.pending = true
}

func (h *HumanPlayer) HasPendingMove() bool {
	return h.pending
}

func (h *HumanPlayer) TakePendingMove() board.Position {
	h.pending = false
	return h.pendingMove
}
