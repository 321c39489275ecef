package game

import (
	"github.com/NikitosII/gomoku/internal/board"
)

type Status int

const (
	StatusNotStarted Status = iota
	StatusRunning
	StatusBlackWon
	StatusWhiteWon
	StatusDraw
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusBlackWon:
		return "black_won"
	case StatusWhiteWon:
		return "white_won"
	case StatusDraw:
		return "draw"
	default:
		return "running"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Winner returns the winning colour, or CellEmpty while the game is open
// or drawn.
func (s Status) Winner() board.Cell {
	switch s {
	case StatusBlackWon:
		return board.CellBlack
	case StatusWhiteWon:
		return board.CellWhite
	default:
		return board.CellEmpty
	}
}

func (s Status) IsOver() bool {
	return s >= StatusBlackWon
}

type State struct {
	Board       *board.Board
	ToMove      board.Cell
	Status      Status
	LastMove    board.Position
	HasLastMove bool
	LastMessage string
	WinningLine []board.Position
}

func newState(settings Settings) State {
	s := State{
		Board:  board.New(board.Square(settings.BoardSize)),
		ToMove: board.CellWhite,
		Status: StatusNotStarted,
	}
	if settings.BlackStarts {
		s.ToMove = board.CellBlack
	}
	return s
}

func (s State) Clone() State {
	clone := s
	clone.Board = s.Board.Clone()
	clone.WinningLine = append([]board.Position(nil), s.WinningLine...)
	return clone
}

func statusForWinner(c board.Cell) Status {
	if c == board.CellBlack {
		return StatusBlackWon
	}
	return StatusWhiteWon
}
