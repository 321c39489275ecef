package rules

import (
	"errors"
	"fmt"

	"github.com/NikitosII/gomoku/internal/board"
)

const DefaultWinLength = 5

var (
	ErrOutOfBounds  = errors.New("out of bounds")
	ErrOccupied     = errors.New("occupied")
	ErrSizeMismatch = errors.New("board size does not match rules")
)

type Rules struct {
	size      board.Size
	winLength int
}

func New(size board.Size) Rules {
	return Rules{size: size, winLength: DefaultWinLength}
}

func (r Rules) Size() board.Size {
	return r.size
}

func (r Rules) WinLength() int {
	return r.winLength
}

// Result describes a finished game. Winner is CellEmpty for a draw.
type Result struct {
	Winner board.Cell
	Line   []board.Position
}

func (r Result) IsDraw() bool {
	return r.Winner == board.CellEmpty
}

func (r Rules) CheckMove(b *board.Board, p board.Position) error {
	if b.Size() != r.size {
		return ErrSizeMismatch
	}
	if !r.size.Contains(p) {
		return fmt.Errorf("move %s: %w", p, ErrOutOfBounds)
	}
	if b.At(p) != board.CellEmpty {
		return fmt.Errorf("move %s: %w", p, ErrOccupied)
	}
	return nil
}

func (r Rules) IsMoveLegal(b *board.Board, p board.Position) bool {
	return r.CheckMove(b, p) == nil
}

// IsWinningMove reports whether the stone at p completes a line of at
// least the win length.
func (r Rules) IsWinningMove(b *board.Board, p board.Position) bool {
	if !b.Size().Contains(p) {
		return false
	}
	cell := b.At(p)
	if cell == board.CellEmpty {
		return false
	}
	for _, d := range board.Directions {
		count := 1
		count += countDirection(b, p, d, cell)
		count += countDirection(b, p, d.Scale(-1), cell)
		if count >= r.winLength {
			return true
		}
	}
	return false
}

// WinningLine returns the first win-length window of the first qualifying
// direction, ordered from the run's backward end.
func (r Rules) WinningLine(b *board.Board, p board.Position) ([]board.Position, bool) {
	if !b.Size().Contains(p) {
		return nil, false
	}
	cell := b.At(p)
	if cell == board.CellEmpty {
		return nil, false
	}
	for _, d := range board.Directions {
		back := countDirection(b, p, d.Scale(-1), cell)
		forward := countDirection(b, p, d, cell)
		if back+forward+1 < r.winLength {
			continue
		}
		start := p.Offset(d, -back)
		line := make([]board.Position, 0, r.winLength)
		for i := 0; i < r.winLength; i++ {
			line = append(line, start.Offset(d, i))
		}
		return line, true
	}
	return nil, false
}

func (r Rules) IsDraw(b *board.Board) bool {
	return b.IsFull()
}

// Result checks the position after a stone was placed at p.
func (r Rules) Result(b *board.Board, p board.Position) (Result, bool) {
	if line, ok := r.WinningLine(b, p); ok {
		return Result{Winner: b.At(p), Line: line}, true
	}
	if r.IsDraw(b) {
		return Result{Winner: board.CellEmpty}, true
	}
	return Result{}, false
}

func (r Rules) String() string {
	return fmt.Sprintf("Rules{size=%dx%d, win=%d}", r.size.Rows, r.size.Cols, r.winLength)
}

func countDirection(b *board.Board, p board.Position, d board.Position, cell board.Cell) int {
	size := b.Size()
	count := 0
	cur := p.Add(d)
	for size.Contains(cur) && b.At(cur) == cell {
		count++
		cur = cur.Add(d)
	}
	return count
}
