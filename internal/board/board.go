package board

import (
	"errors"
	"fmt"
	"strings"
)

var ErrOutOfRange = errors.New("position out of range")

type Cell int

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
)

func (c Cell) Opponent() Cell {
	switch c {
	case CellBlack:
		return CellWhite
	case CellWhite:
		return CellBlack
	default:
		return CellEmpty
	}
}

func (c Cell) IsStone() bool {
	return c == CellBlack || c == CellWhite
}

func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "Black"
	case CellWhite:
		return "White"
	default:
		return "Empty"
	}
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) Add(d Position) Position {
	return Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
}

func (p Position) Scale(k int) Position {
	return Position{Row: p.Row * k, Col: p.Col * k}
}

// Offset returns p moved k steps along d.
func (p Position) Offset(d Position, k int) Position {
	return Position{Row: p.Row + d.Row*k, Col: p.Col + d.Col*k}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Directions lists the four line axes: vertical, horizontal, diagonal, anti-diagonal.
var Directions = [4]Position{{Row: 1, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 1, Col: -1}}

type Size struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

func Square(n int) Size {
	return Size{Rows: n, Cols: n}
}

func (s Size) Contains(p Position) bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < s.Rows && p.Col < s.Cols
}

func (s Size) Center() Position {
	return Position{Row: s.Rows / 2, Col: s.Cols / 2}
}

func (s Size) Cells() int {
	return s.Rows * s.Cols
}

type Board struct {
	size   Size
	cells  []Cell
	stones int
	// placed keeps standing stones in placement order; its tail is the last move.
	placed []Position
}

func New(size Size) *Board {
	b := &Board{}
	b.Reset(size)
	return b
}

func (b *Board) Reset(size Size) {
	if size.Rows < 0 {
		size.Rows = 0
	}
	if size.Cols < 0 {
		size.Cols = 0
	}
	b.size = size
	b.cells = make([]Cell, size.Cells())
	b.stones = 0
	b.placed = b.placed[:0]
}

func (b *Board) Size() Size {
	return b.size
}

func (b *Board) Get(p Position) (Cell, error) {
	if !b.size.Contains(p) {
		return CellEmpty, fmt.Errorf("get %s: %w", p, ErrOutOfRange)
	}
	return b.cells[b.index(p)], nil
}

func (b *Board) Set(p Position, c Cell) error {
	if !b.size.Contains(p) {
		return fmt.Errorf("set %s: %w", p, ErrOutOfRange)
	}
	if c == CellEmpty {
		b.Remove(p)
		return nil
	}
	b.Place(p, c)
	return nil
}

// At reads a cell without bounds checking.
func (b *Board) At(p Position) Cell {
	return b.cells[b.index(p)]
}

// Place puts c at p without bounds checking. Overwriting a stone with
// the other colour keeps the count and moves p to the top of the history.
func (b *Board) Place(p Position, c Cell) {
	idx := b.index(p)
	prev := b.cells[idx]
	b.cells[idx] = c
	if prev != CellEmpty {
		b.forget(p)
	} else {
		b.stones++
	}
	b.placed = append(b.placed, p)
}

// Remove clears p without bounds checking.
func (b *Board) Remove(p Position) {
	idx := b.index(p)
	if b.cells[idx] == CellEmpty {
		return
	}
	b.cells[idx] = CellEmpty
	b.stones--
	b.forget(p)
}

func (b *Board) IsEmpty(p Position) bool {
	return b.size.Contains(p) && b.At(p) == CellEmpty
}

func (b *Board) IsFull() bool {
	return b.stones >= len(b.cells)
}

func (b *Board) Stones() int {
	return b.stones
}

func (b *Board) LastMove() (Position, bool) {
	if len(b.placed) == 0 {
		return Position{}, false
	}
	return b.placed[len(b.placed)-1], true
}

func (b *Board) Clone() *Board {
	clone := &Board{size: b.size, stones: b.stones}
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	clone.placed = append([]Position(nil), b.placed...)
	return clone
}

// Equal compares cell contents and last move.
func (b *Board) Equal(other *Board) bool {
	if other == nil || b.size != other.size || b.stones != other.stones {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	l1, ok1 := b.LastMove()
	l2, ok2 := other.LastMove()
	return ok1 == ok2 && l1 == l2
}

func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.size.Rows; r++ {
		for c := 0; c < b.size.Cols; c++ {
			switch b.cells[r*b.size.Cols+c] {
			case CellBlack:
				sb.WriteByte('X')
			case CellWhite:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Parse builds a board from equal-length rows of 'X' (black), 'O' (white)
// and '.' (empty). Stones are placed in row-major order.
func Parse(rows ...string) (*Board, error) {
	if len(rows) == 0 {
		return nil, errors.New("parse board: no rows")
	}
	cols := len(rows[0])
	b := New(Size{Rows: len(rows), Cols: cols})
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("parse board: row %d has %d cells, want %d", r, len(row), cols)
		}
		for c := 0; c < cols; c++ {
			switch row[c] {
			case 'X', 'x':
				b.Place(Position{Row: r, Col: c}, CellBlack)
			case 'O', 'o':
				b.Place(Position{Row: r, Col: c}, CellWhite)
			case '.', '_':
			default:
				return nil, fmt.Errorf("parse board: unexpected %q at %d,%d", row[c], r, c)
			}
		}
	}
	return b, nil
}

func (b *Board) index(p Position) int {
	return p.Row*b.size.Cols + p.Col
}

func (b *Board) forget(p Position) {
	for i := len(b.placed) - 1; i >= 0; i-- {
		if b.placed[i] == p {
			b.placed = append(b.placed[:i], b.placed[i+1:]...)
			return
		}
	}
}
