package ai

import (
	"sync"

	"github.com/NikitosII/gomoku/internal/board"
)

type ZobristTable struct {
	size  board.Size
	cells []uint64
}

type zobristStore struct {
	mu     sync.Mutex
	tables map[board.Size]*ZobristTable
}

var zobristTables = &zobristStore{tables: make(map[board.Size]*ZobristTable)}

// GetZobrist returns the shared, deterministic key table for a board size.
func GetZobrist(size board.Size) *ZobristTable {
	zobristTables.mu.Lock()
	defer zobristTables.mu.Unlock()
	if table, ok := zobristTables.tables[size]; ok {
		return table
	}
	rng := splitmix64{state: uint64(0x9e3779b97f4a7c15) ^ uint64(size.Rows)<<32 ^ uint64(size.Cols)}
	table := &ZobristTable{size: size, cells: make([]uint64, size.Cells()*2)}
	for i := range table.cells {
		table.cells[i] = rng.next()
	}
	zobristTables.tables[size] = table
	return table
}

func (z *ZobristTable) Stone(p board.Position, cell board.Cell) uint64 {
	idx := (p.Row*z.size.Cols + p.Col) * 2
	if cell == board.CellWhite {
		idx++
	}
	return z.cells[idx]
}

func (z *ZobristTable) Hash(b *board.Board) uint64 {
	var hash uint64
	for r := 0; r < z.size.Rows; r++ {
		for c := 0; c < z.size.Cols; c++ {
			p := board.Position{Row: r, Col: c}
			cell := b.At(p)
			if cell == board.CellEmpty {
				continue
			}
			hash ^= z.Stone(p, cell)
		}
	}
	return hash
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
