package ai

import "github.com/NikitosII/gomoku/internal/board"

type TTFlag uint8

const (
	TTExact TTFlag = iota
	TTLower
	TTUpper
)

func (f TTFlag) String() string {
	switch f {
	case TTExact:
		return "EXACT"
	case TTLower:
		return "LOWER"
	case TTUpper:
		return "UPPER"
	default:
		return "UNKNOWN"
	}
}

type TTEntry struct {
	Key      uint64
	Depth    int
	Score    int
	Flag     TTFlag
	BestMove board.Position
	HasBest  bool
	gen      uint32
}

// TranspositionTable is a bucketed, set-associative cache. Entries from
// older generations are treated as empty, so Clear is O(1). It is not
// safe for concurrent use; each decision owns its table.
type TranspositionTable struct {
	mask    uint64
	buckets int
	entries []TTEntry
	gen     uint32
}

func NewTranspositionTable(size uint64, buckets int) *TranspositionTable {
	if buckets <= 0 {
		buckets = 2
	}
	if size < 1 {
		size = 1
	}
	if (size & (size - 1)) != 0 {
		size = nextPowerOfTwo(size)
	}
	return &TranspositionTable{
		mask:    size - 1,
		buckets: buckets,
		entries: make([]TTEntry, int(size)*buckets),
		gen:     1,
	}
}

func (tt *TranspositionTable) Clear() {
	tt.gen++
	if tt.gen == 0 {
		for i := range tt.entries {
			tt.entries[i] = TTEntry{}
		}
		tt.gen = 1
	}
}

func (tt *TranspositionTable) Generation() uint32 {
	return tt.gen
}

func (tt *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	start := tt.bucketIndex(key)
	for i := 0; i < tt.buckets; i++ {
		entry := tt.entries[start+i]
		if entry.gen == tt.gen && entry.Key == key {
			return entry, true
		}
	}
	return TTEntry{}, false
}

// Store writes an entry, preferring a slot with the same key, then a
// free or stale slot, then the shallowest entry. It reports whether a
// live entry for another position was evicted.
func (tt *TranspositionTable) Store(key uint64, depth int, score int, flag TTFlag, best board.Position, hasBest bool) bool {
	start := tt.bucketIndex(key)
	entry := TTEntry{Key: key, Depth: depth, Score: score, Flag: flag, BestMove: best, HasBest: hasBest, gen: tt.gen}

	for i := 0; i < tt.buckets; i++ {
		idx := start + i
		if tt.entries[idx].gen == tt.gen && tt.entries[idx].Key == key {
			tt.entries[idx] = entry
			return false
		}
	}
	for i := 0; i < tt.buckets; i++ {
		idx := start + i
		if tt.entries[idx].gen != tt.gen {
			tt.entries[idx] = entry
			return false
		}
	}
	victim := start
	for i := 1; i < tt.buckets; i++ {
		if tt.entries[start+i].Depth < tt.entries[victim].Depth {
			victim = start + i
		}
	}
	tt.entries[victim] = entry
	return true
}

func (tt *TranspositionTable) Count() int {
	count := 0
	for i := range tt.entries {
		if tt.entries[i].gen == tt.gen {
			count++
		}
	}
	return count
}

func (tt *TranspositionTable) Capacity() int {
	if tt == nil {
		return 0
	}
	return len(tt.entries)
}

func (tt *TranspositionTable) bucketIndex(key uint64) int {
	return int(key&tt.mask) * tt.buckets
}

func nextPowerOfTwo(v uint64) uint64 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	v++
	return v
}
