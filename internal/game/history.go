package game

import (
	"time"

	"github.com/NikitosII/gomoku/internal/ai"
	"github.com/NikitosII/gomoku/internal/board"
)

type HistoryEntry struct {
	Move     board.Position
	Player   board.Cell
	Elapsed  time.Duration
	IsAI     bool
	Source   ai.Source
	Score    int
	Depth    int
	Complete bool
}

type History struct {
	entries []HistoryEntry
}

func (h *History) Clear() {
	h.entries = nil
}

func (h *History) Push(entry HistoryEntry) {
	h.entries = append(h.entries, entry)
}

func (h History) Size() int {
	return len(h.entries)
}

func (h History) All() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}

func (h History) Last() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}
