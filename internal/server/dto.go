package server

import (
	"encoding/json"
	"net/http"

	"github.com/NikitosII/gomoku/internal/ai"
	"github.com/NikitosII/gomoku/internal/board"
	"github.com/NikitosII/gomoku/internal/game"
)

type settingsDTO struct {
	Mode        string `json:"mode"`
	HumanPlayer int    `json:"human_player"`
	BoardSize   int    `json:"board_size,omitempty"`
	BlackStarts *bool  `json:"black_starts,omitempty"`
}

type statusResponse struct {
	Session         string            `json:"session"`
	Settings        settingsDTO       `json:"settings"`
	Config          ai.Config         `json:"config"`
	NextPlayer      board.Cell        `json:"next_player"`
	Winner          board.Cell        `json:"winner"`
	BoardSize       int               `json:"board_size"`
	Status          game.Status       `json:"status"`
	Board           [][]board.Cell    `json:"board"`
	History         []historyEntryDTO `json:"history"`
	WinningLine     []board.Position  `json:"winning_line"`
	LastMessage     string            `json:"last_message,omitempty"`
	AIThinking      bool              `json:"ai_thinking"`
	TurnStartedAtMs int64             `json:"turn_started_at_ms"`
}

type historyEntryDTO struct {
	Row       int        `json:"row"`
	Col       int        `json:"col"`
	Player    board.Cell `json:"player"`
	ElapsedMs float64    `json:"elapsed_ms"`
	IsAI      bool       `json:"is_ai"`
	Source    string     `json:"source,omitempty"`
	Score     int        `json:"score,omitempty"`
	Depth     int        `json:"depth,omitempty"`
	Complete  bool       `json:"complete,omitempty"`
}

type historyPayload struct {
	History []historyEntryDTO `json:"history"`
}

type settingsPayload struct {
	Settings settingsDTO `json:"settings"`
	Config   ai.Config   `json:"config"`
}

type moveRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// analyzeRequest carries a position as rows of 'X', 'O' and '.'.
type analyzeRequest struct {
	Board     []string `json:"board"`
	Player    int      `json:"player"`
	Evaluator string   `json:"evaluator,omitempty"`
	Depth     int      `json:"depth,omitempty"`
}

type analyzeResponse struct {
	Decision   ai.Decision      `json:"decision"`
	Evaluation int              `json:"evaluation"`
	Result     string           `json:"result,omitempty"`
	Tier       string           `json:"tier"`
	Critical   []board.Position `json:"critical,omitempty"`
	Candidates []ai.ScoredMove  `json:"candidates,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusFromController(c *game.Controller, cfg ai.Config) statusResponse {
	state := c.State()
	settings := c.Settings()
	size := state.Board.Size()
	turnStart := c.TurnStartedAt()
	var turnMs int64
	if !turnStart.IsZero() {
		turnMs = turnStart.UnixMilli()
	}
	return statusResponse{
		Session:         c.ID().String(),
		Settings:        settingsToDTO(settings),
		Config:          cfg,
		NextPlayer:      state.ToMove,
		Winner:          state.Status.Winner(),
		BoardSize:       size.Rows,
		Status:          state.Status,
		Board:           boardToSlice(state.Board),
		History:         historyToDTO(c.History()),
		WinningLine:     append([]board.Position{}, state.WinningLine...),
		LastMessage:     state.LastMessage,
		AIThinking:      c.AIThinking(),
		TurnStartedAtMs: turnMs,
	}
}

func settingsToDTO(s game.Settings) settingsDTO {
	mode, human := s.Mode()
	blackStarts := s.BlackStarts
	return settingsDTO{Mode: mode, HumanPlayer: human, BoardSize: s.BoardSize, BlackStarts: &blackStarts}
}

func settingsFromDTO(dto settingsDTO, base game.Settings) (game.Settings, error) {
	s, err := base.WithMode(dto.Mode, dto.HumanPlayer)
	if err != nil {
		return base, err
	}
	if dto.BoardSize > 0 {
		s.BoardSize = dto.BoardSize
	}
	if dto.BlackStarts != nil {
		s.BlackStarts = *dto.BlackStarts
	}
	return s, s.Validate()
}

func boardToSlice(b *board.Board) [][]board.Cell {
	size := b.Size()
	rows := make([][]board.Cell, size.Rows)
	for r := 0; r < size.Rows; r++ {
		rows[r] = make([]board.Cell, size.Cols)
		for c := 0; c < size.Cols; c++ {
			rows[r][c] = b.At(board.Position{Row: r, Col: c})
		}
	}
	return rows
}

func historyToDTO(h game.History) []historyEntryDTO {
	entries := h.All()
	out := make([]historyEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryToDTO(e))
	}
	return out
}

func historyEntryToDTO(e game.HistoryEntry) historyEntryDTO {
	return historyEntryDTO{
		Row:       e.Move.Row,
		Col:       e.Move.Col,
		Player:    e.Player,
		ElapsedMs: float64(e.Elapsed.Microseconds()) / 1000,
		IsAI:      e.IsAI,
		Source:    string(e.Source),
		Score:     e.Score,
		Depth:     e.Depth,
		Complete:  e.Complete,
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
