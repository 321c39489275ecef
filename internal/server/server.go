package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/NikitosII/gomoku/internal/ai"
	"github.com/NikitosII/gomoku/internal/board"
	"github.com/NikitosII/gomoku/internal/config"
	"github.com/NikitosII/gomoku/internal/game"
	"github.com/NikitosII/gomoku/internal/rules"
)

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithGhostMode(enabled bool) Option {
	return func(s *Server) {
		s.ghostMode = enabled
	}
}

func WithAnalyzeTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.analyzeTimeout = d
	}
}

// WithIdlePing sets how long a websocket may stay silent before a ping
// message is written.
func WithIdlePing(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.idlePing = d
		}
	}
}

// Limits for posted analysis positions.
const (
	maxAnalyzeSize    = 19
	maxAnalyzeDepth   = 6
	analyzeCandidates = 10
)

// Server exposes one game over HTTP and websockets.
type Server struct {
	controller     *game.Controller
	store          *config.Store
	hub            *Hub
	ghost          *Hub
	logger         *zap.Logger
	ghostMode      bool
	analyzeTimeout time.Duration
	upgrader       websocket.Upgrader
	idlePing       time.Duration
}

func New(controller *game.Controller, store *config.Store, opts ...Option) *Server {
	s := &Server{
		controller:     controller,
		store:          store,
		logger:         zap.NewNop(),
		ghostMode:      true,
		analyzeTimeout: 10 * time.Second,
		upgrader:       websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		idlePing:       wsIdlePingInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub("status", s.logger)
	s.ghost = NewHub("ghost", s.logger)
	controller.SetGhostPublisher(
		func() bool { return s.ghostMode && s.ghost.HasClients() },
		func(u game.GhostUpdate) { s.ghost.Publish("ghost", u) },
	)
	return s
}

func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) GhostHub() *Hub {
	return s.ghost
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  zap.NewStdLog(s.logger.Named("http")),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", s.handlePing)
		r.Get("/status", s.handleStatus)
		r.Post("/start", s.handleStart)
		r.Post("/stop", s.handleStop)
		r.Post("/move", s.handleMove)
		r.Post("/settings", s.handleSettings)
		r.Post("/analyze", s.handleAnalyze)
	})
	r.Get("/ws/", s.serveStatusWS)
	r.Get("/ws/ghost", s.serveGhostWS)
	return r
}

// RunTicker drives the game loop and broadcasts every state change until
// ctx is done.
func (s *Server) RunTicker(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.controller.Close()
			return nil
		case <-ticker.C:
			if !s.controller.Tick() {
				continue
			}
			if entry, ok := s.controller.LatestHistoryEntry(); ok {
				s.hub.Publish("history", historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}})
			}
			s.hub.Publish("status", s.status())
		}
	}
}

func (s *Server) status() statusResponse {
	return statusFromController(s.controller, s.store.Get())
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Settings settingsDTO `json:"settings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	settings, err := settingsFromDTO(payload.Settings, s.controller.Settings())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.controller.StartGame(settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := s.status()
	writeJSON(w, http.StatusOK, status)
	s.hub.Publish("reset", status)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Reset(s.controller.Settings()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := s.status()
	writeJSON(w, http.StatusOK, status)
	s.hub.Publish("reset", status)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var payload moveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	p := board.Position{Row: payload.Row, Col: payload.Col}
	if err := s.controller.ApplyHumanMove(p); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, game.ErrNotRunning) || errors.Is(err, game.ErrNotHumanTurn) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	if entry, ok := s.controller.LatestHistoryEntry(); ok {
		s.hub.Publish("history", historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}})
	}
	st := s.status()
	s.hub.Publish("status", st)
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Settings *settingsDTO `json:"settings"`
		Config   *ai.Config   `json:"config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if payload.Config != nil {
		cfg := *payload.Config
		if len(cfg.Patterns) == 0 {
			cfg.Patterns = s.store.Get().Patterns
		} else {
			cfg.Patterns = cfg.Patterns.Normalized()
		}
		if err := s.store.Update(cfg); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.controller.UpdateAIConfig(s.store.Get()); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.logger.Info("ai config updated", zap.Int("depth", cfg.Depth), zap.String("evaluator", cfg.Evaluator))
	}
	if payload.Settings != nil {
		settings, err := settingsFromDTO(*payload.Settings, s.controller.Settings())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.controller.UpdateSettings(settings); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	s.hub.Publish("settings", settingsPayload{
		Settings: settingsToDTO(s.controller.Settings()),
		Config:   s.store.Get(),
	})
	writeJSON(w, http.StatusOK, s.status())
}

// handleAnalyze runs a one-off decision on a posted position. It shares no
// state with the running game.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if len(payload.Board) > maxAnalyzeSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("board has %d rows, max %d", len(payload.Board), maxAnalyzeSize))
		return
	}
	for _, row := range payload.Board {
		if len(row) > maxAnalyzeSize {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("board row has %d cells, max %d", len(row), maxAnalyzeSize))
			return
		}
	}
	b, err := board.Parse(payload.Board...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Depth > maxAnalyzeDepth {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("depth %d exceeds max %d", payload.Depth, maxAnalyzeDepth))
		return
	}
	player := board.Cell(payload.Player)
	if !player.IsStone() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("player must be 1 or 2, got %d", payload.Player))
		return
	}
	cfg := s.store.Get()
	if payload.Evaluator != "" {
		cfg.Evaluator = strings.ToLower(payload.Evaluator)
	}
	if payload.Depth > 0 {
		cfg.Depth = payload.Depth
	}
	r2 := rules.New(b.Size())
	engine, err := ai.NewEngine(r2, cfg, ai.WithLogger(s.logger.Named("analyze")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	critical, tier := engine.Threats().CriticalMoves(b, player, player.Opponent())
	cands := engine.Candidates().Candidates(b, player, player.Opponent())
	if len(cands) > analyzeCandidates {
		cands = cands[:analyzeCandidates]
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.analyzeTimeout)
	defer cancel()
	d, err := engine.DecideMove(ctx, b, player)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp := analyzeResponse{
		Decision:   d,
		Evaluation: engine.Evaluate(b, player),
		Tier:       tier.String(),
		Critical:   critical,
		Candidates: cands,
	}
	if b.IsEmpty(d.Move) {
		b.Place(d.Move, player)
		if result, over := r2.Result(b, d.Move); over {
			resp.Result = "draw"
			if !result.IsDraw() {
				resp.Result = "win"
			}
		}
		b.Remove(d.Move)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) serveStatusWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	client := newClient()
	s.hub.Register(client)
	client.sendJSON("status", s.status())

	go func() {
		defer conn.Close()
		if err := client.writeLoop(conn, s.idlePing); err != nil {
			s.logger.Debug("ws write ended", zap.Error(err))
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == "request_status" {
			client.sendJSON("status", s.status())
		}
	}
}

func (s *Server) serveGhostWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	client := newClient()
	s.ghost.Register(client)

	go func() {
		defer conn.Close()
		if err := client.writeLoop(conn, s.idlePing); err != nil {
			s.logger.Debug("ghost ws write ended", zap.Error(err))
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.ghost.Unregister(client)
			return
		}
	}
}
