package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NikitosII/gomoku/internal/ai"
	"github.com/NikitosII/gomoku/internal/board"
	"github.com/NikitosII/gomoku/internal/rules"
)

// GhostUpdate previews the search: the best root move found so far.
// Active is false once the preview should be cleared.
type GhostUpdate struct {
	Player    board.Cell     `json:"player"`
	Best      board.Position `json:"best"`
	BestScore int            `json:"best_score"`
	Move      board.Position `json:"move"`
	Score     int            `json:"score"`
	Searched  int            `json:"searched"`
	Total     int            `json:"total"`
	Active    bool           `json:"active"`
}

type GhostFunc func(GhostUpdate)

// AIPlayer runs one engine decision at a time on its own board copy.
type AIPlayer struct {
	engine   *ai.Engine
	throttle time.Duration

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	ghost     GhostFunc
	player    board.Cell
	lastGhost time.Time
	decision  ai.Decision
	err       error

	thinking  atomic.Bool
	moveReady atomic.Bool
}

// NewAIPlayer builds a player with its own engine. throttle limits how
// often ghost updates are published; zero publishes every root move.
func NewAIPlayer(r rules.Rules, cfg ai.Config, throttle time.Duration, opts ...ai.Option) (*AIPlayer, error) {
	a := &AIPlayer{throttle: throttle}
	opts = append(opts[:len(opts):len(opts)], ai.WithProgress(a.onProgress))
	engine, err := ai.NewEngine(r, cfg, opts...)
	if err != nil {
		return nil, err
	}
	a.engine = engine
	return a, nil
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

func (a *AIPlayer) Engine() *ai.Engine {
	return a.engine
}

// StartThinking launches a decision for player on a clone of b. It is a
// no-op while a decision is already running.
func (a *AIPlayer) StartThinking(b *board.Board, player board.Cell, ghost GhostFunc) {
	if a.thinking.Load() {
		return
	}
	a.wait()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.mu.Lock()
	a.cancel = cancel
	a.done = done
	a.ghost = ghost
	a.player = player
	a.lastGhost = time.Time{}
	a.decision = ai.Decision{}
	a.err = nil
	a.mu.Unlock()

	a.moveReady.Store(false)
	a.thinking.Store(true)

	snapshot := b.Clone()
	go func() {
		defer close(done)
		defer cancel()
		d, err := a.engine.DecideMove(ctx, snapshot, player)
		if ctx.Err() != nil {
			a.thinking.Store(false)
			return
		}
		a.mu.Lock()
		a.decision = d
		a.err = err
		a.mu.Unlock()
		a.moveReady.Store(true)
		a.thinking.Store(false)
	}()
}

func (a *AIPlayer) IsThinking() bool {
	return a.thinking.Load()
}

func (a *AIPlayer) HasMoveReady() bool {
	return a.moveReady.Load()
}

// TakeMove returns the finished decision and clears it.
func (a *AIPlayer) TakeMove() (ai.Decision, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.moveReady.Store(false)
	return a.decision, a.err
}

// StopThinking cancels a running decision, waits for the worker and drops
// any result.
func (a *AIPlayer) StopThinking() {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	a.wait()
	a.moveReady.Store(false)
	a.thinking.Store(false)
}

func (a *AIPlayer) wait() {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (a *AIPlayer) onProgress(p ai.Progress) {
	a.mu.Lock()
	ghost := a.ghost
	player := a.player
	if ghost == nil {
		a.mu.Unlock()
		return
	}
	if a.throttle > 0 && p.Searched < p.Total {
		now := time.Now()
		if !a.lastGhost.IsZero() && now.Sub(a.lastGhost) < a.throttle {
			a.mu.Unlock()
			return
		}
		a.lastGhost = now
	}
	a.mu.Unlock()

	ghost(GhostUpdate{
		Player:    player,
		Best:      p.Best,
		BestScore: p.BestScore,
		Move:      p.Move,
		Score:     p.Score,
		Searched:  p.Searched,
		Total:     p.Total,
		Active:    true,
	})
}
