package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NikitosII/gomoku/internal/ai"
	"github.com/NikitosII/gomoku/internal/board"
)

// Controller guards a Game for use from HTTP handlers and the tick loop.
type Controller struct {
	mu             sync.Mutex
	game           *Game
	ghostEnabled   func() bool
	ghostPublisher GhostFunc
}

func NewController(g *Game) *Controller {
	return &Controller{game: g}
}

func (c *Controller) SetGhostPublisher(enabled func() bool, publisher GhostFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ghostEnabled = enabled
	c.ghostPublisher = publisher
}

func (c *Controller) Tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ghost GhostFunc
	if c.ghostPublisher != nil && (c.ghostEnabled == nil || c.ghostEnabled()) {
		ghost = c.ghostPublisher
	}
	return c.game.Tick(ghost)
}

func (c *Controller) ApplyHumanMove(p board.Position) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.ApplyHumanMove(p)
}

func (c *Controller) SubmitHumanMove(p board.Position) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.SubmitHumanMove(p)
}

func (c *Controller) ID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.ID()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.State()
}

func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.Settings()
}

func (c *Controller) AIConfig() ai.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.AIConfig()
}

func (c *Controller) History() History {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.History()
}

func (c *Controller) LatestHistoryEntry() (HistoryEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.history.Last()
}

func (c *Controller) TurnStartedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.TurnStartedAt()
}

func (c *Controller) AIThinking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.AIThinking()
}

func (c *Controller) Reset(settings Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.Reset(settings)
}

func (c *Controller) StartGame(settings Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.game.Reset(settings); err != nil {
		return err
	}
	c.game.Start()
	return nil
}

func (c *Controller) UpdateSettings(settings Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.SetPlayers(settings)
}

func (c *Controller) UpdateAIConfig(cfg ai.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.SetAIConfig(cfg)
}

func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.game.Close()
}
