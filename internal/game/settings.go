package game

import (
	"errors"
	"fmt"
)

var ErrInvalidSettings = errors.New("invalid game settings")

// Board sizes accepted for a game.
const (
	MinBoardSize = 5
	MaxBoardSize = 25
)

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

func (t PlayerType) String() string {
	if t == PlayerAI {
		return "AI"
	}
	return "Human"
}

const (
	ModeAIvsHuman    = "ai_vs_human"
	ModeAIvsAI       = "ai_vs_ai"
	ModeHumanvsHuman = "human_vs_human"
)

type Settings struct {
	BoardSize   int
	BlackType   PlayerType
	WhiteType   PlayerType
	BlackStarts bool
}

func DefaultSettings() Settings {
	return Settings{
		BoardSize:   15,
		BlackType:   PlayerHuman,
		WhiteType:   PlayerAI,
		BlackStarts: true,
	}
}

func (s Settings) Validate() error {
	if s.BoardSize < MinBoardSize || s.BoardSize > MaxBoardSize {
		return fmt.Errorf("board size %d not in %d..%d: %w", s.BoardSize, MinBoardSize, MaxBoardSize, ErrInvalidSettings)
	}
	return nil
}

// WithMode returns s with player types set from a mode name. humanPlayer
// picks the human side in ai_vs_human: 1 is black, 2 is white.
func (s Settings) WithMode(mode string, humanPlayer int) (Settings, error) {
	switch mode {
	case ModeAIvsAI:
		s.BlackType, s.WhiteType = PlayerAI, PlayerAI
	case ModeHumanvsHuman:
		s.BlackType, s.WhiteType = PlayerHuman, PlayerHuman
	case ModeAIvsHuman:
		if humanPlayer == 2 {
			s.BlackType, s.WhiteType = PlayerAI, PlayerHuman
		} else {
			s.BlackType, s.WhiteType = PlayerHuman, PlayerAI
		}
	case "":
	default:
		return s, fmt.Errorf("mode %q: %w", mode, ErrInvalidSettings)
	}
	return s, nil
}

// Mode is the inverse of WithMode.
func (s Settings) Mode() (string, int) {
	switch {
	case s.BlackType == PlayerAI && s.WhiteType == PlayerAI:
		return ModeAIvsAI, 0
	case s.BlackType == PlayerHuman && s.WhiteType == PlayerHuman:
		return ModeHumanvsHuman, 1
	case s.WhiteType == PlayerHuman:
		return ModeAIvsHuman, 2
	default:
		return ModeAIvsHuman, 1
	}
}
