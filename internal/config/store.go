package config

import (
	"sync"

	"github.com/NikitosII/gomoku/internal/ai"
)

// Store holds the engine configuration shared between the HTTP layer and
// running games. Readers get a copy, so pattern maps are never aliased.
type Store struct {
	mu  sync.RWMutex
	cfg ai.Config
}

func NewStore(cfg ai.Config) *Store {
	return &Store{cfg: cloneAI(cfg)}
}

func (s *Store) Get() ai.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAI(s.cfg)
}

// Update validates cfg before swapping it in.
func (s *Store) Update(cfg ai.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cloneAI(cfg)
	s.mu.Unlock()
	return nil
}

func cloneAI(cfg ai.Config) ai.Config {
	patterns := make(ai.PatternTable, len(cfg.Patterns))
	for k, v := range cfg.Patterns {
		patterns[k] = v
	}
	cfg.Patterns = patterns
	return cfg
}
