package ai

import (
	"fmt"
	"sort"
	"strings"
)

// PatternTable maps a window signature to its score. Signatures read
// X for an own stone, O for an opponent stone or the board edge and _
// for an empty cell. Keys are case-insensitive.
type PatternTable map[string]int

func DefaultPatterns() PatternTable {
	return PatternTable{
		"XXXXX":  1_000_000,
		"_XXXX_": 100_000,
		"XXXX_":  10_000,
		"_XXXX":  10_000,
		"XXX_X":  9_000,
		"X_XXX":  9_000,
		"XX_XX":  9_000,
		"_XXX__": 2_500,
		"__XXX_": 2_500,
		"_XXX_":  1_000,
		"_XX_X_": 900,
		"_X_XX_": 900,
		"XXX__":  500,
		"__XXX":  500,
		"__XX__": 150,
		"_XX_":   100,
		"_X_X_":  80,
		"XX___":  50,
		"___XX":  50,
		"_X_":    10,
	}
}

func (t PatternTable) Validate() error {
	for key, score := range t {
		sig := strings.ToUpper(key)
		if len(sig) == 0 || len(sig) > windowSize+2 {
			return fmt.Errorf("pattern %q: length must be 1..%d: %w", key, windowSize+2, ErrInvalidConfig)
		}
		if strings.Trim(sig, "XO_") != "" {
			return fmt.Errorf("pattern %q: only X, O and _ allowed: %w", key, ErrInvalidConfig)
		}
		if !strings.Contains(sig, "X") {
			return fmt.Errorf("pattern %q: needs at least one own stone: %w", key, ErrInvalidConfig)
		}
		if score < 0 {
			return fmt.Errorf("pattern %q: negative score %d: %w", key, score, ErrInvalidConfig)
		}
	}
	return nil
}

type compiledPattern struct {
	sig   string
	score int
}

// patternMatcher holds patterns ordered by score so the first hit is the best one.
type patternMatcher struct {
	patterns []compiledPattern
}

func compilePatterns(t PatternTable) patternMatcher {
	m := patternMatcher{patterns: make([]compiledPattern, 0, len(t))}
	for key, score := range t {
		m.patterns = append(m.patterns, compiledPattern{sig: strings.ToUpper(key), score: score})
	}
	sort.Slice(m.patterns, func(i, j int) bool {
		if m.patterns[i].score != m.patterns[j].score {
			return m.patterns[i].score > m.patterns[j].score
		}
		if len(m.patterns[i].sig) != len(m.patterns[j].sig) {
			return len(m.patterns[i].sig) > len(m.patterns[j].sig)
		}
		return m.patterns[i].sig < m.patterns[j].sig
	})
	return m
}

// best scores a window given as edge+core+edge: patterns no longer than
// the core must sit inside it, longer ones may use the edge cells.
func (m patternMatcher) best(extended []byte) int {
	core := extended[1 : len(extended)-1]
	for _, p := range m.patterns {
		var hay []byte
		if len(p.sig) <= len(core) {
			hay = core
		} else {
			hay = extended
		}
		if containsSig(hay, p.sig) {
			return p.score
		}
	}
	return 0
}

func containsSig(hay []byte, sig string) bool {
	n := len(sig)
	for start := 0; start+n <= len(hay); start++ {
		if string(hay[start:start+n]) == sig {
			return true
		}
	}
	return false
}

// Normalized returns a copy with upper-case keys.
func (t PatternTable) Normalized() PatternTable {
	out := make(PatternTable, len(t))
	for key, score := range t {
		out[strings.ToUpper(key)] = score
	}
	return out
}
