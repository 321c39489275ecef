// Package arena plays engine-vs-engine matches and keeps Elo standings.
package arena

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/NikitosII/gomoku/internal/ai"
	"github.com/NikitosII/gomoku/internal/board"
	"github.com/NikitosII/gomoku/internal/rules"
)

type Contender struct {
	Name   string
	Config ai.Config
}

type GameResult struct {
	Black   string
	White   string
	Winner  board.Cell
	Moves   int
	Opening []board.Position
}

type Standing struct {
	Name   string  `json:"name"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Draws  int     `json:"draws"`
	Elo    float64 `json:"elo"`
}

type Option func(*Arena)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Arena) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithSeed(seed int64) Option {
	return func(a *Arena) {
		a.seed = seed
	}
}

func WithOpeningPlies(n int) Option {
	return func(a *Arena) {
		if n >= 0 {
			a.openingPlies = n
		}
	}
}

func WithMoveTimeout(d time.Duration) Option {
	return func(a *Arena) {
		a.moveTimeout = d
	}
}

func WithEloK(k float64) Option {
	return func(a *Arena) {
		if k > 0 {
			a.eloK = k
		}
	}
}

type Arena struct {
	rules        rules.Rules
	logger       *zap.Logger
	seed         int64
	openingPlies int
	moveTimeout  time.Duration
	eloK         float64
}

func New(size board.Size, opts ...Option) *Arena {
	a := &Arena{
		rules:        rules.New(size),
		logger:       zap.NewNop(),
		seed:         1,
		openingPlies: 4,
		eloK:         20,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Openings returns count distinct-cell openings clustered around the
// centre. The same seed always yields the same suite.
func (a *Arena) Openings(count int) [][]board.Position {
	size := a.rules.Size()
	rng := rand.New(rand.NewSource(a.seed*97 + int64(a.openingPlies)*13))
	center := size.Center()
	offsets := []board.Position{
		{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 0, Col: 1}, {Row: -1, Col: 0}, {Row: 0, Col: -1},
		{Row: 1, Col: 1}, {Row: -1, Col: -1}, {Row: 1, Col: -1}, {Row: -1, Col: 1}, {Row: 2, Col: 0}, {Row: 0, Col: 2},
	}
	plies := min(a.openingPlies, len(offsets))
	suite := make([][]board.Position, 0, count)
	for i := 0; i < count; i++ {
		used := map[board.Position]bool{}
		opening := make([]board.Position, 0, plies)
		for len(opening) < plies {
			p := center.Add(offsets[rng.Intn(len(offsets))])
			if !size.Contains(p) || used[p] {
				continue
			}
			used[p] = true
			opening = append(opening, p)
		}
		suite = append(suite, opening)
	}
	return suite
}

// PlayGame plays one game from opening to a result. Opening stones
// alternate starting with black.
func (a *Arena) PlayGame(ctx context.Context, black, white Contender, opening []board.Position, seed int64) (GameResult, error) {
	engines := map[board.Cell]*ai.Engine{}
	for i, c := range []struct {
		cell board.Cell
		who  Contender
	}{{board.CellBlack, black}, {board.CellWhite, white}} {
		e, err := ai.NewEngine(a.rules, c.who.Config,
			ai.WithRand(rand.New(rand.NewSource(seed+int64(i)))),
			ai.WithLogger(a.logger.Named(c.who.Name)),
		)
		if err != nil {
			return GameResult{}, fmt.Errorf("engine %s: %w", c.who.Name, err)
		}
		engines[c.cell] = e
	}

	res := GameResult{Black: black.Name, White: white.Name, Opening: opening}
	b := board.New(a.rules.Size())
	toMove := board.CellBlack
	for _, p := range opening {
		if err := a.rules.CheckMove(b, p); err != nil {
			return res, fmt.Errorf("opening: %w", err)
		}
		b.Place(p, toMove)
		toMove = toMove.Opponent()
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		d, err := a.decide(ctx, engines[toMove], b, toMove)
		if err != nil {
			return res, err
		}
		if err := a.rules.CheckMove(b, d.Move); err != nil {
			return res, fmt.Errorf("%s played illegal move: %w", toMove, err)
		}
		b.Place(d.Move, toMove)
		if result, over := a.rules.Result(b, d.Move); over {
			res.Winner = result.Winner
			res.Moves = b.Stones()
			return res, nil
		}
		toMove = toMove.Opponent()
	}
}

func (a *Arena) decide(ctx context.Context, e *ai.Engine, b *board.Board, player board.Cell) (ai.Decision, error) {
	if a.moveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.moveTimeout)
		defer cancel()
	}
	return e.DecideMove(ctx, b, player)
}

// HeadToHead plays opening twice with colours swapped and returns the
// score for first: 1 per win, 0.5 per draw, averaged.
func (a *Arena) HeadToHead(ctx context.Context, first, second Contender, opening []board.Position, seed int64) (float64, []GameResult, error) {
	points := 0.0
	var results []GameResult
	for i, firstBlack := range []bool{true, false} {
		black, white := first, second
		if !firstBlack {
			black, white = second, first
		}
		res, err := a.PlayGame(ctx, black, white, opening, seed+int64(i)*7919)
		if err != nil {
			return 0, results, err
		}
		results = append(results, res)
		switch res.Winner {
		case board.CellBlack:
			if firstBlack {
				points++
			}
		case board.CellWhite:
			if !firstBlack {
				points++
			}
		default:
			points += 0.5
		}
	}
	return points / 2, results, nil
}

// Run plays one head-to-head per opening and returns both standings,
// best first.
func (a *Arena) Run(ctx context.Context, first, second Contender, openings int) ([]Standing, error) {
	s1 := &Standing{Name: first.Name, Elo: 1500}
	s2 := &Standing{Name: second.Name, Elo: 1500}
	for i, opening := range a.Openings(openings) {
		score, results, err := a.HeadToHead(ctx, first, second, opening, a.seed+int64(i))
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			tally(s1, s2, r)
		}
		updateElo(s1, s2, score, a.eloK)
		a.logger.Info("head to head",
			zap.Int("opening", i),
			zap.String("first", first.Name),
			zap.String("second", second.Name),
			zap.Float64("score", score),
			zap.Float64("elo_first", s1.Elo),
			zap.Float64("elo_second", s2.Elo),
		)
	}
	out := []Standing{*s1, *s2}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Elo > out[j].Elo })
	return out, nil
}

func tally(s1, s2 *Standing, r GameResult) {
	var winner string
	switch r.Winner {
	case board.CellBlack:
		winner = r.Black
	case board.CellWhite:
		winner = r.White
	default:
		s1.Draws++
		s2.Draws++
		return
	}
	if winner == s1.Name {
		s1.Wins++
		s2.Losses++
	} else {
		s2.Wins++
		s1.Losses++
	}
}

func updateElo(a, b *Standing, resultForA, k float64) {
	expectedA := 1 / (1 + math.Pow(10, (b.Elo-a.Elo)/400))
	delta := k * (resultForA - expectedA)
	a.Elo += delta
	b.Elo -= delta
}
