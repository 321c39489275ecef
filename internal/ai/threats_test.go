package ai

import (
	"testing"

	"github.com/NikitosII/gomoku/internal/board"
	"github.com/NikitosII/gomoku/internal/rules"
)

func pos(r, c int) board.Position {
	return board.Position{Row: r, Col: c}
}

func boardWith(t *testing.T, size int, black, white []board.Position) *board.Board {
	t.Helper()
	b := board.New(board.Square(size))
	for _, p := range black {
		if err := b.Set(p, board.CellBlack); err != nil {
			t.Fatalf("place black %s: %v", p, err)
		}
	}
	for _, p := range white {
		if err := b.Set(p, board.CellWhite); err != nil {
			t.Fatalf("place white %s: %v", p, err)
		}
	}
	return b
}

func newDetector(b *board.Board) *ThreatDetector {
	return NewThreatDetector(rules.New(b.Size()), DefaultConfig())
}

func TestThreatLevelWindows(t *testing.T) {
	black := []board.Position{pos(7, 7), pos(7, 8), pos(7, 9)}
	cases := []struct {
		name  string
		white []board.Position
		want  int
	}{
		{name: "open three", want: 1000},
		{name: "one side blocked", white: []board.Position{pos(7, 6)}, want: 1000},
		{name: "both sides blocked", white: []board.Position{pos(7, 6), pos(7, 11)}, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := boardWith(t, 15, black, tc.white)
			d := newDetector(b)
			if got := d.ThreatLevel(b, pos(7, 10), board.CellBlack, board.CellWhite); got != tc.want {
				t.Fatalf("ThreatLevel = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestThreatLevelIgnoresWindowsOffBoard(t *testing.T) {
	b := boardWith(t, 15, []board.Position{pos(0, 0), pos(0, 1), pos(0, 2), pos(0, 3)}, nil)
	d := newDetector(b)
	if got := d.ThreatLevel(b, pos(0, 4), board.CellBlack, board.CellWhite); got != 10000 {
		t.Fatalf("expected the only full window to score 10000, got %d", got)
	}
}

func TestImmediateWinAndThreatRestoreBoard(t *testing.T) {
	b := boardWith(t, 15,
		[]board.Position{pos(7, 7), pos(7, 8), pos(7, 9), pos(7, 10)},
		[]board.Position{pos(8, 8)},
	)
	before := b.Clone()
	d := newDetector(b)
	if !d.IsImmediateWin(b, pos(7, 11), board.CellBlack) {
		t.Fatalf("expected (7,11) to win for black")
	}
	if d.IsImmediateWin(b, pos(7, 11), board.CellWhite) {
		t.Fatalf("white cannot win at (7,11)")
	}
	if d.IsImmediateWin(b, pos(7, 7), board.CellBlack) {
		t.Fatalf("occupied cell cannot be a win")
	}
	threat, level := d.IsImmediateThreat(b, pos(6, 8), board.CellWhite)
	if threat || level >= 500 {
		t.Fatalf("two white stones are not a threat, got level %d", level)
	}
	if !b.Equal(before) {
		t.Fatalf("board changed after probing:\n%s", b)
	}
}

func TestImmediateThreatOnThree(t *testing.T) {
	b := boardWith(t, 15, []board.Position{pos(7, 7), pos(7, 8)}, nil)
	d := newDetector(b)
	threat, level := d.IsImmediateThreat(b, pos(7, 9), board.CellBlack)
	if !threat || level < 1000 {
		t.Fatalf("expected a threat with level >= 1000, got %v/%d", threat, level)
	}
}

func TestCriticalMovesForcedWin(t *testing.T) {
	b := boardWith(t, 15,
		[]board.Position{pos(7, 7), pos(7, 8), pos(7, 9), pos(7, 10)},
		[]board.Position{pos(8, 7), pos(8, 8), pos(8, 9)},
	)
	d := newDetector(b)
	moves, tier := d.CriticalMoves(b, board.CellBlack, board.CellWhite)
	if tier != TierWin {
		t.Fatalf("expected win tier, got %s", tier)
	}
	want := []board.Position{pos(7, 6), pos(7, 11)}
	if len(moves) != len(want) || moves[0] != want[0] || moves[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, moves)
	}
}

func TestCriticalMovesForcedBlock(t *testing.T) {
	b := boardWith(t, 15,
		[]board.Position{pos(0, 0), pos(14, 14), pos(3, 12)},
		[]board.Position{pos(7, 7), pos(7, 8), pos(7, 9), pos(7, 10)},
	)
	d := newDetector(b)
	moves, tier := d.CriticalMoves(b, board.CellBlack, board.CellWhite)
	if tier != TierBlock {
		t.Fatalf("expected block tier, got %s", tier)
	}
	want := []board.Position{pos(7, 6), pos(7, 11)}
	if len(moves) != len(want) || moves[0] != want[0] || moves[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, moves)
	}
}

func TestCriticalMovesOpenFourBothSides(t *testing.T) {
	b := boardWith(t, 15, []board.Position{pos(7, 7), pos(7, 8), pos(7, 9), pos(7, 10)}, nil)
	d := newDetector(b)
	want := []board.Position{pos(7, 6), pos(7, 11)}
	for _, tc := range []struct {
		player, opponent board.Cell
		tier             Tier
	}{
		{board.CellBlack, board.CellWhite, TierWin},
		{board.CellWhite, board.CellBlack, TierBlock},
	} {
		moves, tier := d.CriticalMoves(b, tc.player, tc.opponent)
		if tier != tc.tier {
			t.Fatalf("%s: expected %s tier, got %s", tc.player, tc.tier, tier)
		}
		if len(moves) != len(want) || moves[0] != want[0] || moves[1] != want[1] {
			t.Fatalf("%s: expected %v, got %v", tc.player, want, moves)
		}
	}
}

func TestCriticalMovesFork(t *testing.T) {
	b := boardWith(t, 15,
		[]board.Position{pos(7, 7), pos(7, 8), pos(8, 9), pos(9, 9)},
		[]board.Position{pos(0, 0), pos(0, 14), pos(14, 0), pos(14, 14)},
	)
	before := b.Clone()
	d := newDetector(b)
	moves, tier := d.CriticalMoves(b, board.CellBlack, board.CellWhite)
	if tier != TierFork {
		t.Fatalf("expected fork tier, got %s (%v)", tier, moves)
	}
	found := false
	for _, m := range moves {
		if m == pos(7, 9) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected (7,9) among forks, got %v", moves)
	}
	if !b.Equal(before) {
		t.Fatalf("fork probing changed the board")
	}
}

func TestCriticalMovesQuietPosition(t *testing.T) {
	b := boardWith(t, 15, []board.Position{pos(7, 7)}, []board.Position{pos(7, 8)})
	d := newDetector(b)
	if moves, tier := d.CriticalMoves(b, board.CellBlack, board.CellWhite); tier != TierNone || len(moves) != 0 {
		t.Fatalf("expected no critical moves, got %s %v", tier, moves)
	}
	empty := board.New(board.Square(15))
	if moves, tier := d.CriticalMoves(empty, board.CellBlack, board.CellWhite); tier != TierNone || len(moves) != 0 {
		t.Fatalf("expected no critical moves on an empty board, got %s %v", tier, moves)
	}
}
