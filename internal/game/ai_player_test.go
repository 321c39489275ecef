package game

import (
	"testing"
	"time"

	"github.com/NikitosII/gomoku/internal/board"
	"github.com/NikitosII/gomoku/internal/rules"
)

func TestAIPlayerThinksOnACopy(t *testing.T) {
	b := board.New(board.Square(9))
	b.Place(pos(4, 4), board.CellBlack)
	a, err := NewAIPlayer(rules.New(b.Size()), fastConfig(), 0)
	if err != nil {
		t.Fatal(err)
	}
	a.StartThinking(b, board.CellWhite, nil)
	b.Place(pos(0, 0), board.CellWhite)

	deadline := time.Now().Add(5 * time.Second)
	for !a.HasMoveReady() {
		if time.Now().After(deadline) {
			t.Fatalf("no decision before deadline")
		}
		time.Sleep(time.Millisecond)
	}
	if a.IsThinking() {
		t.Fatalf("thinking flag must clear once a move is ready")
	}
	d, err := a.TakeMove()
	if err != nil {
		t.Fatal(err)
	}
	if d.Move == pos(4, 4) || !b.Size().Contains(d.Move) {
		t.Fatalf("illegal decision %s", d.Move)
	}
	if a.HasMoveReady() {
		t.Fatalf("TakeMove must clear the ready flag")
	}
}

func TestAIPlayerStopDiscardsResult(t *testing.T) {
	cfg := fastConfig()
	cfg.Depth = 4
	cfg.RootBreadth = 20
	cfg.Breadth = 20
	b := board.New(board.Square(15))
	b.Place(pos(7, 7), board.CellBlack)
	b.Place(pos(8, 8), board.CellWhite)
	a, err := NewAIPlayer(rules.New(b.Size()), cfg, 0)
	if err != nil {
		t.Fatal(err)
	}
	a.StartThinking(b, board.CellBlack, nil)
	a.StopThinking()
	if a.IsThinking() || a.HasMoveReady() {
		t.Fatalf("stopped player must be idle with no result")
	}
}
