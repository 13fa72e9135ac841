package tracker

import (
	"testing"

	"github.com/seojin-dev/boardwatch/internal/board"
)

func TestInferSimpleMove(t *testing.T) {
	prev := board.StartingBoard()
	next := prev.Clone()
	delete(next, "g1")
	next["f3"] = board.Piece{Color: board.White, Kind: board.Knight}

	c := InferMove(prev, next)
	if c.From.Name() != "g1" || c.To.Name() != "f3" {
		t.Fatalf("got %s -> %s", c.From.Name(), c.To.Name())
	}
}

func TestInferCaptureOnChangedSquare(t *testing.T) {
	prev := board.BoardMap{
		"d4": {Color: board.White, Kind: board.Bishop},
		"g7": {Color: board.Black, Kind: board.Pawn},
	}
	next := board.BoardMap{
		"g7": {Color: board.White, Kind: board.Bishop},
	}
	c := InferMove(prev, next)
	if c.From.Name() != "d4" || c.To.Name() != "g7" {
		t.Fatalf("got %s -> %s", c.From.Name(), c.To.Name())
	}
}

func TestInferCastlingPicksKingPair(t *testing.T) {
	prev := board.BoardMap{
		"e1": {Color: board.White, Kind: board.King},
		"h1": {Color: board.White, Kind: board.Rook},
	}
	next := board.BoardMap{
		"g1": {Color: board.White, Kind: board.King},
		"f1": {Color: board.White, Kind: board.Rook},
	}
	c := InferMove(prev, next)
	if c.From.Name() != "e1" || c.To.Name() != "g1" {
		t.Fatalf("got %s -> %s, want e1 -> g1", c.From.Name(), c.To.Name())
	}
}

func TestInferNoDiff(t *testing.T) {
	prev := board.StartingBoard()
	c := InferMove(prev, prev.Clone())
	if c.From.Valid() || c.To.Valid() {
		t.Fatalf("expected no candidates, got %s -> %s", c.From.Name(), c.To.Name())
	}
}

func TestInferAmbiguousIsDeterministic(t *testing.T) {
	prev := board.BoardMap{
		"a2": {Color: board.White, Kind: board.Pawn},
		"h2": {Color: board.White, Kind: board.Pawn},
	}
	next := board.BoardMap{
		"a3": {Color: board.White, Kind: board.Pawn},
		"h3": {Color: board.White, Kind: board.Pawn},
	}
	first := InferMove(prev, next)
	for i := 0; i < 20; i++ {
		if c := InferMove(prev, next); c != first {
			t.Fatalf("nondeterministic inference: %+v vs %+v", c, first)
		}
	}
	if !first.From.Valid() || !first.To.Valid() {
		t.Fatalf("best-effort candidates expected, got %+v", first)
	}
}

func TestInferPromotionWithoutPieceMatch(t *testing.T) {
	prev := board.BoardMap{
		"e7": {Color: board.White, Kind: board.Pawn},
		"e8": {Color: board.Black, Kind: board.Rook},
	}
	next := board.BoardMap{
		"e8": {Color: board.White, Kind: board.Queen},
	}
	c := InferMove(prev, next)
	if c.From.Name() != "e7" || c.To.Name() != "e8" {
		t.Fatalf("got %s -> %s, want e7 -> e8", c.From.Name(), c.To.Name())
	}
}
