package tracker

import (
	"github.com/seojin-dev/boardwatch/internal/board"
)

// Tracker owns the hidden position state that a single snapshot can never
// reveal: castling rights, the en-passant target, the half-move clock and
// the previous board used for diffing. The full-move counter is fed from
// the outside (observable move-list length) because the tracker may be
// resumed mid-game and miss plies.
//
// Not safe for concurrent use; the session loop is the sole caller.
type Tracker struct {
	prev      board.BoardMap
	rights    board.Rights
	enPassant string
	halfMove  int
	side      board.Color // side to move for the current descriptor
	plies     int
}

func New() *Tracker {
	t := &Tracker{}
	t.Reset(nil, board.White, 0)
	return t
}

// Reset discards all hidden state and rebinds the tracker to a fresh game
// position. Rights come back in full; en passant and the half-move clock
// are cleared.
func (t *Tracker) Reset(b board.BoardMap, sideToMove board.Color, plies int) {
	t.prev = b.Clone()
	t.rights = board.FullRights()
	t.enPassant = ""
	t.halfMove = 0
	if sideToMove.Known() {
		t.side = sideToMove
	} else {
		t.side = board.White
	}
	t.setPlies(plies)
}

// SetPlyCount updates the externally observed move-list length.
func (t *Tracker) SetPlyCount(n int) { t.setPlies(n) }

// PlyCount reports the last observed move-list length.
func (t *Tracker) PlyCount() int { return t.plies }

func (t *Tracker) setPlies(n int) {
	if n < 0 {
		n = 0
	}
	t.plies = n
}

// Descriptor returns the current position without mutating anything.
func (t *Tracker) Descriptor() board.PositionDescriptor {
	return board.PositionDescriptor{
		Board:     t.prev.Clone(),
		Turn:      t.side,
		Rights:    t.rights,
		EnPassant: t.enPassant,
		HalfMove:  t.halfMove,
		FullMove:  t.plies/2 + 1,
	}
}

// Update advances hidden state from the previously seen board to next.
// mover is the color that made the observed move; when unknown the side
// that was on turn is assumed. highlights, when exactly two squares are
// given, override diff-based move inference.
//
// A call with no board difference is a no-op: rights, en passant and the
// half-move clock are left untouched.
func (t *Tracker) Update(next board.BoardMap, mover board.Color, highlights []board.Square) board.PositionDescriptor {
	if next == nil {
		return t.Descriptor()
	}
	prev := t.prev
	if prev.Equal(next) {
		return t.Descriptor()
	}
	if !mover.Known() {
		mover = t.side
	}

	cand := InferMove(prev, next)
	if len(highlights) == 2 {
		if hc, ok := orientHighlights(prev, next, highlights); ok {
			cand = hc
		}
	}
	from, to := cand.From, cand.To

	if from.Valid() || to.Valid() {
		t.updateRights(prev, next, from, to)
		t.enPassant = enPassantTarget(prev, next, from, to)
		if isPawnMove(prev, next, from, to) || isCapture(prev, next, mover, from, to) {
			t.halfMove = 0
		} else {
			t.halfMove++
		}
	} else {
		// Move endpoints unrecoverable: leave rights alone, drop the
		// en-passant window, advance the clock on diff heuristics only.
		t.enPassant = ""
		if pawnSignature(prev, next, mover) || captureSignature(prev, next, mover) {
			t.halfMove = 0
		} else {
			t.halfMove++
		}
	}

	t.prev = next.Clone()
	t.side = mover.Other()
	return t.Descriptor()
}

// orientHighlights maps a two-square highlight marker onto from/to. The
// square left empty is the origin; ties fall back to whichever square still
// holds a piece as the destination.
func orientHighlights(prev, next board.BoardMap, hl []board.Square) (Candidate, bool) {
	a, b := hl[0], hl[1]
	if !a.Valid() || !b.Valid() {
		return Candidate{From: board.None, To: board.None}, false
	}
	_, aOcc := next[a.Name()]
	_, bOcc := next[b.Name()]
	switch {
	case !aOcc && bOcc:
		return Candidate{From: a, To: b}, true
	case aOcc && !bOcc:
		return Candidate{From: b, To: a}, true
	case aOcc && bOcc:
		// Both occupied after the move: the origin is the one whose piece
		// changed away from what it held before.
		if p, ok := prev[a.Name()]; ok && next[b.Name()] == p {
			return Candidate{From: a, To: b}, true
		}
		return Candidate{From: b, To: a}, true
	default:
		return Candidate{From: board.None, To: board.None}, false
	}
}

var (
	whiteKing = board.Piece{Color: board.White, Kind: board.King}
	blackKing = board.Piece{Color: board.Black, Kind: board.King}
	whiteRook = board.Piece{Color: board.White, Kind: board.Rook}
	blackRook = board.Piece{Color: board.Black, Kind: board.Rook}
)

func (t *Tracker) updateRights(prev, next board.BoardMap, from, to board.Square) {
	// King leaving its home square kills both rights for that color,
	// whether seen via the diff or the explicit origin square.
	if kingLeft(prev, next, "e1", whiteKing) || (from.Name() == "e1" && prev["e1"] == whiteKing) {
		t.rights.ClearColor(board.White)
	}
	if kingLeft(prev, next, "e8", blackKing) || (from.Name() == "e8" && prev["e8"] == blackKing) {
		t.rights.ClearColor(board.Black)
	}

	// A king arriving on a castling destination clears both rights
	// unconditionally; this covers the castling move itself.
	if to.Valid() {
		switch {
		case next[to.Name()] == whiteKing && (to.Name() == "g1" || to.Name() == "c1"):
			t.rights.ClearColor(board.White)
		case next[to.Name()] == blackKing && (to.Name() == "g8" || to.Name() == "c8"):
			t.rights.ClearColor(board.Black)
		}
	}

	// Home-rank rooks moving away or being captured clear one side each.
	if rookGone(prev, next, "h1", whiteRook) {
		t.rights.WhiteKing = false
	}
	if rookGone(prev, next, "a1", whiteRook) {
		t.rights.WhiteQueen = false
	}
	if rookGone(prev, next, "h8", blackRook) {
		t.rights.BlackKing = false
	}
	if rookGone(prev, next, "a8", blackRook) {
		t.rights.BlackQueen = false
	}
}

func kingLeft(prev, next board.BoardMap, home string, king board.Piece) bool {
	return prev[home] == king && next[home] != king
}

func rookGone(prev, next board.BoardMap, home string, rook board.Piece) bool {
	return prev[home] == rook && next[home] != rook
}

// enPassantTarget is non-empty only for a single-file, two-rank pawn
// advance; the target is the passed-over square. Every other move clears
// the window.
func enPassantTarget(prev, next board.BoardMap, from, to board.Square) string {
	if !from.Valid() || !to.Valid() {
		return ""
	}
	moved, ok := prev[from.Name()]
	if !ok {
		moved, ok = next[to.Name()]
	}
	if !ok || moved.Kind != board.Pawn {
		return ""
	}
	if from.File != to.File {
		return ""
	}
	d := to.Rank - from.Rank
	if d != 2 && d != -2 {
		return ""
	}
	return board.Square{File: from.File, Rank: (from.Rank + to.Rank) / 2}.Name()
}

func isPawnMove(prev, next board.BoardMap, from, to board.Square) bool {
	if from.Valid() {
		if p, ok := prev[from.Name()]; ok {
			return p.Kind == board.Pawn
		}
	}
	if to.Valid() {
		if p, ok := next[to.Name()]; ok {
			return p.Kind == board.Pawn
		}
	}
	return false
}

// isCapture detects a capture either by the destination's prior occupant
// being an opposing piece, or by an opposing occupant of the origin square
// having vanished (approximates captures landing off the reader's
// destination square, such as en passant).
func isCapture(prev, next board.BoardMap, mover board.Color, from, to board.Square) bool {
	opp := mover.Other()
	if to.Valid() {
		if q, ok := prev[to.Name()]; ok && q.Color == opp {
			return true
		}
	}
	if from.Valid() {
		if q, ok := prev[from.Name()]; ok && q.Color == opp {
			if _, still := next[from.Name()]; !still {
				return true
			}
		}
	}
	return false
}

// captureSignature reports whether the opposing side lost material between
// the two snapshots.
func captureSignature(prev, next board.BoardMap, mover board.Color) bool {
	opp := mover.Other()
	if !opp.Known() {
		return false
	}
	return next.Count(opp) < prev.Count(opp)
}

// pawnSignature reports whether any pawn of the mover changed squares.
func pawnSignature(prev, next board.BoardMap, mover board.Color) bool {
	if !mover.Known() {
		return false
	}
	for name, p := range prev {
		if p.Kind != board.Pawn || p.Color != mover {
			continue
		}
		if next[name] != p {
			return true
		}
	}
	for name, p := range next {
		if p.Kind != board.Pawn || p.Color != mover {
			continue
		}
		if prev[name] != p {
			return true
		}
	}
	return false
}
