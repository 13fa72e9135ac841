package snapshot

import (
	"strings"

	"github.com/seojin-dev/boardwatch/internal/board"
	"github.com/seojin-dev/boardwatch/internal/snapshot/profile"
)

// Snapshot is the structured view of one visual-board state. It has no
// memory of previous snapshots.
type Snapshot struct {
	GameID     string
	Board      board.BoardMap
	Active     board.Color // side to move, NoColor when undetectable
	Local      board.Color // the local player's side, NoColor when undetectable
	GameOver   board.GameOverInfo
	Highlights []board.Square
	PlyCount   int
}

type Extractor struct {
	prof *profile.Profile
}

func NewExtractor(p *profile.Profile) *Extractor {
	return &Extractor{prof: p}
}

// Extract converts a raw snapshot into structured state. It never fails:
// malformed squares are skipped, absent indicators degrade to NoColor, and
// a missing panel simply leaves the game-over detail empty.
func (e *Extractor) Extract(raw *RawSnapshot) Snapshot {
	var snap Snapshot
	if raw == nil {
		return snap
	}
	snap.GameID = strings.TrimSpace(raw.GameID)
	snap.PlyCount = raw.PlyCount
	snap.Board = e.extractBoard(raw.Squares)
	snap.Active = extractActive(raw.Clocks)
	snap.Local = extractLocal(raw)
	snap.GameOver = e.extractGameOver(raw)
	snap.Highlights = extractHighlights(raw.Highlights)
	return snap
}

func (e *Extractor) extractBoard(squares []RawSquare) board.BoardMap {
	if len(squares) == 0 {
		return nil
	}
	b := make(board.BoardMap, len(squares))
	for _, rs := range squares {
		sq, ok := board.ParseSquare(rs.Square)
		if !ok {
			continue
		}
		piece, ok := e.prof.Piece(rs.Piece)
		if !ok {
			continue
		}
		b[sq.Name()] = piece
	}
	if len(b) == 0 {
		return nil
	}
	return b
}

func extractActive(clocks []RawClock) board.Color {
	for _, c := range clocks {
		if !c.Active {
			continue
		}
		if col := parseColor(c.Color); col.Known() {
			return col
		}
	}
	return board.NoColor
}

// extractLocal resolves the local player's side: the bottom clock first,
// then the captured-pieces tray owner.
func extractLocal(raw *RawSnapshot) board.Color {
	for _, c := range raw.Clocks {
		if !c.Bottom {
			continue
		}
		if col := parseColor(c.Color); col.Known() {
			return col
		}
	}
	return parseColor(raw.CapturedBy)
}

// extractGameOver combines both end-of-game signals. The panel is primary
// and carries detail; the celebration effect alone only raises the flag.
func (e *Extractor) extractGameOver(raw *RawSnapshot) board.GameOverInfo {
	var info board.GameOverInfo
	if raw.Panel != nil && strings.TrimSpace(raw.Panel.Title) != "" {
		info.Over = true
		info.Reason = strings.TrimSpace(raw.Panel.Reason)
		if winner, result, ok := e.prof.Outcome(raw.Panel.Title); ok {
			info.Winner = winner
			info.Result = result
		}
		return info
	}
	if raw.Celebration {
		info.Over = true
	}
	return info
}

func extractHighlights(names []string) []board.Square {
	var out []board.Square
	for _, n := range names {
		if sq, ok := board.ParseSquare(n); ok {
			out = append(out, sq)
		}
	}
	return out
}

func parseColor(s string) board.Color {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "white":
		return board.White
	case "b", "black":
		return board.Black
	default:
		return board.NoColor
	}
}
