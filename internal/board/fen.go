package board

import (
	"fmt"
	"strings"
)

// PositionDescriptor is the externally visible unit of reconstructed state.
type PositionDescriptor struct {
	Board     BoardMap
	Turn      Color
	Rights    Rights
	EnPassant string // square name, empty when none
	HalfMove  int
	FullMove  int
}

// FEN renders the standard six-field record: placement, side to move,
// castling availability, en-passant target, half-move clock, full-move
// number.
func (d PositionDescriptor) FEN() string {
	var b strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p, ok := d.Board[Square{File: file, Rank: rank}.Name()]
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteByte(byte('0' + empty))
				empty = 0
			}
			b.WriteRune(p.FENRune())
		}
		if empty > 0 {
			b.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			b.WriteByte('/')
		}
	}

	turn := "w"
	if d.Turn == Black {
		turn = "b"
	}
	ep := d.EnPassant
	if ep == "" {
		ep = "-"
	}
	full := d.FullMove
	if full < 1 {
		full = 1
	}
	return fmt.Sprintf("%s %s %s %s %d %d", b.String(), turn, d.Rights.String(), ep, d.HalfMove, full)
}

// Placement returns the first four FEN fields, the part of the descriptor
// that identifies a logical position independent of move counters.
func (d PositionDescriptor) Placement() string {
	fen := d.FEN()
	fields := strings.Fields(fen)
	return strings.Join(fields[:4], " ")
}
