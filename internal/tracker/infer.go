package tracker

import (
	"sort"

	"github.com/seojin-dev/boardwatch/internal/board"
)

// Candidate is a best-effort guess at the last move between two snapshots.
// Either square may be board.None when no plausible candidate exists.
type Candidate struct {
	From board.Square
	To   board.Square
}

// InferMove diffs two board maps and guesses the move that connects them.
// Squares occupied before and empty after are candidate origins; squares
// newly occupied or holding a different piece are candidate destinations.
// With multiple candidates on either side the choice is best effort: a
// vanished piece reappearing on a destination square wins, otherwise the
// alphabetically first candidate. A single notification covering several
// plies can therefore be mis-attributed; callers must treat the result as
// advisory.
func InferMove(prev, next board.BoardMap) Candidate {
	var vanished, arrived []string
	for name, p := range prev {
		q, ok := next[name]
		switch {
		case !ok:
			vanished = append(vanished, name)
		case q != p:
			arrived = append(arrived, name)
		}
	}
	for name := range next {
		if _, ok := prev[name]; !ok {
			arrived = append(arrived, name)
		}
	}
	sort.Strings(vanished)
	sort.Strings(arrived)

	cand := Candidate{From: board.None, To: board.None}
	if len(vanished) == 0 && len(arrived) == 0 {
		return cand
	}

	// Prefer an origin/destination pair carrying the same piece.
	for _, v := range vanished {
		for _, a := range arrived {
			if prev[v] == next[a] {
				cand.From, _ = board.ParseSquare(v)
				cand.To, _ = board.ParseSquare(a)
				return cand
			}
		}
	}

	if len(vanished) > 0 {
		cand.From, _ = board.ParseSquare(vanished[0])
	}
	if len(arrived) > 0 {
		cand.To, _ = board.ParseSquare(arrived[0])
	}
	return cand
}
