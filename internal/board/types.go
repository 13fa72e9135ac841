package board

// Color identifies a chess side. The zero value means the side could not be
// determined from the visual source.
type Color byte

const (
	NoColor Color = 0
	White   Color = 'w'
	Black   Color = 'b'
)

func (c Color) Known() bool { return c == White || c == Black }

func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

func (c Color) String() string {
	if !c.Known() {
		return "?"
	}
	return string(rune(c))
}

// Kind is a piece kind in lowercase FEN letters.
type Kind byte

const (
	Pawn   Kind = 'p'
	Knight Kind = 'n'
	Bishop Kind = 'b'
	Rook   Kind = 'r'
	Queen  Kind = 'q'
	King   Kind = 'k'
)

func validKind(k Kind) bool {
	switch k {
	case Pawn, Knight, Bishop, Rook, Queen, King:
		return true
	default:
		return false
	}
}

type Piece struct {
	Color Color
	Kind  Kind
}

// ParsePiece parses a compact two-letter code such as "wp" or "bK".
func ParsePiece(code string) (Piece, bool) {
	if len(code) != 2 {
		return Piece{}, false
	}
	c := Color(lower(code[0]))
	k := Kind(lower(code[1]))
	if !c.Known() || !validKind(k) {
		return Piece{}, false
	}
	return Piece{Color: c, Kind: k}, true
}

// FENRune returns the piece letter, uppercase for white.
func (p Piece) FENRune() rune {
	r := rune(p.Kind)
	if p.Color == White {
		r = r - 'a' + 'A'
	}
	return r
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// Square is a zero-based file/rank pair. None marks "no square".
type Square struct {
	File int
	Rank int
}

var None = Square{File: -1, Rank: -1}

func (s Square) Valid() bool {
	return s.File >= 0 && s.File < 8 && s.Rank >= 0 && s.Rank < 8
}

func (s Square) Name() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File), byte('1' + s.Rank)})
}

// ParseSquare parses a canonical name like "e4".
func ParseSquare(name string) (Square, bool) {
	if len(name) != 2 {
		return None, false
	}
	f := int(lower(name[0]) - 'a')
	r := int(name[1] - '1')
	sq := Square{File: f, Rank: r}
	if !sq.Valid() {
		return None, false
	}
	return sq, true
}

// BoardMap maps square names to pieces; unoccupied squares are absent.
// A BoardMap is produced fresh per snapshot and never mutated afterwards.
type BoardMap map[string]Piece

func (b BoardMap) Clone() BoardMap {
	if b == nil {
		return nil
	}
	out := make(BoardMap, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func (b BoardMap) Equal(other BoardMap) bool {
	if len(b) != len(other) {
		return false
	}
	for k, v := range b {
		if q, ok := other[k]; !ok || q != v {
			return false
		}
	}
	return true
}

// Count returns how many pieces of the given color are on the board.
func (b BoardMap) Count(c Color) int {
	n := 0
	for _, p := range b {
		if p.Color == c {
			n++
		}
	}
	return n
}

// StartingBoard builds the standard initial placement.
func StartingBoard() BoardMap {
	back := []Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	b := make(BoardMap, 32)
	for f := 0; f < 8; f++ {
		b[Square{File: f, Rank: 0}.Name()] = Piece{Color: White, Kind: back[f]}
		b[Square{File: f, Rank: 1}.Name()] = Piece{Color: White, Kind: Pawn}
		b[Square{File: f, Rank: 6}.Name()] = Piece{Color: Black, Kind: Pawn}
		b[Square{File: f, Rank: 7}.Name()] = Piece{Color: Black, Kind: back[f]}
	}
	return b
}

// Rights holds castling availability. Within one game each flag is
// monotonically non-increasing; only an explicit reset restores them.
type Rights struct {
	WhiteKing  bool
	WhiteQueen bool
	BlackKing  bool
	BlackQueen bool
}

func FullRights() Rights {
	return Rights{WhiteKing: true, WhiteQueen: true, BlackKing: true, BlackQueen: true}
}

func (r *Rights) ClearColor(c Color) {
	switch c {
	case White:
		r.WhiteKing, r.WhiteQueen = false, false
	case Black:
		r.BlackKing, r.BlackQueen = false, false
	}
}

func (r Rights) String() string {
	out := make([]byte, 0, 4)
	if r.WhiteKing {
		out = append(out, 'K')
	}
	if r.WhiteQueen {
		out = append(out, 'Q')
	}
	if r.BlackKing {
		out = append(out, 'k')
	}
	if r.BlackQueen {
		out = append(out, 'q')
	}
	if len(out) == 0 {
		return "-"
	}
	return string(out)
}

// GameOverInfo describes a detected game ending. Winner, Result and Reason
// are only populated when the structured end panel was observed.
type GameOverInfo struct {
	Over   bool
	Winner Color
	Result string
	Reason string
}
