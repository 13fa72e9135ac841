package snapshot

// Wire types for one visual-board snapshot as delivered by the feed. Every
// field is optional; an absent element is a valid state, not an error.

type RawSquare struct {
	Square string `json:"square"`
	Piece  string `json:"piece"`
}

// RawClock is one of the two clock/turn indicators. Bottom marks the clock
// rendered on the local player's side of the board.
type RawClock struct {
	Color  string `json:"color,omitempty"`
	Active bool   `json:"active,omitempty"`
	Bottom bool   `json:"bottom,omitempty"`
}

// RawPanel is the structured end-of-game panel.
type RawPanel struct {
	Title  string `json:"title"`
	Reason string `json:"reason,omitempty"`
}

type RawSnapshot struct {
	GameID  string      `json:"game_id,omitempty"`
	Squares []RawSquare `json:"squares,omitempty"`
	Clocks  []RawClock  `json:"clocks,omitempty"`
	// CapturedBy is the color owning the bottom captured-pieces tray, the
	// secondary local-side indicator.
	CapturedBy string `json:"captured_by,omitempty"`
	Panel      *RawPanel `json:"panel,omitempty"`
	// Celebration is the transient end-of-game animation; it carries no
	// winner detail.
	Celebration bool     `json:"celebration,omitempty"`
	Highlights  []string `json:"highlights,omitempty"`
	PlyCount    int      `json:"ply_count,omitempty"`
}
