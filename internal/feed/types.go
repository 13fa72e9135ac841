package feed

import "github.com/seojin-dev/boardwatch/internal/snapshot"

// Kind distinguishes the two raw signals the board source produces.
type Kind string

const (
	// KindSnapshot carries the current visual-board state after some
	// change; zero, one or several logical moves may hide behind it.
	KindSnapshot Kind = "snapshot"
	// KindNavigate signals a single-page navigation to a different game.
	KindNavigate Kind = "navigate"
)

// Notification is one raw "something changed" signal. Region names the
// source area that triggered it and is advisory only.
type Notification struct {
	Kind     Kind                  `json:"kind"`
	GameID   string                `json:"game_id,omitempty"`
	Region   string                `json:"region,omitempty"`
	Snapshot *snapshot.RawSnapshot `json:"snapshot,omitempty"`
}

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateFailed       State = "failed"
)

type Callback func(*Notification)

type StateCallback func(State)
