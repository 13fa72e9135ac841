package coalesce

import (
	"time"

	"github.com/seojin-dev/boardwatch/internal/board"
)

// State is the pair of observables the coalescer deduplicates on.
type State struct {
	Active   board.Color
	GameOver bool
}

type Kind string

const (
	KindTurn     Kind = "turn"
	KindGameOver Kind = "gameover"
)

type Event struct {
	Kind  Kind
	State State
}

// DefaultInterval is the trailing debounce window.
const DefaultInterval = 80 * time.Millisecond

// Coalescer merges bursts of raw change notifications into at most one
// turn event per side-to-move change and one gameover event per game-over
// transition. Callers must run their full state recomputation before every
// Observe so hidden state never falls behind, and must call Flush from the
// same context that calls Observe; only the fire callback crosses
// goroutines (it runs on the timer goroutine and should merely wake the
// owning loop).
type Coalescer struct {
	interval time.Duration
	fire     func()

	timer     *time.Timer
	pending   bool
	latest    State
	delivered State
}

func New(interval time.Duration, fire func()) *Coalescer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Coalescer{interval: interval, fire: fire}
}

// Reset cancels any pending window and rebases the last-delivered state,
// so the next Observe diffs against the new game's baseline.
func (c *Coalescer) Reset(s State) {
	c.Stop()
	c.latest = s
	c.delivered = s
}

// Observe records the most recent recomputed state and arms the trailing
// timer. A notification arriving while a window is already open is
// absorbed into it; no second timer is started.
func (c *Coalescer) Observe(s State) {
	c.latest = s
	if c.pending {
		return
	}
	c.pending = true
	c.timer = time.AfterFunc(c.interval, c.fire)
}

// Flush closes the current window and returns the events due, comparing
// the latest observed state against the last delivered one. With no real
// transition it returns nothing.
func (c *Coalescer) Flush() []Event {
	if !c.pending {
		return nil
	}
	c.pending = false
	c.timer = nil

	// An unknown active color is an extraction gap, not a transition; it
	// never rebases the delivered side. Game over is terminal until Reset.
	var events []Event
	if c.latest.Active.Known() && c.latest.Active != c.delivered.Active {
		events = append(events, Event{Kind: KindTurn, State: c.latest})
		c.delivered.Active = c.latest.Active
	}
	if c.latest.GameOver && !c.delivered.GameOver {
		events = append(events, Event{Kind: KindGameOver, State: c.latest})
		c.delivered.GameOver = true
	}
	return events
}

// Stop cancels any pending window without emitting.
func (c *Coalescer) Stop() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = false
}

// ClassifyHint guesses which transition a raw notification is about from
// the changed source region. Advisory only; delivery always recomputes.
func ClassifyHint(region string) Kind {
	switch region {
	case "panel", "celebration":
		return KindGameOver
	default:
		return KindTurn
	}
}
